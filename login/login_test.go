package login

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/router"
)

func newHandlers() Handlers {
	return Handlers{Log: logrus.NewEntry(logrus.New()), active: make(map[string]activeSession)}
}

func TestHandleLoginIssuesSessionToken(t *testing.T) {
	h := newHandlers()
	req := &protos.LoginReq{Account: "alice", Token: "t"}
	body, _ := req.Marshal()

	cmd, data, derr := h.handleLogin(body, router.Meta{GateRoleID: "gate-1", SessionID: "sess-1"})
	require.Nil(t, derr)
	assert.Equal(t, int32(protos.CmdLoginRsp), cmd)

	rsp := &protos.LoginRsp{}
	require.NoError(t, rsp.Unmarshal(data))
	assert.NotEmpty(t, rsp.SessionToken)
}

func TestHandleLoginRejectsEmptyAccount(t *testing.T) {
	h := newHandlers()
	req := &protos.LoginReq{}
	body, _ := req.Marshal()

	_, _, derr := h.handleLogin(body, router.Meta{})
	require.NotNil(t, derr)
	assert.Equal(t, int32(protos.ErrorInvalidArgument), derr.Code)
}

// TestHandleLoginRecordsNewActiveSession covers the bookkeeping
// kickPreviousSession relies on: without a PushBus configured the kick
// itself is skipped (Publish needs a live NATS conn this test doesn't
// have), but the active-session record must still move to the new
// gate/session on every successful login.
func TestHandleLoginRecordsNewActiveSession(t *testing.T) {
	h := newHandlers()
	h.active["alice"] = activeSession{gateRoleID: "gate-1", sessionID: "sess-old"}

	req := &protos.LoginReq{Account: "alice", Token: "t"}
	body, _ := req.Marshal()
	meta := router.Meta{GateRoleID: "gate-2", SessionID: "sess-new"}

	_, _, derr := h.handleLogin(body, meta)
	require.Nil(t, derr)
	assert.Equal(t, activeSession{gateRoleID: "gate-2", sessionID: "sess-new"}, h.active["alice"])
}

func TestHandleRegisterRoundTrip(t *testing.T) {
	h := newHandlers()
	req := &protos.RegisterReq{Account: "bob", Password: "secret"}
	body, _ := req.Marshal()

	cmd, data, derr := h.handleRegister(body, router.Meta{})
	require.Nil(t, derr)
	assert.Equal(t, int32(protos.CmdRegisterRsp), cmd)

	rsp := &protos.RegisterRsp{}
	require.NoError(t, rsp.Unmarshal(data))
	assert.Equal(t, "bob", rsp.Account)
}

func TestHandleLogoutSucceedsWithoutStore(t *testing.T) {
	h := newHandlers()
	req := &protos.LogoutReq{Account: "alice"}
	body, _ := req.Marshal()

	cmd, _, derr := h.handleLogout(body, router.Meta{})
	require.Nil(t, derr)
	assert.Equal(t, int32(protos.CmdLogoutRsp), cmd)
}

func TestHandleLogoutClearsActiveSession(t *testing.T) {
	h := newHandlers()
	h.active["alice"] = activeSession{gateRoleID: "gate-1", sessionID: "sess-1"}
	req := &protos.LogoutReq{Account: "alice"}
	body, _ := req.Marshal()

	_, _, derr := h.handleLogout(body, router.Meta{SessionID: "sess-1"})
	require.Nil(t, derr)
	_, stillActive := h.active["alice"]
	assert.False(t, stillActive)
}

// Package login implements the login role's command handlers (§6.3,
// SPEC_FULL.md §1 "stub collaborators"): only the routing contract these
// handlers must honor is fixed, not their account-store logic, so
// LoginReq/RegisterReq/LogoutReq are handled with the minimum behavior that
// exercises the contract — a recorded session token in kvstore.Store for
// login, and acknowledgement-only responses otherwise.
package login

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/frostgate/citadel/kvstore"
	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/pushbus"
	"github.com/frostgate/citadel/roleserver"
	"github.com/frostgate/citadel/router"
)

// SessionTTL bounds how long a login-issued session token stays valid in
// kvstore before a client must re-authenticate.
const SessionTTL = 24 * time.Hour

// activeSession records which gate/session last logged an account in, so a
// second login for the same account can kick the first one off.
type activeSession struct {
	gateRoleID string
	sessionID  string
}

// Handlers holds the collaborators the login role's command handlers need.
type Handlers struct {
	Store   *kvstore.Store
	Log     *logrus.Entry
	PushBus *pushbus.Bus

	// active is mutated only from within the login role's single mailbox
	// (roleserver.Actor serializes every Dispatch call), so it needs no
	// lock of its own.
	active map[string]activeSession
}

// NewActor builds the login role's dispatcher and wraps it as a
// roleserver.Actor, ready to spawn under roleid.Login (cmd/citadel/main.go).
func NewActor(h Handlers) *roleserver.Actor {
	if h.active == nil {
		h.active = make(map[string]activeSession)
	}
	dis := router.NewDispatcher()
	dis.Register(protos.CmdLoginReq, h.handleLogin)
	dis.Register(protos.CmdRegisterReq, h.handleRegister)
	dis.Register(protos.CmdLogoutReq, h.handleLogout)
	return roleserver.NewActor("login", dis, h.Log)
}

func (h Handlers) handleLogin(data []byte, meta router.Meta) (int32, []byte, *protos.DataError) {
	req := &protos.LoginReq{}
	if err := req.Unmarshal(data); err != nil {
		return 0, nil, protos.RspErr(protos.ErrorInvalidArgument, "malformed LoginReq")
	}
	if req.Account == "" {
		return 0, nil, protos.RspErr(protos.ErrorInvalidArgument, "account required")
	}

	token := uuid.NewString()
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Store.SetSession(ctx, req.Account, token, SessionTTL); err != nil {
			h.Log.WithError(err).WithField("account", req.Account).Warn("login: session store failed")
			return 0, nil, protos.RspErr(protos.ErrorServerInternal, "session store unavailable")
		}
	}

	h.kickPreviousSession(req.Account, meta)
	if meta.GateRoleID != "" && meta.SessionID != "" {
		h.active[req.Account] = activeSession{gateRoleID: meta.GateRoleID, sessionID: meta.SessionID}
	}

	rsp := &protos.LoginRsp{SessionToken: token}
	body, err := rsp.Marshal()
	if err != nil {
		return 0, nil, protos.RspErr(protos.ErrorServerInternal, "marshal failed")
	}
	return protos.CmdLoginRsp, body, nil
}

// kickPreviousSession pushes a KickPush to the gate/session that last
// logged account in, if that connection isn't the one making this request
// (§4.5 "[NEW] Server-initiated Push fan-out" — a concrete trigger for it:
// a second login for the same account supersedes the first).
func (h Handlers) kickPreviousSession(account string, meta router.Meta) {
	prev, ok := h.active[account]
	if !ok || h.PushBus == nil {
		return
	}
	if prev.gateRoleID == meta.GateRoleID && prev.sessionID == meta.SessionID {
		return
	}
	body, err := (&protos.KickPush{Reason: "duplicate login"}).Marshal()
	if err != nil {
		h.Log.WithError(err).WithField("account", account).Warn("login: marshal KickPush failed")
		return
	}
	ev := pushbus.Event{SessionID: prev.sessionID, Cmd: protos.CmdKickPush, Data: body}
	if err := h.PushBus.Publish(prev.gateRoleID, ev); err != nil {
		h.Log.WithError(err).WithField("account", account).Debug("login: kick push failed")
	}
}

func (h Handlers) handleRegister(data []byte, meta router.Meta) (int32, []byte, *protos.DataError) {
	req := &protos.RegisterReq{}
	if err := req.Unmarshal(data); err != nil {
		return 0, nil, protos.RspErr(protos.ErrorInvalidArgument, "malformed RegisterReq")
	}
	if req.Account == "" || req.Password == "" {
		return 0, nil, protos.RspErr(protos.ErrorInvalidArgument, "account and password required")
	}

	rsp := &protos.RegisterRsp{Account: req.Account}
	body, err := rsp.Marshal()
	if err != nil {
		return 0, nil, protos.RspErr(protos.ErrorServerInternal, "marshal failed")
	}
	return protos.CmdRegisterRsp, body, nil
}

func (h Handlers) handleLogout(data []byte, meta router.Meta) (int32, []byte, *protos.DataError) {
	req := &protos.LogoutReq{}
	if err := req.Unmarshal(data); err != nil {
		return 0, nil, protos.RspErr(protos.ErrorInvalidArgument, "malformed LogoutReq")
	}

	if h.Store != nil && req.Account != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Store.DeleteSession(ctx, req.Account); err != nil {
			h.Log.WithError(err).WithField("account", req.Account).Debug("logout: session delete failed")
		}
	}

	if prev, ok := h.active[req.Account]; ok && prev.sessionID == meta.SessionID {
		delete(h.active, req.Account)
	}

	rsp := &protos.LogoutRsp{}
	body, err := rsp.Marshal()
	if err != nil {
		return 0, nil, protos.RspErr(protos.ErrorServerInternal, "marshal failed")
	}
	return protos.CmdLogoutRsp, body, nil
}

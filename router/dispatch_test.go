package router

import (
	"testing"

	"github.com/frostgate/citadel/protos"
)

func TestDispatchInvokesRegisteredHandler(t *testing.T) {
	d := NewDispatcher()
	d.Register(protos.CmdLoginReq, func(data []byte, meta Meta) (int32, []byte, *protos.DataError) {
		return protos.CmdLoginRsp, []byte("ok"), nil
	})

	reply, derr := d.Dispatch(&protos.ServerMessage{Cmd: protos.CmdLoginReq, Data: []byte("req")})
	if derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if reply.Cmd != protos.CmdLoginRsp || string(reply.Data) != "ok" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestDispatchPassesMetaThrough(t *testing.T) {
	d := NewDispatcher()
	var got Meta
	d.Register(protos.CmdLoginReq, func(data []byte, meta Meta) (int32, []byte, *protos.DataError) {
		got = meta
		return protos.CmdLoginRsp, nil, nil
	})

	_, derr := d.Dispatch(&protos.ServerMessage{Cmd: protos.CmdLoginReq, GateRoleID: "gate-1", SessionID: "sess-1"})
	if derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if got.GateRoleID != "gate-1" || got.SessionID != "sess-1" {
		t.Fatalf("meta not propagated: %+v", got)
	}
}

func TestDispatchUnknownCmdReturnsNotFound(t *testing.T) {
	d := NewDispatcher()
	_, derr := d.Dispatch(&protos.ServerMessage{Cmd: 42})
	if derr == nil || derr.Message != "not found handler" {
		t.Fatalf("unexpected error: %v", derr)
	}
}

func TestDispatchPropagatesHandlerError(t *testing.T) {
	d := NewDispatcher()
	d.Register(protos.CmdLoginReq, func(data []byte, meta Meta) (int32, []byte, *protos.DataError) {
		return 0, nil, protos.RspErr(protos.ErrorInvalidArgument, "bad account")
	})

	_, derr := d.Dispatch(&protos.ServerMessage{Cmd: protos.CmdLoginReq})
	if derr == nil || derr.Kind != protos.KindRspError || derr.Code != protos.ErrorInvalidArgument {
		t.Fatalf("unexpected error: %+v", derr)
	}
}

package protos

import "testing"

func TestLoginReqRoundTrip(t *testing.T) {
	in := &LoginReq{Account: "a", Token: "t", ServerID: 1}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := &LoginReq{}
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: want %+v got %+v", in, out)
	}
}

func TestErrorRspRoundTrip(t *testing.T) {
	in := &ErrorRsp{Cmd: 999999, Code: ErrorUnknownCommand, Message: "UnknownCommandError:999999"}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := &ErrorRsp{}
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: want %+v got %+v", in, out)
	}
}

func TestStoreInfoRspRoundTripWithRepeatedField(t *testing.T) {
	in := &StoreInfoRsp{StoreID: 7, Items: []int32{1, 2, 3}}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := &StoreInfoRsp{}
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.StoreID != in.StoreID || len(out.Items) != len(in.Items) {
		t.Fatalf("round trip mismatch: want %+v got %+v", in, out)
	}
	for i := range in.Items {
		if in.Items[i] != out.Items[i] {
			t.Fatalf("item %d mismatch: want %d got %d", i, in.Items[i], out.Items[i])
		}
	}
}

func TestServerMessageRoundTrip(t *testing.T) {
	in := &ServerMessage{Cmd: CmdLoginReq, Data: []byte{1, 2, 3, 4}}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := &ServerMessage{}
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Cmd != in.Cmd || string(out.Data) != string(in.Data) {
		t.Fatalf("round trip mismatch: want %+v got %+v", in, out)
	}
}

func TestServerMessageRoundTripWithPushMeta(t *testing.T) {
	in := &ServerMessage{Cmd: CmdLoginReq, Data: []byte{1, 2, 3}, GateRoleID: "gate-1", SessionID: "sess-abc"}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := &ServerMessage{}
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: want %+v got %+v", in, out)
	}
}

func TestKickPushRoundTrip(t *testing.T) {
	in := &KickPush{Reason: "duplicate login"}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := &KickPush{}
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: want %+v got %+v", in, out)
	}
}

func TestValidateCommandTableRejectsDuplicates(t *testing.T) {
	cmds := map[string]int32{"a": CmdLoginReq, "b": CmdLoginReq}
	if err := ValidateCommandTable(cmds); err == nil {
		t.Fatal("expected duplicate cmd error")
	}
}

func TestValidateCommandTableRejectsOutOfBlock(t *testing.T) {
	cmds := map[string]int32{"a": 42}
	if err := ValidateCommandTable(cmds); err == nil {
		t.Fatal("expected out-of-block error")
	}
}

func TestValidateCommandTableAcceptsDeclaredTable(t *testing.T) {
	cmds := map[string]int32{
		"error":        CmdErrorRsp,
		"login_req":    CmdLoginReq,
		"login_rsp":    CmdLoginRsp,
		"register_req": CmdRegisterReq,
		"register_rsp": CmdRegisterRsp,
		"logout_req":   CmdLogoutReq,
		"logout_rsp":   CmdLogoutRsp,
		"store_req":    CmdStoreInfoReq,
		"store_rsp":    CmdStoreInfoRsp,
		"kick_push":    CmdKickPush,
	}
	if err := ValidateCommandTable(cmds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsKnownCommandAcceptsEveryDeclaredCmd(t *testing.T) {
	for name, cmd := range KnownCommands {
		if !IsKnownCommand(cmd) {
			t.Fatalf("%s (cmd %d) should be known", name, cmd)
		}
	}
}

func TestIsKnownCommandRejectsUnregisteredCmd(t *testing.T) {
	if IsKnownCommand(999999) {
		t.Fatal("999999 should not be known")
	}
}

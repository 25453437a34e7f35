package protos

import legacyproto "github.com/golang/protobuf/proto"

// Reset, String and ProtoMessage satisfy the legacy github.com/golang/protobuf
// proto.Message interface for every message type in this package. Because
// each type also implements Marshal/Unmarshal directly (see wire.go),
// proto.Marshal/proto.Unmarshal use those methods rather than reflection —
// the same escape hatch generated .pb.go files use for hand-optimized
// codecs. This lets these hand-written types travel as ordinary
// protoactor-go remote messages without a protoc-generated file.
//
// The assertions below are the actual point of depending on
// github.com/golang/protobuf here: protoactor-go remote's RemoteMessage
// plumbing is written against this interface, so every message this
// package hands to remote.Remote must provably satisfy it.
var (
	_ legacyproto.Message = (*LoginReq)(nil)
	_ legacyproto.Message = (*LoginRsp)(nil)
	_ legacyproto.Message = (*RegisterReq)(nil)
	_ legacyproto.Message = (*RegisterRsp)(nil)
	_ legacyproto.Message = (*LogoutReq)(nil)
	_ legacyproto.Message = (*LogoutRsp)(nil)
	_ legacyproto.Message = (*StoreInfoReq)(nil)
	_ legacyproto.Message = (*StoreInfoRsp)(nil)
	_ legacyproto.Message = (*ErrorRsp)(nil)
	_ legacyproto.Message = (*ServerMessage)(nil)
	_ legacyproto.Message = (*RegisterMsg)(nil)
	_ legacyproto.Message = (*UnregisterMsg)(nil)
	_ legacyproto.Message = (*Ack)(nil)
	_ legacyproto.Message = (*AskMsg)(nil)
	_ legacyproto.Message = (*AskReply)(nil)
	_ legacyproto.Message = (*AskByIDMsg)(nil)
	_ legacyproto.Message = (*KickPush)(nil)
)

func (m *LoginReq) Reset()         { *m = LoginReq{} }
func (m *LoginReq) String() string { return protoString(m) }
func (m *LoginReq) ProtoMessage()  {}

func (m *LoginRsp) Reset()         { *m = LoginRsp{} }
func (m *LoginRsp) String() string { return protoString(m) }
func (m *LoginRsp) ProtoMessage()  {}

func (m *RegisterReq) Reset()         { *m = RegisterReq{} }
func (m *RegisterReq) String() string { return protoString(m) }
func (m *RegisterReq) ProtoMessage()  {}

func (m *RegisterRsp) Reset()         { *m = RegisterRsp{} }
func (m *RegisterRsp) String() string { return protoString(m) }
func (m *RegisterRsp) ProtoMessage()  {}

func (m *LogoutReq) Reset()         { *m = LogoutReq{} }
func (m *LogoutReq) String() string { return protoString(m) }
func (m *LogoutReq) ProtoMessage()  {}

func (m *LogoutRsp) Reset()         { *m = LogoutRsp{} }
func (m *LogoutRsp) String() string { return protoString(m) }
func (m *LogoutRsp) ProtoMessage()  {}

func (m *StoreInfoReq) Reset()         { *m = StoreInfoReq{} }
func (m *StoreInfoReq) String() string { return protoString(m) }
func (m *StoreInfoReq) ProtoMessage()  {}

func (m *StoreInfoRsp) Reset()         { *m = StoreInfoRsp{} }
func (m *StoreInfoRsp) String() string { return protoString(m) }
func (m *StoreInfoRsp) ProtoMessage()  {}

func (m *ErrorRsp) Reset()         { *m = ErrorRsp{} }
func (m *ErrorRsp) String() string { return protoString(m) }
func (m *ErrorRsp) ProtoMessage()  {}

func protoString(m Message) string {
	b, err := m.Marshal()
	if err != nil {
		return "<invalid>"
	}
	return string(b)
}

package protos

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ServerMessage is the inter-node application envelope (§3): cmd identifies
// a message type in this package, data is its serialized form. GateRoleID
// and SessionID are stamped by session.Actor on every Ask/Tell it sends
// (§4.5 "[NEW] Server-initiated Push fan-out") so a role handler that needs
// to push something back to the originating connection later knows which
// gate and session to address — neither travels over the client wire
// protocol, only between nodes.
type ServerMessage struct {
	Cmd        int32
	Data       []byte
	GateRoleID string
	SessionID  string
}

func (m *ServerMessage) Reset() { *m = ServerMessage{} }
func (m *ServerMessage) String() string {
	return fmt.Sprintf("ServerMessage{cmd=%d, %dB}", m.Cmd, len(m.Data))
}
func (m *ServerMessage) ProtoMessage() {}

func (m *ServerMessage) Marshal() ([]byte, error) {
	var b []byte
	b = appendVarint(b, 1, uint64(uint32(m.Cmd)))
	if len(m.Data) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Data)
	}
	if m.GateRoleID != "" {
		b = appendString(b, 3, m.GateRoleID)
	}
	if m.SessionID != "" {
		b = appendString(b, 4, m.SessionID)
	}
	return b, nil
}

func (m *ServerMessage) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			m.Cmd = int32(v)
			return n, nil
		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			m.Data = append([]byte(nil), v...)
			return n, nil
		case 3:
			return consumeStringInto(&m.GateRoleID, b)
		case 4:
			return consumeStringInto(&m.SessionID, b)
		default:
			return skipField(typ, b)
		}
	})
}

// KickPush is pushed to a session that has just been superseded by a newer
// login for the same account, carried as the payload of a Push packet with
// cmd=CmdKickPush.
type KickPush struct {
	Reason string
}

func (m *KickPush) Reset()         { *m = KickPush{} }
func (m *KickPush) String() string { return "KickPush{" + m.Reason + "}" }
func (m *KickPush) ProtoMessage()  {}
func (m *KickPush) Marshal() ([]byte, error) {
	return appendString(nil, 1, m.Reason), nil
}
func (m *KickPush) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeStringInto(&m.Reason, b)
		}
		return skipField(typ, b)
	})
}

// DataErrorKind distinguishes a handler-reported error (RspError) from an
// infrastructure error (Other), per §3.
type DataErrorKind int

const (
	KindRspError DataErrorKind = iota
	KindOther
)

// DataError is the inter-node error envelope (§3). Use RspErr/OtherErr to
// construct one; Error() satisfies the standard error interface so it can
// be returned directly from fabric Ask calls.
type DataError struct {
	Kind    DataErrorKind
	Code    int32
	Message string
}

func RspErr(code int32, message string) *DataError {
	return &DataError{Kind: KindRspError, Code: code, Message: message}
}

func OtherErr(message string) *DataError {
	return &DataError{Kind: KindOther, Message: message}
}

func (e *DataError) Error() string {
	if e.Kind == KindRspError {
		return fmt.Sprintf("data error: code=%d: %s", e.Code, e.Message)
	}
	return "data error: " + e.Message
}

// IsRetryable reports whether e represents the transient "not yet
// registered" condition a lookup caller should back off and retry on,
// distinct from a permanent configuration error (§4.4, §9 "Retry vs.
// discovery race").
func (e *DataError) IsRetryable() bool {
	return e.Kind == KindOther && e.Message == "retryable"
}

// --- Center directory protocol (§4.6) -----------------------------------

// RegisterMsg asks the Center to record a (role_id, peer_id) pair.
type RegisterMsg struct {
	RoleID string
	PeerID string
}

func (m *RegisterMsg) Reset()         { *m = RegisterMsg{} }
func (m *RegisterMsg) String() string { return fmt.Sprintf("Register{%s @ %s}", m.RoleID, m.PeerID) }
func (m *RegisterMsg) ProtoMessage()  {}
func (m *RegisterMsg) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.RoleID)
	b = appendString(b, 2, m.PeerID)
	return b, nil
}
func (m *RegisterMsg) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeStringInto(&m.RoleID, b)
		case 2:
			return consumeStringInto(&m.PeerID, b)
		default:
			return skipField(typ, b)
		}
	})
}

// UnregisterMsg asks the Center to remove a (role_id, peer_id) pair.
// Idempotent (§4.6).
type UnregisterMsg struct {
	RoleID string
	PeerID string
}

func (m *UnregisterMsg) Reset() { *m = UnregisterMsg{} }
func (m *UnregisterMsg) String() string {
	return fmt.Sprintf("Unregister{%s @ %s}", m.RoleID, m.PeerID)
}
func (m *UnregisterMsg) ProtoMessage() {}
func (m *UnregisterMsg) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.RoleID)
	b = appendString(b, 2, m.PeerID)
	return b, nil
}
func (m *UnregisterMsg) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeStringInto(&m.RoleID, b)
		case 2:
			return consumeStringInto(&m.PeerID, b)
		default:
			return skipField(typ, b)
		}
	})
}

// Ack is the reply to RegisterMsg/UnregisterMsg.
type Ack struct{ OK bool }

func (m *Ack) Reset()         { *m = Ack{} }
func (m *Ack) String() string { return fmt.Sprintf("Ack{%v}", m.OK) }
func (m *Ack) ProtoMessage()  {}
func (m *Ack) Marshal() ([]byte, error) {
	return appendVarint(nil, 1, boolToUint(m.OK)), nil
}
func (m *Ack) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			m.OK = v != 0
			return n, nil
		}
		return skipField(typ, b)
	})
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// AskMsg requests some live role_id of the given role (§4.6 Ask).
type AskMsg struct{ Role string }

func (m *AskMsg) Reset()         { *m = AskMsg{} }
func (m *AskMsg) String() string { return "Ask{" + m.Role + "}" }
func (m *AskMsg) ProtoMessage()  {}
func (m *AskMsg) Marshal() ([]byte, error) {
	return appendString(nil, 1, m.Role), nil
}
func (m *AskMsg) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeStringInto(&m.Role, b)
		}
		return skipField(typ, b)
	})
}

// AskReply is the Center's reply to AskMsg: the resolved role_id's text
// form and peer_id (address), or both empty if no live node of that role
// exists. The peer_id is included because a caller cannot route without an
// address (§3 "Node record resolution").
type AskReply struct {
	RoleID string
	PeerID string
}

func (m *AskReply) Reset()         { *m = AskReply{} }
func (m *AskReply) String() string { return fmt.Sprintf("AskReply{%s @ %s}", m.RoleID, m.PeerID) }
func (m *AskReply) ProtoMessage()  {}
func (m *AskReply) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.RoleID)
	b = appendString(b, 2, m.PeerID)
	return b, nil
}
func (m *AskReply) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeStringInto(&m.RoleID, b)
		case 2:
			return consumeStringInto(&m.PeerID, b)
		default:
			return skipField(typ, b)
		}
	})
}

// AskByIDMsg resolves one specific role_id to its peer_id.
type AskByIDMsg struct{ RoleID string }

func (m *AskByIDMsg) Reset()         { *m = AskByIDMsg{} }
func (m *AskByIDMsg) String() string { return "AskByID{" + m.RoleID + "}" }
func (m *AskByIDMsg) ProtoMessage()  {}
func (m *AskByIDMsg) Marshal() ([]byte, error) {
	return appendString(nil, 1, m.RoleID), nil
}
func (m *AskByIDMsg) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeStringInto(&m.RoleID, b)
		}
		return skipField(typ, b)
	})
}

// AskByIDMsg's reply reuses AskReply's shape.
type AskByIDReply = AskReply

package protos

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every request/response type in this package.
// Cmd identifies the command number the message is carried under on the
// wire (§4.1, §6.3); Marshal/Unmarshal serialize the protobuf-shaped body.
type Message interface {
	Cmd() int32
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

func (m *LoginReq) Cmd() int32 { return CmdLoginReq }
func (m *LoginRsp) Cmd() int32 { return CmdLoginRsp }

func (m *RegisterReq) Cmd() int32 { return CmdRegisterReq }
func (m *RegisterRsp) Cmd() int32 { return CmdRegisterRsp }

func (m *LogoutReq) Cmd() int32 { return CmdLogoutReq }
func (m *LogoutRsp) Cmd() int32 { return CmdLogoutRsp }

func (m *StoreInfoReq) Cmd() int32 { return CmdStoreInfoReq }
func (m *StoreInfoRsp) Cmd() int32 { return CmdStoreInfoRsp }

func (m *ErrorRsp) Cmd() int32 { return CmdErrorRsp }

func (m *LoginReq) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Account)
	b = appendString(b, 2, m.Token)
	b = appendVarint(b, 3, uint64(m.ServerID))
	return b, nil
}

func (m *LoginReq) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeStringInto(&m.Account, b)
		case 2:
			return consumeStringInto(&m.Token, b)
		case 3:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			m.ServerID = int32(v)
			return n, nil
		default:
			return skipField(typ, b)
		}
	})
}

func (m *LoginRsp) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.SessionToken)
	return b, nil
}

func (m *LoginRsp) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeStringInto(&m.SessionToken, b)
		}
		return skipField(typ, b)
	})
}

func (m *RegisterReq) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Account)
	b = appendString(b, 2, m.Password)
	return b, nil
}

func (m *RegisterReq) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeStringInto(&m.Account, b)
		case 2:
			return consumeStringInto(&m.Password, b)
		default:
			return skipField(typ, b)
		}
	})
}

func (m *RegisterRsp) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Account)
	return b, nil
}

func (m *RegisterRsp) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeStringInto(&m.Account, b)
		}
		return skipField(typ, b)
	})
}

func (m *LogoutReq) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Account)
	return b, nil
}

func (m *LogoutReq) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeStringInto(&m.Account, b)
		}
		return skipField(typ, b)
	})
}

func (m *LogoutRsp) Marshal() ([]byte, error) { return nil, nil }

func (m *LogoutRsp) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		return skipField(typ, b)
	})
}

func (m *StoreInfoReq) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Account)
	b = appendVarint(b, 2, uint64(uint32(m.StoreID)))
	return b, nil
}

func (m *StoreInfoReq) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeStringInto(&m.Account, b)
		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			m.StoreID = int32(v)
			return n, nil
		default:
			return skipField(typ, b)
		}
	})
}

func (m *StoreInfoRsp) Marshal() ([]byte, error) {
	var b []byte
	b = appendVarint(b, 1, uint64(uint32(m.StoreID)))
	for _, item := range m.Items {
		b = appendVarint(b, 2, uint64(uint32(item)))
	}
	return b, nil
}

func (m *StoreInfoRsp) Unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			m.StoreID = int32(v)
			return n, nil
		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			m.Items = append(m.Items, int32(v))
			return n, nil
		default:
			return skipField(typ, b)
		}
	})
}

func (m *ErrorRsp) Marshal() ([]byte, error) {
	var b []byte
	b = appendVarint(b, 1, uint64(uint32(m.Cmd)))
	b = appendVarint(b, 2, uint64(uint32(m.Code)))
	b = appendString(b, 3, m.Message)
	return b, nil
}

func (m *ErrorRsp) Unmarshal(b []byte) error {
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
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			m.Code = int32(v)
			return n, nil
		case 3:
			return consumeStringInto(&m.Message, b)
		default:
			return skipField(typ, b)
		}
	})
}

// --- shared wire helpers -----------------------------------------------

func appendString(b []byte, field protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, field, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, field protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, field, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func consumeStringInto(dst *string, b []byte) (int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return n, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}

func skipField(typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(0, typ, b)
	if n < 0 {
		return n, protowire.ParseError(n)
	}
	return n, nil
}

// consumeFields walks every (tag, value) pair in b, invoking fn with the
// value bytes for each field. It is the shared decode loop every message's
// Unmarshal uses in place of generated, reflection-driven unmarshaling.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, value []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, tn := protowire.ConsumeTag(b)
		if tn < 0 {
			return fmt.Errorf("protos: malformed tag: %w", protowire.ParseError(tn))
		}
		b = b[tn:]
		n, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("protos: field %d: %w", num, err)
		}
		b = b[n:]
	}
	return nil
}

package protos

import "google.golang.org/protobuf/encoding/protowire"

// EncodePayload builds the payload of a client-facing data packet
// (Request/Response/Notify/Push, §4.1): a raw varint cmd followed by the
// protobuf-serialized message body. Unlike the tagged fields used
// elsewhere in this package, cmd here carries no field tag — it is always
// the first thing on the wire.
func EncodePayload(cmd int32, body []byte) []byte {
	b := protowire.AppendVarint(nil, uint64(uint32(cmd)))
	return append(b, body...)
}

// DecodePayload splits a client-facing data packet's payload back into its
// cmd and message-body bytes.
func DecodePayload(payload []byte) (cmd int32, body []byte, err error) {
	v, n := protowire.ConsumeVarint(payload)
	if n < 0 {
		return 0, nil, protowire.ParseError(n)
	}
	return int32(v), payload[n:], nil
}

// Package packet implements the client-facing packet protocol described in
// SPEC_FULL.md §4.1: a single type byte, an optional 3-byte big-endian
// length, and an optional payload whose first field (for data packets) is a
// varint-encoded protobuf command number. Packet typing and wire encoding
// live in one package since this protocol has a single wire stage, rather
// than split codec/packet packages for a multi-stage handshake.
package packet

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Type is the single-byte packet type tag.
type Type byte

const (
	Handshake     Type = 1
	HandshakeAck  Type = 2
	Heartbeat     Type = 3
	Kick          Type = 4
	Request       Type = 5
	Response      Type = 6
	ResponseError Type = 7
	Notify        Type = 8
	Push          Type = 9
)

func (t Type) String() string {
	switch t {
	case Handshake:
		return "Handshake"
	case HandshakeAck:
		return "HandshakeAck"
	case Heartbeat:
		return "Heartbeat"
	case Kick:
		return "Kick"
	case Request:
		return "Request"
	case Response:
		return "Response"
	case ResponseError:
		return "ResponseError"
	case Notify:
		return "Notify"
	case Push:
		return "Push"
	default:
		return fmt.Sprintf("Type(%d)", byte(t))
	}
}

// Valid reports whether t is one of the nine known packet types.
func (t Type) Valid() bool {
	return t >= Handshake && t <= Push
}

// HasPayload reports whether packets of this type carry a payload on the
// wire. Handshake, Heartbeat and Kick are control packets and never do.
func (t Type) HasPayload() bool {
	switch t {
	case HandshakeAck, Request, Response, ResponseError, Notify, Push:
		return true
	default:
		return false
	}
}

// MaxPayloadLen is the hard ceiling imposed by the 3-byte length field:
// 2^24 - 1 bytes. Implementations additionally enforce a smaller
// configurable cap (default 1 MiB, see DefaultMaxPayload).
const MaxPayloadLen = 1<<24 - 1

// DefaultMaxPayload is the default configurable payload cap (§4.1).
const DefaultMaxPayload = 1 << 20

// Packet is one client-protocol unit.
type Packet struct {
	Type    Type
	Payload []byte // nil for control packets; may be length 0 for data packets
}

// ProtocolError is returned by Decode/ReadFrom for malformed input.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return "packet: protocol error: " + e.Reason }

func protoErrf(format string, args ...interface{}) error {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// Encode serializes p to its wire form. maxPayload bounds the payload
// length that may be encoded; pass packet.DefaultMaxPayload unless the
// caller has a narrower configured cap.
func Encode(p Packet, maxPayload int) ([]byte, error) {
	if !p.Type.Valid() {
		return nil, protoErrf("invalid type byte %d", byte(p.Type))
	}
	if !p.Type.HasPayload() {
		return []byte{byte(p.Type)}, nil
	}
	if len(p.Payload) > maxPayload || len(p.Payload) > MaxPayloadLen {
		return nil, protoErrf("payload length %d exceeds cap %d", len(p.Payload), maxPayload)
	}
	buf := make([]byte, 4+len(p.Payload))
	buf[0] = byte(p.Type)
	putUint24(buf[1:4], uint32(len(p.Payload)))
	copy(buf[4:], p.Payload)
	return buf, nil
}

// Decode parses exactly one encoded packet from b, returning an error if b
// contains trailing bytes. decode(encode(p)) == p for every well-formed p
// (§8 "Packet round-trip").
func Decode(b []byte, maxPayload int) (Packet, error) {
	p, n, err := decodePrefix(b, maxPayload)
	if err != nil {
		return Packet{}, err
	}
	if n != len(b) {
		return Packet{}, protoErrf("%d trailing byte(s) after packet", len(b)-n)
	}
	return p, nil
}

// decodePrefix parses one packet from the prefix of b and returns the
// number of bytes consumed; Decode uses the count to reject trailing bytes.
func decodePrefix(b []byte, maxPayload int) (Packet, int, error) {
	if len(b) < 1 {
		return Packet{}, 0, protoErrf("empty input")
	}
	t := Type(b[0])
	if !t.Valid() {
		return Packet{}, 0, protoErrf("unknown type byte %d", b[0])
	}
	if !t.HasPayload() {
		return Packet{Type: t}, 1, nil
	}
	if len(b) < 4 {
		return Packet{}, 0, protoErrf("incomplete length prefix")
	}
	n := int(getUint24(b[1:4]))
	if n > maxPayload || n > MaxPayloadLen {
		return Packet{}, 0, protoErrf("payload length %d exceeds cap %d", n, maxPayload)
	}
	if len(b) < 4+n {
		return Packet{}, 0, protoErrf("incomplete payload: want %d have %d", n, len(b)-4)
	}
	payload := make([]byte, n)
	copy(payload, b[4:4+n])
	return Packet{Type: t, Payload: payload}, 4 + n, nil
}

// ReadFrom reads exactly one packet from r, blocking on I/O as needed. It is
// the streaming counterpart of Decode for an unframed stream; the conn
// transports do not use it (TCPConn reads an outer frame with ReadTCPFrame
// and then calls Decode, WSConn calls Decode on each message).
func ReadFrom(r io.Reader, maxPayload int) (Packet, error) {
	var head [1]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Packet{}, err
	}
	t := Type(head[0])
	if !t.Valid() {
		return Packet{}, protoErrf("unknown type byte %d", head[0])
	}
	if !t.HasPayload() {
		return Packet{Type: t}, nil
	}
	var lenBuf [3]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Packet{}, err
	}
	n := int(getUint24(lenBuf[:]))
	if n > maxPayload || n > MaxPayloadLen {
		return Packet{}, protoErrf("payload length %d exceeds cap %d", n, maxPayload)
	}
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Packet{}, err
		}
	}
	return Packet{Type: t, Payload: payload}, nil
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func getUint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// FrameTCP wraps an encoded Packet in the legacy outer 4-byte big-endian
// length frame used by the TCP SessionTransport (§4.2): the inner Packet
// repeats its own 3-byte length for data packets, preserved for bit-exact
// compatibility with the original wire format.
func FrameTCP(packetBytes []byte) []byte {
	out := make([]byte, 4+len(packetBytes))
	binary.BigEndian.PutUint32(out, uint32(len(packetBytes)))
	copy(out[4:], packetBytes)
	return out
}

// ReadTCPFrame reads one outer TCP frame and returns the inner Packet bytes
// (still to be passed to Decode).
func ReadTCPFrame(r io.Reader, maxFrame int) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint32(lenBuf[:]))
	if n > maxFrame {
		return nil, protoErrf("tcp frame length %d exceeds cap %d", n, maxFrame)
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// Package conn implements SessionTransport (SPEC_FULL.md §4.2): the two
// concrete realizations of a client connection, TCP and WebSocket, behind
// one shared interface so session.Actor never has to know which one
// it was handed.
package conn

import (
	"net"

	"github.com/frostgate/citadel/internal/packet"
)

// Conn is one client connection's read/write halves (§4.2). ReadPacket
// blocks until a full Packet has been decoded or a fatal error/EOF occurs;
// WritePacket serializes pkt and flushes it before returning. Per §4.2,
// both halves must be safely usable concurrently, but writes across
// multiple goroutines are not — callers serialize their own writes via a
// single writer goroutine draining a buffered channel (session.Actor's
// chWrite).
type Conn interface {
	ReadPacket() (packet.Packet, error)
	WritePacket(packet.Packet) error
	Close() error
	RemoteAddr() net.Addr
}

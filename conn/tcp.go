package conn

import (
	"bufio"
	"net"

	"github.com/frostgate/citadel/internal/packet"
)

// TCPConn realizes SessionTransport over a raw net.Conn (§4.2): the wire
// frame is an outer 4-byte big-endian length wrapping the inner Packet
// bytes, which themselves repeat their own 3-byte length for data packets
// — legacy, preserved for bit-exact compatibility. Grounded directly on
// `agent.Agent`'s raw `net.Conn` field and its `Conn.Write`/`Conn.Read`
// usage in `agent/agent.go`.
type TCPConn struct {
	nc         net.Conn
	r          *bufio.Reader
	maxPayload int
	maxFrame   int
}

func NewTCPConn(nc net.Conn, maxPayload int) *TCPConn {
	return &TCPConn{
		nc:         nc,
		r:          bufio.NewReader(nc),
		maxPayload: maxPayload,
		maxFrame:   maxPayload + 4,
	}
}

func (c *TCPConn) ReadPacket() (packet.Packet, error) {
	inner, err := packet.ReadTCPFrame(c.r, c.maxFrame)
	if err != nil {
		return packet.Packet{}, err
	}
	return packet.Decode(inner, c.maxPayload)
}

func (c *TCPConn) WritePacket(p packet.Packet) error {
	inner, err := packet.Encode(p, c.maxPayload)
	if err != nil {
		return err
	}
	_, err = c.nc.Write(packet.FrameTCP(inner))
	return err
}

func (c *TCPConn) Close() error         { return c.nc.Close() }
func (c *TCPConn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

package conn

import (
	"net"

	"github.com/gorilla/websocket"

	"github.com/frostgate/citadel/internal/packet"
)

// WSConn realizes SessionTransport over a gorilla/websocket connection
// (§4.2): one Packet per binary WS frame, no outer length — the framing
// WebSocket already gives for free.
type WSConn struct {
	ws         *websocket.Conn
	maxPayload int
}

func NewWSConn(ws *websocket.Conn, maxPayload int) *WSConn {
	ws.SetReadLimit(int64(maxPayload) + 4)
	return &WSConn{ws: ws, maxPayload: maxPayload}
}

func (c *WSConn) ReadPacket() (packet.Packet, error) {
	typ, data, err := c.ws.ReadMessage()
	if err != nil {
		return packet.Packet{}, err
	}
	if typ != websocket.BinaryMessage {
		return packet.Packet{}, &packet.ProtocolError{Reason: "non-binary websocket frame"}
	}
	return packet.Decode(data, c.maxPayload)
}

func (c *WSConn) WritePacket(p packet.Packet) error {
	b, err := packet.Encode(p, c.maxPayload)
	if err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, b)
}

func (c *WSConn) Close() error         { return c.ws.Close() }
func (c *WSConn) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }

package session

import (
	"net"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/sirupsen/logrus"

	"github.com/frostgate/citadel/internal/packet"
	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/router"
)

// fakeConn is an in-memory conn.Conn double: writes is the server's outbound
// wire, and ReadPacket() serves whatever the test pushes into reads.
type fakeConn struct {
	reads  chan packet.Packet
	writes chan packet.Packet
	closed chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		reads:  make(chan packet.Packet, 8),
		writes: make(chan packet.Packet, 8),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) ReadPacket() (packet.Packet, error) {
	select {
	case p, ok := <-f.reads:
		if !ok {
			return packet.Packet{}, errEOF
		}
		return p, nil
	case <-f.closed:
		return packet.Packet{}, errEOF
	}
}

func (f *fakeConn) WritePacket(p packet.Packet) error {
	select {
	case f.writes <- p:
	default:
	}
	return nil
}

func (f *fakeConn) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

func (f *fakeConn) RemoteAddr() net.Addr { return &net.TCPAddr{} }

var errEOF = &timeoutError{"fake eof"}

func spawnSession(t *testing.T, c *fakeConn) (*actor.ActorSystem, *actor.PID, *Actor) {
	t.Helper()
	system := actor.NewActorSystem()
	a := NewActor("test-session", "gate-1", c, nil, router.NewDefaultTable(), packet.DefaultMaxPayload, logrus.NewEntry(logrus.New()))
	pid := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor { return a }))
	return system, pid, a
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHandshakeTransitionsFreshToLive(t *testing.T) {
	c := newFakeConn()
	_, _, a := spawnSession(t, c)

	c.reads <- packet.Packet{Type: packet.Handshake}
	waitFor(t, func() bool { return a.Status() == Live })

	select {
	case p := <-c.writes:
		if p.Type != packet.HandshakeAck {
			t.Fatalf("want HandshakeAck, got %v", p.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no HandshakeAck written")
	}
}

func TestFreshRejectsNonHandshake(t *testing.T) {
	c := newFakeConn()
	_, _, a := spawnSession(t, c)

	c.reads <- packet.Packet{Type: packet.Heartbeat}
	waitFor(t, func() bool { return a.Status() == Dead })
}

func TestLiveHeartbeatRepliesAndStaysLive(t *testing.T) {
	c := newFakeConn()
	_, _, a := spawnSession(t, c)

	c.reads <- packet.Packet{Type: packet.Handshake}
	waitFor(t, func() bool { return a.Status() == Live })
	<-c.writes // drain HandshakeAck

	c.reads <- packet.Packet{Type: packet.Heartbeat}
	select {
	case p := <-c.writes:
		if p.Type != packet.Heartbeat {
			t.Fatalf("want Heartbeat reply, got %v", p.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no heartbeat reply written")
	}
	if a.Status() != Live {
		t.Fatalf("want Live after heartbeat, got %v", a.Status())
	}
}

func TestUnknownCommandReturnsErrorRspWithoutRouting(t *testing.T) {
	c := newFakeConn()
	_, _, a := spawnSession(t, c)

	c.reads <- packet.Packet{Type: packet.Handshake}
	waitFor(t, func() bool { return a.Status() == Live })
	<-c.writes // drain HandshakeAck

	const unknownCmd = 999999
	c.reads <- packet.Packet{Type: packet.Request, Payload: protos.EncodePayload(unknownCmd, nil)}

	select {
	case p := <-c.writes:
		if p.Type != packet.ResponseError {
			t.Fatalf("want ResponseError, got %v", p.Type)
		}
		_, body, err := protos.DecodePayload(p.Payload)
		if err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		var e protos.ErrorRsp
		if err := e.Unmarshal(body); err != nil {
			t.Fatalf("unmarshal ErrorRsp: %v", err)
		}
		if e.Code != protos.ErrorUnknownCommand {
			t.Fatalf("want ErrorUnknownCommand, got %d", e.Code)
		}
		if e.Message != "UnknownCommandError:999999" {
			t.Fatalf("want UnknownCommandError:999999, got %q", e.Message)
		}
	case <-time.After(time.Second):
		t.Fatal("no ErrorRsp written")
	}
	if a.Status() != Live {
		t.Fatalf("session must stay Live after an unknown cmd, got %v", a.Status())
	}
}

func TestDieIsIdempotent(t *testing.T) {
	c := newFakeConn()
	_, _, a := spawnSession(t, c)

	close(c.reads)
	waitFor(t, func() bool { return a.Status() == Dead })

	// already Dead: must return before touching ctx, so nil is safe here.
	a.die(nil, nil)
}

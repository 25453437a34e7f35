// Package session implements ClientSession (SPEC_FULL.md §4.3): the
// per-connection state machine (Fresh/Live/Dead) — a buffered write channel
// drained by one writer goroutine, a heartbeat goroutine driven by a
// ticker, an atomic state word, and a completion channel closed exactly
// once.
package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/sirupsen/logrus"

	"github.com/frostgate/citadel/cluster"
	"github.com/frostgate/citadel/conn"
	"github.com/frostgate/citadel/internal/packet"
	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/router"
)

// State is the session's lifecycle state (§4.3).
type State int32

const (
	Fresh State = iota
	Live
	Dead
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "Fresh"
	case Live:
		return "Live"
	case Dead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// HBInterval is the fixed heartbeat period (§4.3).
const HBInterval = 5 * time.Second

const writeBacklog = 16

// Push is sent to a session Actor's own PID (typically by a Gate's NATS
// subscriber, see SPEC_FULL.md §4.5) to forward a server-initiated push to
// the client without waiting for any client-originated packet.
type Push struct {
	Cmd  int32
	Data []byte
}

type inboundPacket struct{ p packet.Packet }
type connClosed struct{ err error }

// Actor is the protoactor-go actor wrapping one client connection
// (§4.3). It owns reader/writer/heartbeat goroutines directly rather than
// funneling I/O through further actors (§9 "Actor-ref cycles").
type Actor struct {
	ID         string
	gateRoleID string
	log        *logrus.Entry
	conn       conn.Conn
	fabric     *cluster.Fabric
	routes     *router.Table
	maxPayload int

	state       int32 // atomic, one of Fresh/Live/Dead
	lastHeartAt int64 // atomic, unix seconds of last received Heartbeat

	chWrite     chan packet.Packet
	chStopWrite chan struct{}
	chStopHB    chan struct{}
	chDie       chan struct{}

	// onDead, if set, is invoked exactly once when the session transitions
	// to Dead, letting a GateListener drop it from its push-routing table.
	onDead func()
}

// NewActor constructs a session in state Fresh. routes resolves a
// Request/Notify's cmd to the owning role (§4.3 step 1). id identifies the
// session, and gateRoleID identifies the gate node holding it, together
// forming the addressing pair a role handler needs to send it a
// server-initiated push (SPEC_FULL.md §4.5 pushbus).
func NewActor(id string, gateRoleID string, c conn.Conn, fabric *cluster.Fabric, routes *router.Table, maxPayload int, log *logrus.Entry) *Actor {
	return &Actor{
		ID:          id,
		gateRoleID:  gateRoleID,
		log:         log,
		conn:        c,
		fabric:      fabric,
		routes:      routes,
		maxPayload:  maxPayload,
		state:       int32(Fresh),
		lastHeartAt: time.Now().Unix(),
		chWrite:     make(chan packet.Packet, writeBacklog),
		chStopWrite: make(chan struct{}),
		chStopHB:    make(chan struct{}),
		chDie:       make(chan struct{}),
	}
}

// OnDead registers fn to run once when the session dies.
func (a *Actor) OnDead(fn func()) { a.onDead = fn }

func (a *Actor) Status() State { return State(atomic.LoadInt32(&a.state)) }

func (a *Actor) setStatus(s State) { atomic.StoreInt32(&a.state, int32(s)) }

func (a *Actor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.onStarted(ctx)
	case *inboundPacket:
		a.handlePacket(ctx, msg.p)
	case *connClosed:
		a.die(ctx, msg.err)
	case *Push:
		a.sendPush(msg.Cmd, msg.Data)
	case *actor.Stopping, *actor.Stopped:
		a.closeConn()
	}
}

func (a *Actor) onStarted(ctx actor.Context) {
	self := ctx.Self()
	system := ctx.ActorSystem()

	go a.readLoop(system, self)
	go a.writeLoop()
	go a.heartbeatLoop(system, self)
}

// readLoop only decodes and forwards, never mutates session state
// directly, since the actor mailbox is the serialization point (§5
// "Mailbox discipline").
func (a *Actor) readLoop(system *actor.ActorSystem, self *actor.PID) {
	for {
		p, err := a.conn.ReadPacket()
		if err != nil {
			system.Root.Send(self, &connClosed{err: err})
			return
		}
		system.Root.Send(self, &inboundPacket{p: p})
	}
}

func (a *Actor) writeLoop() {
	for {
		select {
		case p := <-a.chWrite:
			if err := a.conn.WritePacket(p); err != nil {
				a.log.WithError(err).Debug("session write failed")
				select {
				case <-a.chDie:
				default:
					close(a.chDie)
				}
				return
			}
		case <-a.chStopWrite:
			return
		}
	}
}

// heartbeatLoop fires every HBInterval, killing the session if no Heartbeat
// arrived within 3*HBInterval (§4.3).
func (a *Actor) heartbeatLoop(system *actor.ActorSystem, self *actor.PID) {
	ticker := time.NewTicker(HBInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(-3 * HBInterval).Unix()
			if atomic.LoadInt64(&a.lastHeartAt) < deadline {
				system.Root.Send(self, &connClosed{err: errHeartbeatTimeout})
				return
			}
		case <-a.chStopHB:
			return
		}
	}
}

var errHeartbeatTimeout = &timeoutError{"heartbeat timeout"}

type timeoutError struct{ msg string }

func (e *timeoutError) Error() string { return e.msg }

func (a *Actor) handlePacket(ctx actor.Context, p packet.Packet) {
	switch a.Status() {
	case Dead:
		return
	case Fresh:
		a.handleFresh(ctx, p)
	case Live:
		a.handleLive(ctx, p)
	}
}

func (a *Actor) handleFresh(ctx actor.Context, p packet.Packet) {
	switch p.Type {
	case packet.Handshake:
		a.enqueue(packet.Packet{Type: packet.HandshakeAck})
		a.setStatus(Live)
	default:
		// Heartbeat / Request / Notify before handshake: reject by killing
		// the connection (§4.3 table, Fresh row).
		a.die(ctx, nil)
	}
}

func (a *Actor) handleLive(ctx actor.Context, p packet.Packet) {
	switch p.Type {
	case packet.Handshake:
		// no-op per §4.3 table
	case packet.Heartbeat:
		atomic.StoreInt64(&a.lastHeartAt, time.Now().Unix())
		a.enqueue(packet.Packet{Type: packet.Heartbeat})
	case packet.Request:
		a.handleRequest(ctx, p, true)
	case packet.Notify:
		a.handleRequest(ctx, p, false)
	default:
		a.die(ctx, nil)
	}
}

// handleRequest implements §4.3 "Request handling" / "Notify handling".
// Target id resolution for Direct-policy roles is fixed at 0 (see
// SPEC_FULL.md §9 "Direct-policy target id").
func (a *Actor) handleRequest(ctx actor.Context, p packet.Packet, expectReply bool) {
	cmd, body, err := protos.DecodePayload(p.Payload)
	if err != nil {
		if expectReply {
			a.sendError(cmd, protos.ErrorUnknownCommand, "malformed payload")
		} else {
			a.log.WithError(err).Debug("notify: malformed payload")
		}
		return
	}

	if !protos.IsKnownCommand(cmd) {
		if expectReply {
			a.sendError(cmd, protos.ErrorUnknownCommand, fmt.Sprintf("UnknownCommandError:%d", cmd))
		} else {
			a.log.WithField("cmd", cmd).Debug("notify: unknown cmd")
		}
		return
	}

	role := a.routes.RoleFor(cmd)
	reqCtx, cancel := context.WithTimeout(context.Background(), cluster.AskTimeout)
	defer cancel()

	if !expectReply {
		if err := a.fabric.Tell(reqCtx, role, 0, cmd, body, a.gateRoleID, a.ID); err != nil {
			a.log.WithError(err).Debug("notify: tell failed")
		}
		return
	}

	reply, err := a.fabric.Ask(reqCtx, role, 0, cmd, body, a.gateRoleID, a.ID)
	if err != nil {
		if de, ok := err.(*protos.DataError); ok && de.Kind == protos.KindRspError {
			a.sendError(cmd, de.Code, de.Message)
			return
		}
		a.sendError(cmd, protos.ErrorServerInternal, err.Error())
		return
	}
	a.sendResponse(reply.Cmd, reply.Data)
}

func (a *Actor) sendResponse(cmd int32, data []byte) {
	a.enqueue(packet.Packet{Type: packet.Response, Payload: protos.EncodePayload(cmd, data)})
}

func (a *Actor) sendError(cmd, code int32, message string) {
	e := &protos.ErrorRsp{Cmd: cmd, Code: code, Message: message}
	body, err := e.Marshal()
	if err != nil {
		a.log.WithError(err).Error("failed to marshal ErrorRsp")
		return
	}
	a.enqueue(packet.Packet{Type: packet.ResponseError, Payload: protos.EncodePayload(protos.CmdErrorRsp, body)})
}

func (a *Actor) sendPush(cmd int32, data []byte) {
	if a.Status() != Live {
		return
	}
	a.enqueue(packet.Packet{Type: packet.Push, Payload: protos.EncodePayload(cmd, data)})
}

func (a *Actor) enqueue(p packet.Packet) {
	select {
	case a.chWrite <- p:
	default:
		a.log.Warn("session write backlog full, dropping packet")
	}
}

// die transitions the session to Dead and tears down its goroutines
// (§4.3 "On EOF/err" / "On timeout"). Safe to call more than once.
func (a *Actor) die(ctx actor.Context, err error) {
	if a.Status() == Dead {
		return
	}
	a.setStatus(Dead)
	if err != nil {
		a.log.WithError(err).Debug("session closed")
	} else {
		a.log.Debug("session closed")
	}
	// writeLoop may already have closed chDie after a failed write; the stop
	// channels are closed here either way, and only once, since a second
	// call returns at the Dead check above.
	select {
	case <-a.chDie:
	default:
		close(a.chDie)
	}
	close(a.chStopWrite)
	close(a.chStopHB)
	a.closeConn()
	if a.onDead != nil {
		a.onDead()
	}
	ctx.Stop(ctx.Self())
}

func (a *Actor) closeConn() {
	_ = a.conn.Close()
}

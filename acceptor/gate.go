// Package acceptor implements GateListener (§4.2, §4.7): the inbound
// connection acceptor for a gate node, turning raw TCP/WebSocket
// connections into session.Actor instances.
package acceptor

import (
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/frostgate/citadel/cluster"
	"github.com/frostgate/citadel/conn"
	"github.com/frostgate/citadel/internal/packet"
	"github.com/frostgate/citadel/metrics"
	"github.com/frostgate/citadel/pushbus"
	"github.com/frostgate/citadel/router"
	"github.com/frostgate/citadel/session"
)

// GateListener accepts client connections on the ports configured for one
// gate node and spawns a session.Actor for each. It implements
// node.Component. UDP is explicitly unsupported (SPEC_FULL.md §4.2,
// §9 "Open questions resolved"): a non-zero UDPPort makes Start fail fast
// rather than silently accept traffic it cannot frame.
type GateListener struct {
	System     *actor.ActorSystem
	Fabric     *cluster.Fabric
	Routes     *router.Table
	Log        *logrus.Entry
	MaxPayload int

	// RoleID is this gate node's own ServerRoleId text form (e.g.
	// "gate-2"), used as the pushbus subscription subject (§4.5).
	RoleID string
	// PushBus is optional; a nil Bus simply disables server-initiated push
	// delivery for this gate.
	PushBus *pushbus.Bus

	TCPAddr string // "" disables
	WSAddr  string // "" disables
	UDPPort int    // must be 0

	tcpListener net.Listener
	httpServer  *http.Server
	upgrader    websocket.Upgrader

	sessions sync.Map // sessionID string -> *actor.PID
	pushSub  *nats.Subscription

	wg sync.WaitGroup
}

func (g *GateListener) Start() error {
	if g.UDPPort != 0 {
		return fmt.Errorf("acceptor: udp transport not implemented (out_udp_port=%d)", g.UDPPort)
	}
	if g.MaxPayload == 0 {
		g.MaxPayload = packet.DefaultMaxPayload
	}

	if g.TCPAddr != "" {
		ln, err := net.Listen("tcp", g.TCPAddr)
		if err != nil {
			return fmt.Errorf("acceptor: tcp listen %s: %w", g.TCPAddr, err)
		}
		g.tcpListener = ln
		g.wg.Add(1)
		go g.acceptTCP()
	}

	if g.WSAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/", g.serveWS)
		g.httpServer = &http.Server{Addr: g.WSAddr, Handler: mux}
		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			if err := g.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				g.Log.WithError(err).Error("websocket listener stopped unexpectedly")
			}
		}()
	}

	if g.PushBus != nil && g.RoleID != "" {
		sub, err := g.PushBus.Subscribe(g.RoleID, g.deliverPush)
		if err != nil {
			return fmt.Errorf("acceptor: pushbus subscribe: %w", err)
		}
		g.pushSub = sub
	}

	return nil
}

func (g *GateListener) Stop() error {
	if g.pushSub != nil {
		_ = g.pushSub.Unsubscribe()
	}
	if g.tcpListener != nil {
		_ = g.tcpListener.Close()
	}
	if g.httpServer != nil {
		_ = g.httpServer.Close()
	}
	g.wg.Wait()
	return nil
}

// deliverPush forwards a pushbus.Event to the local session it's addressed
// to, if still connected (§4.5 "[NEW] Server-initiated Push fan-out").
func (g *GateListener) deliverPush(ev pushbus.Event) {
	v, ok := g.sessions.Load(ev.SessionID)
	if !ok {
		return
	}
	pid := v.(*actor.PID)
	g.System.Root.Send(pid, &session.Push{Cmd: ev.Cmd, Data: ev.Data})
}

func (g *GateListener) acceptTCP() {
	defer g.wg.Done()
	for {
		nc, err := g.tcpListener.Accept()
		if err != nil {
			return
		}
		g.spawnSession(conn.NewTCPConn(nc, g.MaxPayload))
	}
}

func (g *GateListener) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.Log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	g.spawnSession(conn.NewWSConn(ws, g.MaxPayload))
}

func (g *GateListener) spawnSession(c conn.Conn) {
	id := uuid.NewString()
	a := session.NewActor(id, g.RoleID, c, g.Fabric, g.Routes, g.MaxPayload, g.Log.WithField("remote", c.RemoteAddr().String()))
	a.OnDead(func() {
		g.sessions.Delete(id)
		metrics.LiveSessions.Dec()
	})

	pid := g.System.Root.Spawn(actor.PropsFromProducer(func() actor.Actor { return a }))
	g.sessions.Store(id, pid)
	metrics.LiveSessions.Inc()
}

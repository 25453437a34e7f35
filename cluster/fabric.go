// Package cluster implements the inter-node fabric described in
// SPEC_FULL.md §4.5: peer bootstrap, register-with-center, ask/tell, and
// supervision links whose death propagates as a local unregister.
//
// The actor substrate is asynkron/protoactor-go (see DESIGN.md for the
// grounding). Every remote node reference is an *actor.PID addressed by
// "host:port/role-id"; PeerId (roleid.PeerId) is realized as that
// host:port string (SPEC_FULL.md §3).
package cluster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/remote"
	"github.com/sirupsen/logrus"

	"github.com/frostgate/citadel/metrics"
	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/roleid"
)

// AskTimeout is the default per-call ask timeout (§5 "Ask: default 10s").
const AskTimeout = 10 * time.Second

// LookupBudget bounds the total time a resolve() may spend backing off
// before surfacing DataError::Other("retryable") (§4.4).
const LookupBudget = 2 * time.Second

var (
	ErrUnknownRole = fmt.Errorf("cluster: role has no selection policy")
)

// Fabric is one node's view of the cluster: its own address, a connection
// to Center, and cached remote-node groups per role.
type Fabric struct {
	log *logrus.Entry

	self roleid.ServerRoleId
	peer roleid.PeerId

	system     *actor.ActorSystem
	remote     *remote.Remote
	centerAddr string

	groupsMu sync.RWMutex
	groups   map[roleid.Role]NodeGroup

	watcher *actor.PID
}

// Bootstrap binds the node's remote transport on bindAddr and prepares the
// fabric for Register/Ask/Tell. centerAddr is the configured address of the
// center node (the only peer a non-center node dials, §4.5).
func Bootstrap(system *actor.ActorSystem, self roleid.ServerRoleId, bindAddr, centerAddr string, log *logrus.Entry) (*Fabric, error) {
	host, port, err := ParseBindAddr(bindAddr)
	if err != nil {
		return nil, err
	}
	cHost, cPort, err := ParseBindAddr(centerAddr)
	if err != nil {
		return nil, fmt.Errorf("cluster: center address: %w", err)
	}

	rem := remote.NewRemote(system, remote.Configure(host, port))
	rem.Start()

	f := &Fabric{
		log:        log,
		self:       self,
		peer:       roleid.PeerId(fmt.Sprintf("%s:%d", host, port)),
		system:     system,
		remote:     rem,
		centerAddr: fmt.Sprintf("%s:%d", cHost, cPort),
		groups:     make(map[roleid.Role]NodeGroup),
	}
	f.watcher = system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return &deathWatcher{fabric: f}
	}))
	return f, nil
}

// PeerID returns this node's own PeerId.
func (f *Fabric) PeerID() roleid.PeerId { return f.peer }

// LocalName returns the name under which this node's own role actor should
// be spawned: the role_id text form (its address is implicit, local).
func (f *Fabric) LocalName() string { return f.self.String() }

func (f *Fabric) centerPID() *actor.PID {
	return actor.NewPID(f.centerAddr, "center")
}

// Register attempts to register this node with Center, retrying with the
// §4.4 backoff schedule until ctx is done (§4.6 "Startup ordering").
func (f *Fabric) Register(ctx context.Context) error {
	bo := NewLookupBackoff()
	msg := &protos.RegisterMsg{RoleID: f.self.String(), PeerID: string(f.peer)}
	for {
		fut := f.system.Root.RequestFuture(f.centerPID(), msg, AskTimeout)
		res, err := fut.Result()
		if err == nil {
			if ack, ok := res.(*protos.Ack); ok && ack.OK {
				f.log.WithField("role_id", f.self.String()).Info("registered with center")
				f.watchPID(f.centerPID())
				return nil
			}
		} else {
			f.log.WithError(err).Debug("register attempt failed, retrying")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(bo.Next()):
		}
	}
}

// Unregister tells Center this node is going away. Best-effort; Stop()
// calls it before tearing down the remote transport.
func (f *Fabric) Unregister() {
	msg := &protos.UnregisterMsg{RoleID: f.self.String(), PeerID: string(f.peer)}
	f.system.Root.Send(f.centerPID(), msg)
}

// Stop tears down the remote transport.
func (f *Fabric) Stop() {
	f.Unregister()
	f.remote.Shutdown(true)
}

// Ask sends a ServerMessage to the node of the given role/id and awaits its
// reply (§4.3 "Request handling", §4.5 "ask"). id is only meaningful for
// Direct-policy roles (World/Game); pass 0 otherwise. gateRoleID/sessionID,
// when non-empty, are stamped onto the outbound message so the handler on
// the other end can address a server-initiated push back at the session
// that made this request (SPEC_FULL.md §4.5 "Server-initiated Push fan-out").
func (f *Fabric) Ask(ctx context.Context, role roleid.Role, id uint32, cmd int32, data []byte, gateRoleID, sessionID string) (protos.ServerMessage, error) {
	defer metrics.ObserveAsk(time.Now())

	member, err := f.resolve(ctx, role, id)
	if err != nil {
		return protos.ServerMessage{}, err
	}
	pid := actor.NewPID(string(member.PeerID), member.RoleID.String())
	msg := &protos.ServerMessage{Cmd: cmd, Data: data, GateRoleID: gateRoleID, SessionID: sessionID}
	fut := f.system.Root.RequestFuture(pid, msg, AskTimeout)
	res, err := fut.Result()
	if err != nil {
		f.removeMember(role, member.PeerID)
		return protos.ServerMessage{}, protos.OtherErr("peer disconnected")
	}
	switch m := res.(type) {
	case *protos.ServerMessage:
		return *m, nil
	case *protos.DataError:
		return protos.ServerMessage{}, m
	default:
		return protos.ServerMessage{}, protos.OtherErr(fmt.Sprintf("unexpected reply type %T", res))
	}
}

// Tell sends a fire-and-forget ServerMessage (§4.3 "Notify handling").
// gateRoleID/sessionID carry the same push-addressing metadata as Ask.
func (f *Fabric) Tell(ctx context.Context, role roleid.Role, id uint32, cmd int32, data []byte, gateRoleID, sessionID string) error {
	member, err := f.resolve(ctx, role, id)
	if err != nil {
		return err
	}
	pid := actor.NewPID(string(member.PeerID), member.RoleID.String())
	f.system.Root.Send(pid, &protos.ServerMessage{Cmd: cmd, Data: data, GateRoleID: gateRoleID, SessionID: sessionID})
	return nil
}

// resolve finds a live Member for role (and, for Direct policies, id),
// consulting the local cache first and falling back to Center with the
// §4.4 backoff budget.
func (f *Fabric) resolve(ctx context.Context, role roleid.Role, id uint32) (Member, error) {
	group, err := f.groupFor(role)
	if err != nil {
		return Member{}, err
	}
	if m, ok := group.Pick(id); ok {
		return m, nil
	}

	deadline := time.Now().Add(LookupBudget)
	bo := NewLookupBackoff()
	for {
		member, found, err := f.askCenter(role, id)
		if err != nil {
			return Member{}, protos.OtherErr(err.Error())
		}
		if found {
			group.Put(member)
			f.watchPID(actor.NewPID(string(member.PeerID), member.RoleID.String()))
			return member, nil
		}
		if time.Now().After(deadline) {
			return Member{}, protos.OtherErr("retryable")
		}
		select {
		case <-ctx.Done():
			return Member{}, protos.OtherErr(ctx.Err().Error())
		case <-time.After(bo.Next()):
		}
	}
}

func (f *Fabric) askCenter(role roleid.Role, id uint32) (Member, bool, error) {
	var req interface{ ProtoMessage() }
	directPolicy := role == roleid.World || role == roleid.Game
	if directPolicy {
		req = &protos.AskByIDMsg{RoleID: roleid.New(role, id).String()}
	} else {
		req = &protos.AskMsg{Role: string(role)}
	}
	fut := f.system.Root.RequestFuture(f.centerPID(), req, AskTimeout)
	res, err := fut.Result()
	if err != nil {
		return Member{}, false, err
	}
	reply, ok := res.(*protos.AskReply)
	if !ok || reply.RoleID == "" || reply.PeerID == "" {
		return Member{}, false, nil
	}
	rid, err := roleid.Parse(reply.RoleID)
	if err != nil {
		return Member{}, false, err
	}
	return Member{RoleID: rid, PeerID: roleid.PeerId(reply.PeerID)}, true, nil
}

func (f *Fabric) groupFor(role roleid.Role) (NodeGroup, error) {
	f.groupsMu.RLock()
	g, ok := f.groups[role]
	f.groupsMu.RUnlock()
	if ok {
		return g, nil
	}
	f.groupsMu.Lock()
	defer f.groupsMu.Unlock()
	if g, ok := f.groups[role]; ok {
		return g, nil
	}
	g, err := NewGroupForRole(role)
	if err != nil {
		return nil, err
	}
	f.groups[role] = g
	return g, nil
}

func (f *Fabric) removeMember(role roleid.Role, peer roleid.PeerId) {
	f.groupsMu.RLock()
	g, ok := f.groups[role]
	f.groupsMu.RUnlock()
	if ok {
		g.Remove(peer)
	}
}

func (f *Fabric) removePeerEverywhere(peer roleid.PeerId) {
	f.groupsMu.RLock()
	defer f.groupsMu.RUnlock()
	for _, g := range f.groups {
		g.Remove(peer)
	}
}

func (f *Fabric) watchPID(pid *actor.PID) {
	f.system.Root.Send(f.watcher, &watchRequest{pid: pid})
}

// watchRequest asks the deathWatcher actor to supervise pid from within an
// actor context (actor.Context.Watch is only callable from inside Receive).
type watchRequest struct{ pid *actor.PID }

// deathWatcher is a small dedicated actor whose only job is to Watch every
// remote PID the fabric resolves and translate *actor.Terminated into a
// local group eviction (§4.5 "Link", §9 actor-ref-cycle note: the watcher
// holds only a fabric back-reference, never session/session state).
type deathWatcher struct {
	fabric *Fabric
}

func (d *deathWatcher) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *watchRequest:
		ctx.Watch(msg.pid)
	case *actor.Terminated:
		peer := roleid.PeerId(msg.Who.Address)
		d.fabric.log.WithField("peer_id", peer).Warn("remote peer link died")
		d.fabric.removePeerEverywhere(peer)
	}
}

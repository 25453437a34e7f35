package center

import (
	"github.com/asynkron/protoactor-go/actor"
	"github.com/sirupsen/logrus"

	"github.com/frostgate/citadel/metrics"
	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/roleid"
)

// WellKnownName is the name every node looks the Center actor up by
// (§4.5 "Naming").
const WellKnownName = "center"

// RegistryActor is the Center's single-mailbox actor (§4.6): every mutation
// of the underlying NodeContainer happens inside Receive, so no lock is
// needed on the container itself (§5 "Shared resources").
type RegistryActor struct {
	log       *logrus.Entry
	container *NodeContainer
}

func NewRegistryActor(log *logrus.Entry) *RegistryActor {
	return &RegistryActor{log: log, container: NewNodeContainer()}
}

func (a *RegistryActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.log.Info("center registry online")

	case *protos.RegisterMsg:
		a.handleRegister(ctx, msg)

	case *protos.UnregisterMsg:
		a.handleUnregister(msg)
		ctx.Respond(&protos.Ack{OK: true})

	case *protos.AskMsg:
		ctx.Respond(a.handleAsk(msg))

	case *protos.AskByIDMsg:
		ctx.Respond(a.handleAskByID(msg))

	case *actor.Terminated:
		a.handleLinkDeath(msg)
	}
}

func (a *RegistryActor) handleRegister(ctx actor.Context, msg *protos.RegisterMsg) {
	roleID, err := roleid.Parse(msg.RoleID)
	if err != nil {
		a.log.WithError(err).WithField("role_id", msg.RoleID).Warn("register: malformed role_id, ignoring")
		ctx.Respond(&protos.Ack{OK: false})
		return
	}
	peerID := roleid.PeerId(msg.PeerID)

	a.container.Register(NodeRecord{RoleID: roleID, PeerID: peerID})
	ctx.Watch(actor.NewPID(string(peerID), roleID.String()))
	a.log.WithFields(logrus.Fields{"role_id": roleID.String(), "peer_id": peerID}).Info("registered node")
	metrics.RegisteredNodes.Set(float64(a.container.Count()))

	ctx.Respond(&protos.Ack{OK: true})
}

func (a *RegistryActor) handleUnregister(msg *protos.UnregisterMsg) {
	roleID, err := roleid.Parse(msg.RoleID)
	if err != nil {
		return
	}
	a.container.Unregister(roleID, roleid.PeerId(msg.PeerID))
	metrics.RegisteredNodes.Set(float64(a.container.Count()))
}

func (a *RegistryActor) handleAsk(msg *protos.AskMsg) *protos.AskReply {
	rec, ok := a.container.AskRole(roleid.Role(msg.Role))
	if !ok {
		return &protos.AskReply{}
	}
	return &protos.AskReply{RoleID: rec.RoleID.String(), PeerID: string(rec.PeerID)}
}

func (a *RegistryActor) handleAskByID(msg *protos.AskByIDMsg) *protos.AskReply {
	roleID, err := roleid.Parse(msg.RoleID)
	if err != nil {
		return &protos.AskReply{}
	}
	rec, ok := a.container.AskByID(roleID)
	if !ok {
		return &protos.AskReply{}
	}
	return &protos.AskReply{RoleID: rec.RoleID.String(), PeerID: string(rec.PeerID)}
}

// handleLinkDeath derives the dead PeerId from the terminated PID's address
// and unregisters every record under it (§4.6 "Link-death handler"). Center
// does not broadcast; consumers elsewhere see their own links die
// independently (§4.6).
func (a *RegistryActor) handleLinkDeath(msg *actor.Terminated) {
	peerID := roleid.PeerId(msg.Who.Address)
	removed := a.container.UnregisterPeer(peerID)
	for _, rec := range removed {
		a.log.WithFields(logrus.Fields{"role_id": rec.RoleID.String(), "peer_id": peerID}).
			Warn("node link died, unregistered")
	}
	if len(removed) > 0 {
		metrics.RegisteredNodes.Set(float64(a.container.Count()))
	}
}

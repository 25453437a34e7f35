// Package roleserver provides the protoactor-go actor shell every
// collaborator role (login/world/game) runs: it receives the
// *protos.ServerMessage a cluster.Fabric Ask/Tell addresses to this node and
// hands it to a router.Dispatcher (§4.8 RoleRouter). The business logic
// behind each registered command is the role package's own concern; this
// package only wires the dispatch contract to the actor mailbox, mirroring
// how `center.RegistryActor` wires NodeContainer to its own mailbox.
package roleserver

import (
	"github.com/asynkron/protoactor-go/actor"
	"github.com/sirupsen/logrus"

	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/router"
)

// Actor is the generic request/notify entry point for a role node.
type Actor struct {
	log  *logrus.Entry
	role string
	dis  *router.Dispatcher
}

func NewActor(role string, dis *router.Dispatcher, log *logrus.Entry) *Actor {
	return &Actor{role: role, dis: dis, log: log}
}

func (a *Actor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.log.WithField("role", a.role).Info("role node online")

	case *protos.ServerMessage:
		a.handle(ctx, msg)
	}
}

// handle runs the dispatcher and responds, if the sender expects a reply
// (an Ask produces a Sender, a Tell does not, per protoactor-go semantics).
// A DataError is sent back as the response value itself; cluster.Fabric.Ask
// type-switches on it (§4.3 "Request handling").
func (a *Actor) handle(ctx actor.Context, msg *protos.ServerMessage) {
	reply, derr := a.dis.Dispatch(msg)
	if ctx.Sender() == nil {
		if derr != nil {
			a.log.WithField("cmd", msg.Cmd).WithError(derr).Debug("notify handler failed")
		}
		return
	}
	if derr != nil {
		ctx.Respond(derr)
		return
	}
	ctx.Respond(reply)
}

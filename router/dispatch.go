package router

import "github.com/frostgate/citadel/protos"

// Meta carries the inter-node addressing a ServerMessage was stamped with
// by the originating session.Actor (§4.5 "[NEW] Server-initiated Push
// fan-out"): which gate and which session sent the request, for a handler
// that needs to push something back to that same connection later. Both
// fields are empty for messages that didn't originate from a client
// session (e.g. Center-initiated traffic).
type Meta struct {
	GateRoleID string
	SessionID  string
}

// Handler decodes a ServerMessage's payload into its expected request type,
// invokes the role's business logic, and returns the reply command number
// plus its serialized body, or a DataError if the request is invalid or the
// handler fails (§4.8 RoleRouter). Reply command numbers differ from
// request command numbers by convention (§4.8).
type Handler func(data []byte, meta Meta) (replyCmd int32, replyData []byte, err *protos.DataError)

// Dispatcher is the static cmd -> Handler table a role actor builds once at
// startup (§4.8, §9 "Command→handler dispatch"). Unlike router.Table (which
// resolves a role from a cmd), Dispatcher lives inside the role node itself
// and actually decodes/invokes.
type Dispatcher struct {
	handlers map[int32]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[int32]Handler)}
}

// Register binds cmd to handler, replacing any handler already bound to it.
// Each role package's NewActor calls it explicitly, not via reflection or
// codegen (§4.8).
func (d *Dispatcher) Register(cmd int32, h Handler) {
	d.handlers[cmd] = h
}

// Dispatch runs the handler registered for msg.Cmd, returning either the
// reply ServerMessage or a DataError (§4.8's pseudocode: "else: return
// DataError::Other(\"not found handler\")").
func (d *Dispatcher) Dispatch(msg *protos.ServerMessage) (*protos.ServerMessage, *protos.DataError) {
	h, ok := d.handlers[msg.Cmd]
	if !ok {
		return nil, protos.OtherErr("not found handler")
	}
	meta := Meta{GateRoleID: msg.GateRoleID, SessionID: msg.SessionID}
	replyCmd, body, derr := h(msg.Data, meta)
	if derr != nil {
		return nil, derr
	}
	return &protos.ServerMessage{Cmd: replyCmd, Data: body}, nil
}

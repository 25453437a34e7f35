// Package router holds the two static command tables: Table, the
// session-side map from cmd to the role that owns it (§4.3), and
// Dispatcher, the role-side map from cmd to Handler (§4.8, see dispatch.go).
// Both are populated by explicit registration calls at startup rather than
// reflection or code generation.
package router

import (
	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/roleid"
)

// Table maps a client-facing command number to the role responsible for
// it (§4.3 "Resolve target role from cmd via a static command→role table").
type Table struct {
	routes   map[int32]roleid.Role
	fallback roleid.Role
}

// NewTable builds an empty table whose unmatched cmds fall through to
// defaultRole (Game, per §4.3 "Game owns everything else by default").
func NewTable(defaultRole roleid.Role) *Table {
	return &Table{routes: make(map[int32]roleid.Role), fallback: defaultRole}
}

// Register binds cmd to role. NewDefaultTable calls it once per
// Login-owned command.
func (t *Table) Register(cmd int32, role roleid.Role) {
	t.routes[cmd] = role
}

// RoleFor resolves cmd to the role that should handle it.
func (t *Table) RoleFor(cmd int32) roleid.Role {
	if role, ok := t.routes[cmd]; ok {
		return role
	}
	return t.fallback
}

// NewDefaultTable builds the command table fixed by §4.3/§9: Login owns
// login/register/logout commands, World owns world-scoped commands (none
// are reserved yet — the table is open for a role's main to Register more
// at startup), and everything else, including StoreInfo, falls to Game by
// default.
func NewDefaultTable() *Table {
	t := NewTable(roleid.Game)
	t.Register(protos.CmdLoginReq, roleid.Login)
	t.Register(protos.CmdLoginRsp, roleid.Login)
	t.Register(protos.CmdRegisterReq, roleid.Login)
	t.Register(protos.CmdRegisterRsp, roleid.Login)
	t.Register(protos.CmdLogoutReq, roleid.Login)
	t.Register(protos.CmdLogoutRsp, roleid.Login)
	return t
}

// Package world implements the world role's command handlers (SPEC_FULL.md
// §1 "stub collaborators"). The client command set spec.md fixes
// (login/register/logout/store) never targets World directly — router's
// fallback resolves unmatched commands to Game, not World, per
// SPEC_FULL.md §9 "Direct-policy target id" — so this role currently
// carries no registered commands. It still registers with Center and can
// be resolved through Center's Ask/AskByID like any other node (§4.6), ready to host
// world-scoped commands a richer client protocol would add.
package world

import (
	"github.com/sirupsen/logrus"

	"github.com/frostgate/citadel/roleserver"
	"github.com/frostgate/citadel/router"
)

// NewActor builds an empty dispatcher wrapped as a roleserver.Actor. Any
// ServerMessage it receives today returns DataError::Other("not found
// handler") (§4.8), which is the correct behavior until a world-scoped
// command is added to the client protocol.
func NewActor(log *logrus.Entry) *roleserver.Actor {
	return roleserver.NewActor("world", router.NewDispatcher(), log)
}

package router

import (
	"testing"

	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/roleid"
)

func TestDefaultTableRoutesLoginCommands(t *testing.T) {
	tbl := NewDefaultTable()
	if got := tbl.RoleFor(protos.CmdLoginReq); got != roleid.Login {
		t.Fatalf("want login, got %s", got)
	}
	if got := tbl.RoleFor(protos.CmdRegisterReq); got != roleid.Login {
		t.Fatalf("want login, got %s", got)
	}
}

func TestDefaultTableFallsBackToGame(t *testing.T) {
	tbl := NewDefaultTable()
	if got := tbl.RoleFor(protos.CmdStoreInfoReq); got != roleid.Game {
		t.Fatalf("want game fallback, got %s", got)
	}
	if got := tbl.RoleFor(999999); got != roleid.Game {
		t.Fatalf("want game fallback for unknown cmd, got %s", got)
	}
}

func TestRegisterOverridesFallback(t *testing.T) {
	tbl := NewTable(roleid.Game)
	tbl.Register(42, roleid.World)
	if got := tbl.RoleFor(42); got != roleid.World {
		t.Fatalf("want world, got %s", got)
	}
}

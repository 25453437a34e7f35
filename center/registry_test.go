package center

import (
	"testing"

	"github.com/frostgate/citadel/roleid"
)

func TestRegisterAppearsInAllIndices(t *testing.T) {
	c := NewNodeContainer()
	rid := roleid.New(roleid.Login, 1)
	c.Register(NodeRecord{RoleID: rid, PeerID: "peer-a"})

	if !c.Contains(rid) {
		t.Fatal("registered record should appear in all four indices")
	}
	if rec, ok := c.AskByID(rid); !ok || rec.PeerID != "peer-a" {
		t.Fatalf("AskByID mismatch: %+v ok=%v", rec, ok)
	}
	if rec, ok := c.AskRole(roleid.Login); !ok || rec.RoleID != rid {
		t.Fatalf("AskRole mismatch: %+v ok=%v", rec, ok)
	}
}

func TestUnregisterRemovesFromAllIndices(t *testing.T) {
	c := NewNodeContainer()
	rid := roleid.New(roleid.Gate, 2)
	c.Register(NodeRecord{RoleID: rid, PeerID: "peer-b"})
	c.Unregister(rid, "peer-b")

	if c.Contains(rid) {
		t.Fatal("unregistered record should appear in none of the four indices")
	}
	if _, ok := c.AskByID(rid); ok {
		t.Fatal("AskByID should fail after unregister")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	c := NewNodeContainer()
	rid := roleid.New(roleid.World, 1)
	c.Register(NodeRecord{RoleID: rid, PeerID: "peer-c"})
	c.Unregister(rid, "peer-c")
	c.Unregister(rid, "peer-c") // must not panic or corrupt state
	if c.Contains(rid) {
		t.Fatal("expected record gone")
	}
}

func TestUnregisterPeerRemovesAllItsRecords(t *testing.T) {
	c := NewNodeContainer()
	rid := roleid.New(roleid.Login, 5)
	c.Register(NodeRecord{RoleID: rid, PeerID: "peer-d"})

	removed := c.UnregisterPeer("peer-d")
	if len(removed) != 1 || removed[0].RoleID != rid {
		t.Fatalf("unexpected removed set: %+v", removed)
	}
	if c.Contains(rid) {
		t.Fatal("record should be gone after peer unregister")
	}
}

func TestAskRoleReturnsFirstInInsertionOrder(t *testing.T) {
	c := NewNodeContainer()
	a := roleid.New(roleid.Login, 1)
	b := roleid.New(roleid.Login, 2)
	c.Register(NodeRecord{RoleID: a, PeerID: "peer-a"})
	c.Register(NodeRecord{RoleID: b, PeerID: "peer-b"})

	rec, ok := c.AskRole(roleid.Login)
	if !ok || rec.RoleID != a {
		t.Fatalf("want first-registered node %v, got %+v", a, rec)
	}
}

func TestAskByIDIdempotentWithoutIntervening(t *testing.T) {
	c := NewNodeContainer()
	rid := roleid.New(roleid.Game, 9)
	c.Register(NodeRecord{RoleID: rid, PeerID: "peer-e"})

	first, ok1 := c.AskByID(rid)
	second, ok2 := c.AskByID(rid)
	if !ok1 || !ok2 || first != second {
		t.Fatalf("repeated AskByID should be idempotent: %+v vs %+v", first, second)
	}
}

func TestAskUnknownRoleReturnsEmpty(t *testing.T) {
	c := NewNodeContainer()
	if _, ok := c.AskRole(roleid.World); ok {
		t.Fatal("expected no live node")
	}
}

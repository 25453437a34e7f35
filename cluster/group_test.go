package cluster

import (
	"fmt"
	"testing"

	"github.com/frostgate/citadel/roleid"
)

func TestLeaseGroupRotatesFIFO(t *testing.T) {
	g := newLeaseGroup()
	g.Put(Member{RoleID: roleid.New(roleid.Login, 1), PeerID: "p1"})
	g.Put(Member{RoleID: roleid.New(roleid.Login, 2), PeerID: "p2"})

	first, ok := g.Pick(0)
	if !ok || first.PeerID != "p1" {
		t.Fatalf("want p1 first, got %+v", first)
	}
	second, ok := g.Pick(0)
	if !ok || second.PeerID != "p2" {
		t.Fatalf("want p2 second, got %+v", second)
	}
	third, ok := g.Pick(0)
	if !ok || third.PeerID != "p1" {
		t.Fatalf("want p1 to cycle back, got %+v", third)
	}
}

func TestDirectGroupRoutesByID(t *testing.T) {
	g := newDirectGroup()
	g.Put(Member{RoleID: roleid.New(roleid.World, 7), PeerID: "w7"})

	m, ok := g.Pick(7)
	if !ok || m.PeerID != "w7" {
		t.Fatalf("want w7, got %+v ok=%v", m, ok)
	}
	if _, ok := g.Pick(8); ok {
		t.Fatal("expected no member for unregistered id 8")
	}
}

func TestGroupRemoveIsIdempotent(t *testing.T) {
	g := newLeaseGroup()
	g.Put(Member{RoleID: roleid.New(roleid.Login, 1), PeerID: "p1"})
	g.Remove("p1")
	g.Remove("p1")
	if g.Len() != 0 {
		t.Fatalf("want empty group, got %d", g.Len())
	}
}

func TestNewGroupForRoleSelectsPolicy(t *testing.T) {
	cases := map[roleid.Role]string{
		roleid.Login: "*cluster.leaseGroup",
		roleid.World: "*cluster.directGroup",
		roleid.Game:  "*cluster.directGroup",
		roleid.Gate:  "*cluster.randomGroup",
	}
	for role, want := range cases {
		g, err := NewGroupForRole(role)
		if err != nil {
			t.Fatalf("NewGroupForRole(%v): %v", role, err)
		}
		if got := fmt.Sprintf("%T", g); got != want {
			t.Fatalf("NewGroupForRole(%v) = %s, want %s", role, got, want)
		}
	}
	if _, err := NewGroupForRole(roleid.Center); err == nil {
		t.Fatal("expected error for Center role")
	}
}

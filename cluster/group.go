package cluster

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/frostgate/citadel/roleid"
)

// Member is one live remote node known to a NodeGroup.
type Member struct {
	RoleID roleid.ServerRoleId
	PeerID roleid.PeerId
}

// NodeGroup holds the live membership for one role and selects a target
// according to that role's load-balancing policy (§4.4).
type NodeGroup interface {
	// Put inserts or replaces a member.
	Put(m Member)
	// Remove drops any member with the given PeerId.
	Remove(peer roleid.PeerId)
	// Pick selects one member. id is used only by policies that route by
	// explicit id (Direct); it is ignored by Lease and Random.
	Pick(id uint32) (Member, bool)
	// Len reports live membership size.
	Len() int
}

// NewGroupForRole returns the NodeGroup implementation mandated for role by
// §4.4: Lease for Login, Direct for World/Game, Random for Gate.
func NewGroupForRole(role roleid.Role) (NodeGroup, error) {
	switch role {
	case roleid.Login:
		return newLeaseGroup(), nil
	case roleid.World, roleid.Game:
		return newDirectGroup(), nil
	case roleid.Gate:
		return newRandomGroup(), nil
	default:
		return nil, fmt.Errorf("cluster: no selection policy for role %q", role)
	}
}

// leaseGroup rotates members FIFO: pop front, use, push back. Spreads
// sign-in load across Login nodes.
type leaseGroup struct {
	mu      sync.Mutex
	order   []roleid.PeerId
	members map[roleid.PeerId]Member
}

func newLeaseGroup() *leaseGroup {
	return &leaseGroup{members: make(map[roleid.PeerId]Member)}
}

func (g *leaseGroup) Put(m Member) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.members[m.PeerID]; !exists {
		g.order = append(g.order, m.PeerID)
	}
	g.members[m.PeerID] = m
}

func (g *leaseGroup) Remove(peer roleid.PeerId) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.members, peer)
	for i, p := range g.order {
		if p == peer {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func (g *leaseGroup) Pick(uint32) (Member, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.order) == 0 {
		return Member{}, false
	}
	front := g.order[0]
	g.order = append(g.order[1:], front)
	return g.members[front], true
}

func (g *leaseGroup) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}

// directGroup routes by caller-specified ServerRoleId.ID: no load balancing,
// used for stateful sharding (World, Game).
type directGroup struct {
	mu      sync.Mutex
	members map[uint32]Member
}

func newDirectGroup() *directGroup {
	return &directGroup{members: make(map[uint32]Member)}
}

func (g *directGroup) Put(m Member) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[m.RoleID.ID] = m
}

func (g *directGroup) Remove(peer roleid.PeerId) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, m := range g.members {
		if m.PeerID == peer {
			delete(g.members, id)
		}
	}
}

func (g *directGroup) Pick(id uint32) (Member, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.members[id]
	return m, ok
}

func (g *directGroup) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}

// randomGroup picks a uniformly random live member; used only for
// server-initiated pushes toward an arbitrary Gate (§4.4).
type randomGroup struct {
	mu      sync.Mutex
	order   []roleid.PeerId
	members map[roleid.PeerId]Member
}

func newRandomGroup() *randomGroup {
	return &randomGroup{members: make(map[roleid.PeerId]Member)}
}

func (g *randomGroup) Put(m Member) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.members[m.PeerID]; !exists {
		g.order = append(g.order, m.PeerID)
	}
	g.members[m.PeerID] = m
}

func (g *randomGroup) Remove(peer roleid.PeerId) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.members, peer)
	for i, p := range g.order {
		if p == peer {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func (g *randomGroup) Pick(uint32) (Member, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.order) == 0 {
		return Member{}, false
	}
	return g.members[g.order[rand.Intn(len(g.order))]], true
}

func (g *randomGroup) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}

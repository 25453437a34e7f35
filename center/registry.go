// Package center implements the Registry described in SPEC_FULL.md §4.6:
// the authoritative (role,id)/peer directory, mutated only from the Center
// actor's single mailbox.
package center

import (
	"github.com/frostgate/citadel/roleid"
)

// NodeRecord is what Center stores per live node (§3).
type NodeRecord struct {
	RoleID roleid.ServerRoleId
	PeerID roleid.PeerId
}

// NodeContainer holds the four indices §3 requires to stay consistent
// under every register/unregister: by peer, by role (insertion order, for
// Ask), by (role,id) text form, and per-role subtables keyed by numeric id.
type NodeContainer struct {
	byPeer    map[roleid.PeerId]NodeRecord
	byRoleID  map[string]NodeRecord
	byRole    map[roleid.Role][]string // role_id text forms, insertion order
	byRoleSub map[roleid.Role]map[uint32]NodeRecord
}

func NewNodeContainer() *NodeContainer {
	return &NodeContainer{
		byPeer:    make(map[roleid.PeerId]NodeRecord),
		byRoleID:  make(map[string]NodeRecord),
		byRole:    make(map[roleid.Role][]string),
		byRoleSub: make(map[roleid.Role]map[uint32]NodeRecord),
	}
}

// Register inserts rec into all four indices. Re-registering a RoleID that
// is already present (typically after a reconnect) replaces its record; if
// the PeerID changed, the old peer's entry is dropped from the by-peer index.
// No conflict is reported to the caller.
func (c *NodeContainer) Register(rec NodeRecord) {
	roleIDText := rec.RoleID.String()

	if old, exists := c.byRoleID[roleIDText]; !exists {
		c.byRole[rec.RoleID.Role] = append(c.byRole[rec.RoleID.Role], roleIDText)
	} else if old.PeerID != rec.PeerID {
		delete(c.byPeer, old.PeerID)
	}
	c.byRoleID[roleIDText] = rec
	c.byPeer[rec.PeerID] = rec

	sub, ok := c.byRoleSub[rec.RoleID.Role]
	if !ok {
		sub = make(map[uint32]NodeRecord)
		c.byRoleSub[rec.RoleID.Role] = sub
	}
	sub[rec.RoleID.ID] = rec
}

// Unregister removes any record matching roleID and peerID from all four
// indices. Idempotent (§4.6).
func (c *NodeContainer) Unregister(roleID roleid.ServerRoleId, peerID roleid.PeerId) {
	roleIDText := roleID.String()
	rec, exists := c.byRoleID[roleIDText]
	if !exists || rec.PeerID != peerID {
		return
	}
	c.removeRecord(rec)
}

// UnregisterPeer removes every record registered under peerID (§4.6
// "Link-death handler"). Returns the removed records so callers can log
// which role_ids went away.
func (c *NodeContainer) UnregisterPeer(peerID roleid.PeerId) []NodeRecord {
	rec, ok := c.byPeer[peerID]
	if !ok {
		return nil
	}
	c.removeRecord(rec)
	return []NodeRecord{rec}
}

func (c *NodeContainer) removeRecord(rec NodeRecord) {
	roleIDText := rec.RoleID.String()
	delete(c.byRoleID, roleIDText)
	delete(c.byPeer, rec.PeerID)
	if sub, ok := c.byRoleSub[rec.RoleID.Role]; ok {
		delete(sub, rec.RoleID.ID)
	}
	list := c.byRole[rec.RoleID.Role]
	for i, id := range list {
		if id == roleIDText {
			c.byRole[rec.RoleID.Role] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// AskRole returns the first live node of role in insertion order, or the
// zero value and false if none is live (§4.6 "Ask").
func (c *NodeContainer) AskRole(role roleid.Role) (NodeRecord, bool) {
	list := c.byRole[role]
	if len(list) == 0 {
		return NodeRecord{}, false
	}
	rec, ok := c.byRoleID[list[0]]
	return rec, ok
}

// AskByID returns the stored record for roleID, or false if absent (§4.6
// "AskById"). The peer_id is included in the record because a caller
// cannot route to a role_id without its address.
func (c *NodeContainer) AskByID(roleID roleid.ServerRoleId) (NodeRecord, bool) {
	rec, ok := c.byRoleID[roleID.String()]
	return rec, ok
}

// Count returns the number of nodes currently registered.
func (c *NodeContainer) Count() int {
	return len(c.byRoleID)
}

// Contains reports whether roleID is currently registered — used by tests
// to assert the "appears in all four indices / none" invariant (§8).
func (c *NodeContainer) Contains(roleID roleid.ServerRoleId) bool {
	rec, ok := c.byRoleID[roleID.String()]
	if !ok {
		return false
	}
	_, peerOK := c.byPeer[rec.PeerID]
	sub, roleOK := c.byRoleSub[roleID.Role]
	_, subOK := sub[roleID.ID]
	inList := false
	for _, id := range c.byRole[roleID.Role] {
		if id == roleID.String() {
			inList = true
			break
		}
	}
	return peerOK && roleOK && subOK && inList
}

// Package roleid defines the cluster-wide logical addressing types:
// Role, ServerRoleId and PeerId.
package roleid

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is one of the five process types that make up the cluster.
type Role string

const (
	Login  Role = "login"
	Gate   Role = "gate"
	Game   Role = "game"
	World  Role = "world"
	Center Role = "center"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case Login, Gate, Game, World, Center:
		return true
	default:
		return false
	}
}

// ServerRoleId is the globally unique logical address of a node: a
// (Role, id) pair. Its text form is "<role>-<id>", e.g. "login-1".
type ServerRoleId struct {
	Role Role
	ID   uint32
}

func New(role Role, id uint32) ServerRoleId {
	return ServerRoleId{Role: role, ID: id}
}

// String returns the canonical "<role>-<id>" text form.
func (s ServerRoleId) String() string {
	return fmt.Sprintf("%s-%d", s.Role, s.ID)
}

// IsZero reports whether s is the empty ServerRoleId.
func (s ServerRoleId) IsZero() bool {
	return s.Role == "" && s.ID == 0
}

// Parse parses the "<role>-<id>" text form produced by String.
func Parse(text string) (ServerRoleId, error) {
	idx := strings.LastIndexByte(text, '-')
	if idx <= 0 || idx == len(text)-1 {
		return ServerRoleId{}, fmt.Errorf("roleid: malformed server-role id %q", text)
	}
	role := Role(text[:idx])
	if !role.Valid() {
		return ServerRoleId{}, fmt.Errorf("roleid: unknown role %q in %q", role, text)
	}
	id, err := strconv.ParseUint(text[idx+1:], 10, 32)
	if err != nil {
		return ServerRoleId{}, fmt.Errorf("roleid: malformed id in %q: %w", text, err)
	}
	return ServerRoleId{Role: role, ID: uint32(id)}, nil
}

// PeerId is an opaque, per-process identifier minted at bootstrap. In this
// implementation it is realized as the node's protoactor-go remote address
// ("host:port"); callers must treat it as opaque and never parse it — it is
// only compared, stored and used to construct a remote actor.PID. See
// SPEC_FULL.md §3 for the rationale.
type PeerId string

func (p PeerId) String() string { return string(p) }

// IsZero reports whether p carries no address.
func (p PeerId) IsZero() bool { return p == "" }

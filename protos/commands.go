// Package protos hand-implements the protobuf-shaped wire messages named in
// SPEC_FULL.md §6.3. No protoc toolchain runs as part of this build, so
// each message type implements its own Marshal/Unmarshal directly against
// google.golang.org/protobuf's low-level wire primitives (protowire)
// instead of being generated from a .proto file. This package is the
// external "WireSchema" collaborator described in SPEC_FULL.md §1.
package protos

import "strconv"

// Command numbers are allocated in blocks per message family (§6.3). A
// message's reply command differs from its request command; by convention
// requests are odd and replies are even within a command-pair block.
const (
	CmdErrorRsp = 601

	CmdLoginReq = 1001
	CmdLoginRsp = 1002

	CmdRegisterReq = 1003
	CmdRegisterRsp = 1004

	CmdLogoutReq = 1005
	CmdLogoutRsp = 1006

	CmdStoreInfoReq = 1101
	CmdStoreInfoRsp = 1102

	// CmdKickPush is a server-initiated Push, not a request/reply pair: it
	// has no companion req/rsp cmd.
	CmdKickPush = 1201
)

// KnownCommands is the canonical name->cmd table for every command this
// build recognizes (§6.3). cmd/citadel validates it at startup with
// ValidateCommandTable, and session consults IsKnownCommand against it to
// tell an unrecognized cmd apart from one that is merely unhandled by the
// role it routes to.
var KnownCommands = map[string]int32{
	"error_rsp":      CmdErrorRsp,
	"login_req":      CmdLoginReq,
	"login_rsp":      CmdLoginRsp,
	"register_req":   CmdRegisterReq,
	"register_rsp":   CmdRegisterRsp,
	"logout_req":     CmdLogoutReq,
	"logout_rsp":     CmdLogoutRsp,
	"store_info_req": CmdStoreInfoReq,
	"store_info_rsp": CmdStoreInfoRsp,
	"kick_push":      CmdKickPush,
}

var knownCommandSet = buildKnownCommandSet()

func buildKnownCommandSet() map[int32]struct{} {
	set := make(map[int32]struct{}, len(KnownCommands))
	for _, cmd := range KnownCommands {
		set[cmd] = struct{}{}
	}
	return set
}

// IsKnownCommand reports whether cmd is one of KnownCommands' values.
func IsKnownCommand(cmd int32) bool {
	_, ok := knownCommandSet[cmd]
	return ok
}

// commandBlocks enumerates the declared [start,end] ranges each message
// family owns, enforced by ValidateCommandTable at startup (§6.3 "a
// build-time check enforces cmd is within the declared block and that all
// cmds are unique").
var commandBlocks = []struct {
	name       string
	start, end int32
}{
	{"error", 601, 601},
	{"login", 1001, 1006},
	{"store", 1101, 1102},
	{"push", 1201, 1201},
}

// ValidateCommandTable checks that every cmd in cmds falls within a
// declared block and that no cmd repeats. It is called once at process
// startup from cmd/citadel before any role accepts traffic.
func ValidateCommandTable(cmds map[string]int32) error {
	seen := make(map[int32]string, len(cmds))
	for name, cmd := range cmds {
		if other, dup := seen[cmd]; dup {
			return &commandTableError{reason: "duplicate cmd " + strconv.Itoa(int(cmd)) + " used by " + name + " and " + other}
		}
		seen[cmd] = name

		inBlock := false
		for _, blk := range commandBlocks {
			if cmd >= blk.start && cmd <= blk.end {
				inBlock = true
				break
			}
		}
		if !inBlock {
			return &commandTableError{reason: name + " cmd " + strconv.Itoa(int(cmd)) + " is outside any declared command block"}
		}
	}
	return nil
}

type commandTableError struct{ reason string }

func (e *commandTableError) Error() string { return "protos: " + e.reason }

// Package game implements the game role's command handlers (§6.3,
// SPEC_FULL.md §1 "stub collaborators"): StoreInfoReq/Rsp is the only
// command the client protocol currently routes here by default (router's
// fallback role, §4.3), so this is the single handler that exercises it.
package game

import (
	"github.com/sirupsen/logrus"

	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/roleserver"
	"github.com/frostgate/citadel/router"
)

// Handlers holds the collaborators the game role's command handlers need.
type Handlers struct {
	Log *logrus.Entry
}

func NewActor(h Handlers) *roleserver.Actor {
	dis := router.NewDispatcher()
	dis.Register(protos.CmdStoreInfoReq, h.handleStoreInfo)
	return roleserver.NewActor("game", dis, h.Log)
}

// handleStoreInfo echoes back an empty item list for the requested store:
// inventory/economy logic is out of scope (spec.md Non-goals), this only
// has to honor the StoreInfoReq -> StoreInfoRsp contract (§6.3).
func (h Handlers) handleStoreInfo(data []byte, meta router.Meta) (int32, []byte, *protos.DataError) {
	req := &protos.StoreInfoReq{}
	if err := req.Unmarshal(data); err != nil {
		return 0, nil, protos.RspErr(protos.ErrorInvalidArgument, "malformed StoreInfoReq")
	}

	rsp := &protos.StoreInfoRsp{StoreID: req.StoreID}
	body, err := rsp.Marshal()
	if err != nil {
		return 0, nil, protos.RspErr(protos.ErrorServerInternal, "marshal failed")
	}
	return protos.CmdStoreInfoRsp, body, nil
}

package roleserver

import (
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/sirupsen/logrus"

	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/router"
)

func TestActorRespondsToAsk(t *testing.T) {
	dis := router.NewDispatcher()
	dis.Register(protos.CmdStoreInfoReq, func(data []byte, meta router.Meta) (int32, []byte, *protos.DataError) {
		return protos.CmdStoreInfoRsp, []byte("rsp"), nil
	})

	system := actor.NewActorSystem()
	log := logrus.NewEntry(logrus.New())
	pid := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewActor("game", dis, log)
	}))

	fut := system.Root.RequestFuture(pid, &protos.ServerMessage{Cmd: protos.CmdStoreInfoReq}, time.Second)
	res, err := fut.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reply, ok := res.(*protos.ServerMessage)
	if !ok || reply.Cmd != protos.CmdStoreInfoRsp || string(reply.Data) != "rsp" {
		t.Fatalf("unexpected reply: %+v", res)
	}
}

func TestActorRespondsWithDataErrorOnUnknownCmd(t *testing.T) {
	dis := router.NewDispatcher()
	system := actor.NewActorSystem()
	log := logrus.NewEntry(logrus.New())
	pid := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewActor("game", dis, log)
	}))

	fut := system.Root.RequestFuture(pid, &protos.ServerMessage{Cmd: 999}, time.Second)
	res, err := fut.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.(*protos.DataError); !ok {
		t.Fatalf("expected *protos.DataError, got %T", res)
	}
}

// Command citadel is the process entry point for every role in the
// cluster (§6.1): `citadel --config path.toml --server role-id ...`. One
// node.Runtime is built per --server flag and handed to a shared
// node.Supervisor, which blocks until SIGINT/SIGTERM (§4.7).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/remote"
	"github.com/sirupsen/logrus"

	"github.com/frostgate/citadel/acceptor"
	"github.com/frostgate/citadel/center"
	"github.com/frostgate/citadel/cluster"
	"github.com/frostgate/citadel/config"
	"github.com/frostgate/citadel/game"
	"github.com/frostgate/citadel/internal/packet"
	"github.com/frostgate/citadel/kvstore"
	"github.com/frostgate/citadel/logger"
	"github.com/frostgate/citadel/login"
	"github.com/frostgate/citadel/metrics"
	"github.com/frostgate/citadel/node"
	"github.com/frostgate/citadel/protos"
	"github.com/frostgate/citadel/pushbus"
	"github.com/frostgate/citadel/roleid"
	"github.com/frostgate/citadel/router"
	"github.com/frostgate/citadel/world"
)

// registerTimeout bounds how long a non-center role waits for its first
// successful Register with Center during startup before Runtime.Start
// fails that node (§4.7 "Errors in start are fatal to that node").
const registerTimeout = 30 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "citadel:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if len(flags.Servers) == 0 {
		return fmt.Errorf("at least one --server role-id is required")
	}
	if err := protos.ValidateCommandTable(protos.KnownCommands); err != nil {
		return fmt.Errorf("command table: %w", err)
	}

	file, err := config.Load(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	prefix := "all"
	if len(flags.Servers) == 1 {
		prefix = flags.Servers[0]
	}
	log, stopLog, err := logger.New(file.Log.Dir, prefix, file.Log.MaxFile, file.Log.Console)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer stopLog()

	supervisor := node.NewSupervisor(log.WithField("component", "supervisor"))

	for _, roleIDStr := range flags.Servers {
		roleID, err := roleid.Parse(roleIDStr)
		if err != nil {
			return fmt.Errorf("--server %s: %w", roleIDStr, err)
		}
		spec := config.NodeSpec{ID: roleID.ID, InAddress: file.CenterInAddress}
		if roleID.Role != roleid.Center {
			var ok bool
			spec, ok = file.NodeByRoleID(string(roleID.Role), roleID.ID)
			if !ok {
				return fmt.Errorf("--server %s: no matching entry in config", roleIDStr)
			}
		}

		rt, err := buildRuntime(roleID, spec, file, log)
		if err != nil {
			return fmt.Errorf("build node %s: %w", roleIDStr, err)
		}
		supervisor.Add(rt)
	}

	return supervisor.RunUntilSignal()
}

func buildRuntime(roleID roleid.ServerRoleId, spec config.NodeSpec, file *config.File, log *logrus.Logger) (*node.Runtime, error) {
	entry := log.WithField("role_id", roleID.String())
	rt := node.NewRuntime(roleID.String(), entry)

	if file.DebugAddr != "" {
		rt.Add(&metrics.DebugServer{Addr: file.DebugAddr})
	}

	if roleID.Role == roleid.Center {
		actorSystem := actor.NewActorSystem()
		rt.Add(&centerComponent{system: actorSystem, bindAddr: spec.InAddress, log: entry})
		return rt, nil
	}

	actorSystem := actor.NewActorSystem()
	fabric, err := cluster.Bootstrap(actorSystem, roleID, spec.InAddress, file.CenterInAddress, entry)
	if err != nil {
		return nil, err
	}

	// The push bus, when configured, is dialed once per node and shared by
	// whichever component needs it: Login publishes duplicate-login kicks,
	// Gate subscribes to deliver them. Its Stop runs after the role and
	// fabric components added below it (reverse start order) so the
	// connection outlives every publisher/subscriber on it.
	var bus *pushbus.Bus
	if file.NATS.URL != "" {
		bus, err = pushbus.Connect(file.NATS.URL)
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		rt.Add(&pushBusComponent{bus: bus})
	}

	// The role actor (or gate listener) is started before the node
	// registers with Center, so another node resolving this peer through
	// Center can never race a not-yet-spawned local actor.
	switch roleID.Role {
	case roleid.Login:
		var store *kvstore.Store
		if file.Redis.Addr != "" {
			store = kvstore.New(file.Redis.Addr, file.Redis.DB)
		}
		a := login.NewActor(login.Handlers{Store: store, Log: entry, PushBus: bus})
		rt.Add(&actorComponent{system: actorSystem, name: fabric.LocalName(), actor: a})

	case roleid.World:
		a := world.NewActor(entry)
		rt.Add(&actorComponent{system: actorSystem, name: fabric.LocalName(), actor: a})

	case roleid.Game:
		a := game.NewActor(game.Handlers{Log: entry})
		rt.Add(&actorComponent{system: actorSystem, name: fabric.LocalName(), actor: a})

	case roleid.Gate:
		host, _, splitErr := cluster.ParseBindAddr(spec.InAddress)
		if splitErr != nil {
			return nil, splitErr
		}
		gl := &acceptor.GateListener{
			System:     actorSystem,
			Fabric:     fabric,
			Routes:     router.NewDefaultTable(),
			Log:        entry,
			MaxPayload: packet.DefaultMaxPayload,
			RoleID:     roleID.String(),
			PushBus:    bus,
			UDPPort:    spec.OutUDPPort,
		}
		if spec.OutTCPPort != 0 {
			gl.TCPAddr = fmt.Sprintf("%s:%d", host, spec.OutTCPPort)
		}
		if spec.OutWSPort != 0 {
			gl.WSAddr = fmt.Sprintf("%s:%d", host, spec.OutWSPort)
		}
		rt.Add(gl)

	default:
		return nil, fmt.Errorf("unsupported role %q", roleID.Role)
	}

	rt.Add(&fabricComponent{fabric: fabric})
	return rt, nil
}

// fabricComponent adapts cluster.Fabric's Register/Stop into node.Component:
// Start blocks (bounded by registerTimeout) until this node has successfully
// registered with Center, per §4.6's "a node is not live until Center has
// acknowledged it" framing.
type fabricComponent struct {
	fabric *cluster.Fabric
}

func (c *fabricComponent) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), registerTimeout)
	defer cancel()
	return c.fabric.Register(ctx)
}

func (c *fabricComponent) Stop() error {
	c.fabric.Stop()
	return nil
}

// pushBusComponent adapts an already-dialed pushbus.Bus into node.Component.
// Start is a no-op since pushbus.Connect has already established the
// connection; Stop closes it.
type pushBusComponent struct {
	bus *pushbus.Bus
}

func (c *pushBusComponent) Start() error { return nil }

func (c *pushBusComponent) Stop() error {
	c.bus.Close()
	return nil
}

// centerComponent binds the center node's remote transport directly (it
// has no Fabric of its own to register with) and spawns the well-known
// RegistryActor under center.WellKnownName.
type centerComponent struct {
	system   *actor.ActorSystem
	bindAddr string
	log      *logrus.Entry

	rem *remote.Remote
}

func (c *centerComponent) Start() error {
	host, port, err := cluster.ParseBindAddr(c.bindAddr)
	if err != nil {
		return err
	}
	c.rem = remote.NewRemote(c.system, remote.Configure(host, port))
	c.rem.Start()

	props := actor.PropsFromProducer(func() actor.Actor {
		return center.NewRegistryActor(c.log)
	})
	_, err = c.system.Root.SpawnNamed(props, center.WellKnownName)
	return err
}

func (c *centerComponent) Stop() error {
	if c.rem != nil {
		c.rem.Shutdown(true)
	}
	return nil
}

// actorComponent spawns a single role actor under a fixed local name (the
// role_id text form) so remote PIDs constructed elsewhere as
// "host:port/role-id" resolve to it.
type actorComponent struct {
	system *actor.ActorSystem
	name   string
	actor  actor.Actor

	pid *actor.PID
}

func (c *actorComponent) Start() error {
	props := actor.PropsFromProducer(func() actor.Actor { return c.actor })
	pid, err := c.system.Root.SpawnNamed(props, c.name)
	if err != nil {
		return err
	}
	c.pid = pid
	return nil
}

func (c *actorComponent) Stop() error {
	if c.pid != nil {
		c.system.Root.Stop(c.pid)
	}
	return nil
}

// Package pushbus carries server-initiated Push fan-out (SPEC_FULL.md
// §4.5 "[NEW]"): a nats-io/nats.go publish/subscribe bus scoped per gate
// role. This is additive — the core Ask/Tell path in cluster.Fabric never
// depends on it.
package pushbus

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Event is one server-initiated push, addressed to a specific client
// session by the SessionID the Gate assigned it at accept time.
type Event struct {
	SessionID string `json:"session_id"`
	Cmd       int32  `json:"cmd"`
	Data      []byte `json:"data"`
}

// subject returns the NATS subject a gate role subscribes/publishes on:
// "citadel.push.<gateRoleID>", e.g. "citadel.push.gate-1" (§4.5).
func subject(gateRoleID string) string {
	return fmt.Sprintf("citadel.push.%s", gateRoleID)
}

// Bus wraps a NATS connection for one node's push traffic.
type Bus struct {
	nc *nats.Conn
}

func Connect(url string) (*Bus, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("pushbus: connect %s: %w", url, err)
	}
	return &Bus{nc: nc}, nil
}

func (b *Bus) Close() { b.nc.Close() }

// Publish sends ev to the gate identified by gateRoleID. Any node that
// resolves a Push target (e.g. a Game handler) calls this rather than
// holding a direct reference to the gate's sessions.
func (b *Bus) Publish(gateRoleID string, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.nc.Publish(subject(gateRoleID), body)
}

// Subscribe registers handler for pushes addressed to this gate node
// (gateRoleID is this node's own ServerRoleId text form). The returned
// subscription's Unsubscribe should be called from the listener's Stop().
func (b *Bus) Subscribe(gateRoleID string, handler func(Event)) (*nats.Subscription, error) {
	return b.nc.Subscribe(subject(gateRoleID), func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		handler(ev)
	})
}

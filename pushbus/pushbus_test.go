package pushbus

import (
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("start nats server: %v", err)
	}
	go srv.Start()
	if !srv.ReadyForConnections(2 * time.Second) {
		t.Fatal("nats server never became ready")
	}
	t.Cleanup(srv.Shutdown)
	return srv.ClientURL()
}

func TestSubjectScopesPerGateRole(t *testing.T) {
	if got, want := subject("gate-1"), "citadel.push.gate-1"; got != want {
		t.Fatalf("subject(gate-1) = %q, want %q", got, want)
	}
	if subject("gate-1") == subject("gate-2") {
		t.Fatal("subjects for different gate roles must not collide")
	}
}

func TestPublishDeliversToSubscribedGate(t *testing.T) {
	url := startTestServer(t)

	pub, err := Connect(url)
	if err != nil {
		t.Fatalf("Connect (publisher): %v", err)
	}
	defer pub.Close()

	sub, err := Connect(url)
	if err != nil {
		t.Fatalf("Connect (subscriber): %v", err)
	}
	defer sub.Close()

	received := make(chan Event, 1)
	subscription, err := sub.Subscribe("gate-1", func(ev Event) {
		received <- ev
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer subscription.Unsubscribe()

	want := Event{SessionID: "sess-1", Cmd: 1201, Data: []byte("kicked")}
	if err := pub.Publish("gate-1", want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-received:
		if got.SessionID != want.SessionID || got.Cmd != want.Cmd || string(got.Data) != string(want.Data) {
			t.Fatalf("delivered event mismatch: want %+v got %+v", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestPublishToOtherGateIsNotDelivered(t *testing.T) {
	url := startTestServer(t)

	pub, err := Connect(url)
	if err != nil {
		t.Fatalf("Connect (publisher): %v", err)
	}
	defer pub.Close()

	sub, err := Connect(url)
	if err != nil {
		t.Fatalf("Connect (subscriber): %v", err)
	}
	defer sub.Close()

	received := make(chan Event, 1)
	subscription, err := sub.Subscribe("gate-1", func(ev Event) {
		received <- ev
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer subscription.Unsubscribe()

	if err := pub.Publish("gate-2", Event{SessionID: "sess-1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-received:
		t.Fatalf("unexpected delivery across gates: %+v", got)
	case <-time.After(200 * time.Millisecond):
	}
}

package node

import (
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
)

type fakeComponent struct {
	startErr error
	started  *bool
	stopped  *bool
}

func (c *fakeComponent) Start() error {
	if c.startErr != nil {
		return c.startErr
	}
	*c.started = true
	return nil
}

func (c *fakeComponent) Stop() error {
	*c.stopped = true
	return nil
}

func TestRuntimeStartsComponentsInOrder(t *testing.T) {
	r := NewRuntime("test", logrus.NewEntry(logrus.New()))
	var s1, s2 bool
	r.Add(&fakeComponent{started: &s1, stopped: new(bool)})
	r.Add(&fakeComponent{started: &s2, stopped: new(bool)})

	if err := r.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s1 || !s2 {
		t.Fatal("expected both components started")
	}
}

func TestRuntimeStartRollsBackOnFailure(t *testing.T) {
	r := NewRuntime("test", logrus.NewEntry(logrus.New()))
	var s1, stop1, s2 bool
	r.Add(&fakeComponent{started: &s1, stopped: &stop1})
	r.Add(&fakeComponent{started: &s2, stopped: new(bool), startErr: fmt.Errorf("boom")})

	if err := r.Start(); err == nil {
		t.Fatal("expected error")
	}
	if !stop1 {
		t.Fatal("expected first component to be stopped after second's failed start")
	}
}

func TestRuntimeStopsInReverseOrder(t *testing.T) {
	r := NewRuntime("test", logrus.NewEntry(logrus.New()))
	var order []int
	r.Add(&orderedComponent{id: 1, order: &order})
	r.Add(&orderedComponent{id: 2, order: &order})

	if err := r.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Stop()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("want stop order [2 1], got %v", order)
	}
}

type orderedComponent struct {
	id    int
	order *[]int
}

func (c *orderedComponent) Start() error { return nil }
func (c *orderedComponent) Stop() error {
	*c.order = append(*c.order, c.id)
	return nil
}

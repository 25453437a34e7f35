// Package node implements NodeRuntime (SPEC_FULL.md §4.7): the
// start/run_until_signal/stop lifecycle shared by every role — a list of
// components with Start/Stop, run under one signal-driven supervisor.
package node

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// ShutdownGrace bounds how long Stop() may take before a component's
// shutdown is abandoned and logged (§5 "Shutdown grace: 60s per node").
const ShutdownGrace = 60 * time.Second

// Component is one lifecycle-managed piece of a node: the cluster fabric,
// the registered role actor, a GateListener, etc.
type Component interface {
	Start() error
	Stop() error
}

// Runtime holds the ordered list of Components for one launched role and
// drives their lifecycle (§4.7).
type Runtime struct {
	Name       string
	log        *logrus.Entry
	components []Component
}

func NewRuntime(name string, log *logrus.Entry) *Runtime {
	return &Runtime{Name: name, log: log}
}

// Add registers c to be started (in order) and stopped (in reverse order).
func (r *Runtime) Add(c Component) {
	r.components = append(r.components, c)
}

// Start runs every component's Start in order. An error is fatal to this
// node (§7 "Config missing for a launched role" and general §4.7 "Errors in
// start are fatal to that node"): it stops whatever already started and
// returns the error.
func (r *Runtime) Start() error {
	for i, c := range r.components {
		if err := c.Start(); err != nil {
			for j := i - 1; j >= 0; j-- {
				if stopErr := r.components[j].Stop(); stopErr != nil {
					r.log.WithError(stopErr).Warn("error stopping component during failed startup")
				}
			}
			return fmt.Errorf("node %s: component %d failed to start: %w", r.Name, i, err)
		}
		r.log.WithField("node", r.Name).Debugf("component %d started", i)
	}
	return nil
}

// Stop stops every component in reverse start order, bounded by
// ShutdownGrace. Errors in stop are logged, not propagated (§4.7).
func (r *Runtime) Stop() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := len(r.components) - 1; i >= 0; i-- {
			if err := r.components[i].Stop(); err != nil {
				r.log.WithError(err).Warn("error stopping component")
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(ShutdownGrace):
		r.log.Error("shutdown grace exceeded, abandoning remaining component stops")
	}
}

// Supervisor runs one or more Runtimes under a single process-level
// interrupt/termination signal, per §4.7 "Shutdown": on SIGINT/SIGTERM it
// stops every node and returns once all have completed (or been abandoned
// past their grace period).
type Supervisor struct {
	log      *logrus.Entry
	runtimes []*Runtime
}

func NewSupervisor(log *logrus.Entry) *Supervisor {
	return &Supervisor{log: log}
}

func (s *Supervisor) Add(r *Runtime) {
	s.runtimes = append(s.runtimes, r)
}

// RunUntilSignal starts every runtime, then blocks until the process
// receives SIGINT/SIGTERM, at which point it stops every runtime and
// returns (§4.7 "run_until_signal").
func (s *Supervisor) RunUntilSignal() error {
	for _, r := range s.runtimes {
		if err := r.Start(); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	s.log.Info("shutdown signal received, stopping nodes")
	for _, r := range s.runtimes {
		r.Stop()
	}
	return nil
}

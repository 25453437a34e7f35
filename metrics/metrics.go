// Package metrics implements the Prometheus surface SPEC_FULL.md §6.5
// adds as a natural ambient component: live-session/registered-node gauges
// and an ask-latency histogram, served on an optional per-node debug HTTP
// listener (net/http/pprof alongside /metrics on an insecure, opt-in
// address).
package metrics

import (
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citadel_live_sessions",
		Help: "Number of client sessions currently connected to this gate node.",
	})

	RegisteredNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citadel_registered_nodes",
		Help: "Number of nodes currently registered with this process's view of Center.",
	})

	AskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "citadel_ask_duration_seconds",
		Help:    "Latency of cluster.Fabric.Ask calls.",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveAsk is a small helper for timing a Fabric.Ask call:
// defer metrics.ObserveAsk(time.Now())
func ObserveAsk(start time.Time) {
	AskDuration.Observe(time.Since(start).Seconds())
}

// DebugServer serves /metrics and net/http/pprof on addr. It is optional
// (§6.5 "[NEW] Metrics surface"); a node only starts one when DebugAddr is
// set in its config.
type DebugServer struct {
	Addr string
	srv  *http.Server
}

func (d *DebugServer) Start() error {
	if d.Addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	d.srv = &http.Server{Addr: d.Addr, Handler: mux}
	go func() { _ = d.srv.ListenAndServe() }()
	return nil
}

func (d *DebugServer) Stop() error {
	if d.srv == nil {
		return nil
	}
	return d.srv.Close()
}

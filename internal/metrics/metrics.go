// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Set bundles the driver's collectors. Collectors work unregistered,
// so tests can pass a nil registerer.
type Set struct {
	PollCycles      *prometheus.CounterVec
	Commands        *prometheus.CounterVec
	ConnectFailures prometheus.Counter
	Ready           prometheus.Gauge
}

// Poll cycle outcomes.
const (
	OutcomeOn          = "on"
	OutcomeStandby     = "standby"
	OutcomeUnreachable = "unreachable"
)

// New creates the collector set and registers it when reg is non-nil.
func New(reg prometheus.Registerer) *Set {
	s := &Set{
		PollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexibridge",
			Name:      "poll_cycles_total",
			Help:      "Poll cycles by resulting device state.",
		}, []string{"outcome"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexibridge",
			Name:      "commands_total",
			Help:      "Device commands by name and outcome.",
		}, []string{"command", "outcome"}),
		ConnectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lexibridge",
			Name:      "connect_failures_total",
			Help:      "Failed TCP connect attempts.",
		}),
		Ready: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lexibridge",
			Name:      "device_ready",
			Help:      "1 while the receiver is on, stabilized and reporting status.",
		}),
	}

	if reg != nil {
		reg.MustRegister(s.PollCycles, s.Commands, s.ConnectFailures, s.Ready)
	}
	return s
}

// Command observes one command result.
func (s *Set) Command(name string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	s.Commands.WithLabelValues(name, outcome).Inc()
}

// SetReady mirrors the derived ready flag.
func (s *Set) SetReady(ready bool) {
	if ready {
		s.Ready.Set(1)
	} else {
		s.Ready.Set(0)
	}
}

// Package metrics exposes Prometheus collectors for the client's polling
// and merge activity. Registration is on the default registry; the CLI
// serves it on the configured metrics address.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GatewayCalls counts exchanges with the audit service by endpoint
	// and outcome (ok, fail, network_fail, not_authorized).
	GatewayCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rlaclient",
		Subsystem: "gateway",
		Name:      "calls_total",
		Help:      "Gateway calls by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// PollTicks counts completed polling cycles per role.
	PollTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rlaclient",
		Subsystem: "poll",
		Name:      "ticks_total",
		Help:      "Completed polling cycles by role.",
	}, []string{"role"})

	// Merges counts state merges applied per payload kind.
	Merges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rlaclient",
		Subsystem: "state",
		Name:      "merges_total",
		Help:      "Merged server payloads by kind.",
	}, []string{"kind"})

	// BallotsAudited counts interpretations successfully submitted.
	BallotsAudited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rlaclient",
		Subsystem: "audit",
		Name:      "ballots_submitted_total",
		Help:      "Ballot interpretations submitted.",
	})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

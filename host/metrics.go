package host

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cdm"

// Call outcomes reported by Metrics.
const (
	outcomeApplied      = "applied"
	outcomeDropped      = "dropped"
	outcomeUnauthorized = "unauthorized"
	outcomeFailed       = "failed"
)

// Metrics counts calls served by the Host.
type Metrics struct {
	calls *prometheus.CounterVec
}

// NewMetrics creates Metrics and registers them in reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "calls_total",
			Help:      "Number of calls served by the host by method and outcome.",
		}, []string{"method", "outcome"}),
	}

	if err := reg.Register(m.calls); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) observe(method, outcome string) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(method, outcome).Inc()
}

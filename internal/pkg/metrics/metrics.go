package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts accounting operations by outcome. Registered on the default
// registry so promhttp.Handler() picks it up without extra wiring.
type Metrics struct {
	Operations *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpile_operations_total",
			Help: "Accounting operations by name and terminal status.",
		}, []string{"op", "status"}),
	}
}

func (m *Metrics) Observe(op string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Operations.WithLabelValues(op, status).Inc()
}

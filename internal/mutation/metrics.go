package mutation

import "github.com/prometheus/client_golang/prometheus"

// Metrics — исходы мутаций по видам. nil-безопасен.
type Metrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llama_lend",
			Subsystem: "mutation",
			Name:      "outcomes_total",
			Help:      "Finished mutations by kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "llama_lend",
			Subsystem: "mutation",
			Name:      "duration_seconds",
			Help:      "Time from submit to the terminal state.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.outcomes, m.duration)
	}
	return m
}

func (m *Metrics) observe(kind, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(seconds)
}

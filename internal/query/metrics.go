package query

import "github.com/prometheus/client_golang/prometheus"

// Metrics — счётчики кэша по узлам. nil-безопасен.
type Metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	errors *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llama_lend",
			Subsystem: "query",
			Name:      "cache_hits_total",
			Help:      "Reads served from a fresh cache entry.",
		}, []string{"node"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llama_lend",
			Subsystem: "query",
			Name:      "cache_misses_total",
			Help:      "Reads that required a fetch.",
		}, []string{"node"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llama_lend",
			Subsystem: "query",
			Name:      "fetch_errors_total",
			Help:      "Failed fetches.",
		}, []string{"node"}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.errors)
	}
	return m
}

func (m *Metrics) hit(node string) {
	if m != nil {
		m.hits.WithLabelValues(node).Inc()
	}
}

func (m *Metrics) miss(node string) {
	if m != nil {
		m.misses.WithLabelValues(node).Inc()
	}
}

func (m *Metrics) fail(node string) {
	if m != nil {
		m.errors.WithLabelValues(node).Inc()
	}
}

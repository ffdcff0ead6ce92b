package firewall

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	mutations *prometheus.CounterVec
	verify    *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphseal",
			Subsystem: "firewall",
			Name:      "mutations_total",
			Help:      "Mutations checked by the firewall, by record class and verdict.",
		}, []string{"class", "verdict"}),
		verify: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "graphseal",
			Subsystem: "firewall",
			Name:      "verify_seconds",
			Help:      "Time spent checking one mutation, by record class.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"class"}),
	}
	if reg != nil {
		reg.MustRegister(m.mutations, m.verify)
	}
	return m
}

func (m *metrics) observe(class string, verdict string, started time.Time) {
	m.mutations.WithLabelValues(class, verdict).Inc()
	m.verify.WithLabelValues(class).Observe(time.Since(started).Seconds())
}

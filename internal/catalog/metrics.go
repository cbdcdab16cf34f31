package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_catalog_requests_total",
			Help: "Catalog reads by deployment and outcome.",
		}, []string{"deployment", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plan_catalog_list_duration_seconds",
			Help:    "Time spent loading and shaping the active plan list.",
			Buckets: prometheus.DefBuckets,
		}, []string{"deployment"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(deployment string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(deployment, Outcome(err)).Inc()
	m.duration.WithLabelValues(deployment).Observe(elapsed.Seconds())
}

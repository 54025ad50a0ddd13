package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "portfolio"
	subsystem = "contact"
)

var (
	submissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "submissions_total",
			Help:      "Count of contact form submit attempts by outcome.",
		},
		[]string{"outcome"},
	)
	relayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "relay_duration_seconds",
			Help:      "Latency of calls to the email relay.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"result"},
	)
	activeForms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_forms",
			Help:      "Number of live contact form instances.",
		},
	)
)

var registerMetrics sync.Once

// Register all metrics with reg.
func Register(reg prometheus.Registerer) {
	registerMetrics.Do(func() {
		reg.MustRegister(submissionCounter)
		reg.MustRegister(relayDuration)
		reg.MustRegister(activeForms)
	})
}

// RecordSubmission counts one submit attempt.
func RecordSubmission(outcome string) {
	submissionCounter.WithLabelValues(outcome).Inc()
}

// ObserveRelay records the duration of one relay call.
func ObserveRelay(success bool, d time.Duration) {
	result := "success"
	if !success {
		result = "error"
	}
	relayDuration.WithLabelValues(result).Observe(d.Seconds())
}

// SetActiveForms reports the current number of form instances.
func SetActiveForms(n int) {
	activeForms.Set(float64(n))
}

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marketplace"

type Metrics struct {
	LoginAttempts   *prometheus.CounterVec
	HashDuration    *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	HTTPRequestTime *prometheus.HistogramVec
}

// New creates the collectors and registers them with r. A nil r means
// prometheus.DefaultRegisterer. Collectors that are already registered are
// reused.
func New(r prometheus.Registerer) *Metrics {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "auth", Name: "login_attempts_total",
			Help: "Login attempts by verified hash scheme and outcome",
		}, []string{"scheme", "outcome"}),
		HashDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "auth", Name: "hash_duration_seconds",
			Help:    "Time spent computing password hashes",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"scheme"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Total HTTP requests",
		}, []string{"path", "method", "code"}),
		HTTPRequestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}

	m.LoginAttempts = register(r, m.LoginAttempts)
	m.HashDuration = register(r, m.HashDuration)
	m.HTTPRequests = register(r, m.HTTPRequests)
	m.HTTPRequestTime = register(r, m.HTTPRequestTime)

	return m
}

func register[C prometheus.Collector](r prometheus.Registerer, c C) C {
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveLogin counts one login attempt.
func (m *Metrics) ObserveLogin(scheme, outcome string) {
	m.LoginAttempts.WithLabelValues(scheme, outcome).Inc()
}

// ObserveHash records one hash computation.
func (m *Metrics) ObserveHash(scheme string, elapsed time.Duration) {
	m.HashDuration.WithLabelValues(scheme).Observe(elapsed.Seconds())
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(path, method, code string, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(path, method, code).Inc()
	m.HTTPRequestTime.WithLabelValues(path, method).Observe(elapsed.Seconds())
}

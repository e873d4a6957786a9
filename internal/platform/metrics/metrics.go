// Copyright (c) 2026 RootLink. All rights reserved.

// Package metrics defines the Prometheus collectors of the request pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels, one per pipeline classification.
const (
	OutcomeOK          = "ok"
	OutcomeAuthExpired = "auth_expired"
	OutcomeForbidden   = "forbidden"
	OutcomeNotFound    = "not_found"
	OutcomeServer      = "server_error"
	OutcomeNetwork     = "network_error"
)

// Pipeline records the outcome and latency of every remote call.
//
// A nil *Pipeline is valid and records nothing.
type Pipeline struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPipeline creates the collectors and registers them on registerer.
func NewPipeline(registerer prometheus.Registerer) (*Pipeline, error) {
	pipeline := &Pipeline{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rootlink",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Remote API calls by HTTP method and classified outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rootlink",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Remote API call latency by HTTP method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	for _, collector := range []prometheus.Collector{pipeline.requests, pipeline.duration} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return pipeline, nil
}

// Observe records one finished call.
func (pipeline *Pipeline) Observe(method, outcome string, elapsed time.Duration) {
	if pipeline == nil {
		return
	}
	pipeline.requests.WithLabelValues(method, outcome).Inc()
	pipeline.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

var (
	providerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_calls_total",
			Help: "Total number of calls to external DNS and hosting providers",
		},
		[]string{"provider", "op", "outcome"},
	)

	providerCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_call_duration_seconds",
			Help:    "Duration of calls to external providers including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "op"},
	)
)

// ObserveProviderCall records one logical provider call started at start.
func ObserveProviderCall(provider, op string, start time.Time, err error) {
	providerCallDuration.WithLabelValues(provider, op).Observe(time.Since(start).Seconds())
	providerCallsTotal.WithLabelValues(provider, op, Outcome(err)).Inc()
}

// Outcome classifies an error into a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, model.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

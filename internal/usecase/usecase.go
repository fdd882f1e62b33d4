// internal/usecase/usecase.go
package usecase

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"solarcredits-service/internal/domain"
	"solarcredits-service/internal/wallet"
)

// Metrics
var (
	usecaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usecase_operations_total",
			Help: "Total number of usecase operations by outcome",
		},
		[]string{"operation", "status"},
	)

	usecaseProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usecase_processing_duration_seconds",
			Help:    "Duration of usecase operations",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"operation"},
	)
)

// observe records duration and outcome of one operation.
func observe(operation string, start time.Time, err error) {
	usecaseProcessingDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	usecaseOperations.WithLabelValues(operation, status).Inc()
}

// EventPublisher delivers transaction events to realtime and stream consumers.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *domain.TransactionEvent) error
}

// Sessions hands out per-user wallet sessions.
type Sessions interface {
	Session(userID string) *wallet.Session
	Remove(userID string)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package storage

import (
	"context"

	"solana-holder-lab/internal/domain"
)

// UsageEventStore provides access to api_usage_events storage.
type UsageEventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.UsageEvent) error

	// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, events []*domain.UsageEvent) error

	// GetByReportID retrieves all events of one report, ordered by recorded_at ASC.
	GetByReportID(ctx context.Context, reportID string) ([]*domain.UsageEvent, error)

	// SummarizeByService aggregates events recorded within [start, end] (inclusive, unix ms),
	// ordered by service and endpoint.
	SummarizeByService(ctx context.Context, start, end int64) ([]*domain.ServiceUsage, error)
}

// ValidateUsageEvent checks the fields every store requires.
func ValidateUsageEvent(e *domain.UsageEvent) error {
	if e == nil || e.EventID == "" || e.Service == "" || e.Endpoint == "" {
		return ErrInvalidInput
	}
	return nil
}

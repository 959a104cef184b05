package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/observability"
	"solana-holder-lab/internal/storage"
)

// UsageEventStore implements storage.UsageEventStore using PostgreSQL.
type UsageEventStore struct {
	pool    *Pool
	metrics *observability.Metrics
}

// NewUsageEventStore creates a new UsageEventStore. metrics may be nil.
func NewUsageEventStore(pool *Pool, metrics *observability.Metrics) *UsageEventStore {
	return &UsageEventStore{pool: pool, metrics: metrics}
}

// Compile-time interface check.
var _ storage.UsageEventStore = (*UsageEventStore)(nil)

const insertUsageEventQuery = `
	INSERT INTO api_usage_events (
		event_id, report_id, service, endpoint, token_mint, status,
		http_status, latency_ms, credits, cached, metadata, recorded_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

func usageEventArgs(e *domain.UsageEvent) []interface{} {
	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return []interface{}{
		e.EventID, e.ReportID, e.Service, e.Endpoint, e.TokenMint, e.Status,
		e.HTTPStatus, e.LatencyMs, e.Credits, e.Cached, metadata, e.RecordedAt,
	}
}

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *UsageEventStore) Insert(ctx context.Context, e *domain.UsageEvent) (err error) {
	if err := storage.ValidateUsageEvent(e); err != nil {
		return err
	}
	defer s.observe("insert", time.Now(), &err)

	_, err = s.pool.Exec(ctx, insertUsageEventQuery, usageEventArgs(e)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *UsageEventStore) InsertBulk(ctx context.Context, events []*domain.UsageEvent) (err error) {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if err := storage.ValidateUsageEvent(e); err != nil {
			return err
		}
	}
	defer s.observe("insert_bulk", time.Now(), &err)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(insertUsageEventQuery, usageEventArgs(e)...)
	}

	results := tx.SendBatch(ctx, batch)
	for range events {
		if _, err := results.Exec(); err != nil {
			results.Close()
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert usage event batch: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByReportID retrieves all events of one report, ordered by recorded_at ASC.
func (s *UsageEventStore) GetByReportID(ctx context.Context, reportID string) (events []*domain.UsageEvent, err error) {
	defer s.observe("get_by_report", time.Now(), &err)

	query := `
		SELECT event_id, report_id, service, endpoint, token_mint, status,
		       http_status, latency_ms, credits, cached, metadata, recorded_at
		FROM api_usage_events
		WHERE report_id = $1
		ORDER BY recorded_at ASC, event_id ASC
	`

	rows, err := s.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("query usage events by report: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.UsageEvent
		if err := rows.Scan(
			&e.EventID, &e.ReportID, &e.Service, &e.Endpoint, &e.TokenMint, &e.Status,
			&e.HTTPStatus, &e.LatencyMs, &e.Credits, &e.Cached, &e.Metadata, &e.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan usage event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage events: %w", err)
	}
	return events, nil
}

// SummarizeByService aggregates events recorded within [start, end].
func (s *UsageEventStore) SummarizeByService(ctx context.Context, start, end int64) (summary []*domain.ServiceUsage, err error) {
	defer s.observe("summarize", time.Now(), &err)

	query := `
		SELECT service, endpoint,
		       count(*),
		       count(*) FILTER (WHERE status IN ('error', 'timeout')),
		       count(*) FILTER (WHERE cached),
		       coalesce(sum(credits), 0),
		       coalesce(avg(latency_ms), 0)::float8
		FROM api_usage_events
		WHERE recorded_at >= $1 AND recorded_at <= $2
		GROUP BY service, endpoint
		ORDER BY service, endpoint
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u domain.ServiceUsage
		if err := rows.Scan(&u.Service, &u.Endpoint, &u.Calls, &u.Errors, &u.CachedCalls, &u.Credits, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		summary = append(summary, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage summary: %w", err)
	}
	return summary, nil
}

func (s *UsageEventStore) observe(operation string, start time.Time, err *error) {
	s.metrics.RecordDBQuery("postgres", operation, time.Since(start), *err)
}

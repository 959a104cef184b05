package clickhouse

import (
	"context"
	"fmt"
	"time"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/observability"
	"solana-holder-lab/internal/storage"
)

// UsageEventStore implements storage.UsageEventStore using ClickHouse.
// MergeTree does not enforce uniqueness, so duplicates are checked before insert.
type UsageEventStore struct {
	conn    *Conn
	metrics *observability.Metrics
}

// NewUsageEventStore creates a new UsageEventStore. metrics may be nil.
func NewUsageEventStore(conn *Conn, metrics *observability.Metrics) *UsageEventStore {
	return &UsageEventStore{conn: conn, metrics: metrics}
}

// Compile-time interface check.
var _ storage.UsageEventStore = (*UsageEventStore)(nil)

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *UsageEventStore) Insert(ctx context.Context, e *domain.UsageEvent) error {
	return s.InsertBulk(ctx, []*domain.UsageEvent{e})
}

// InsertBulk adds multiple events. Fails entire batch on duplicate event_id.
func (s *UsageEventStore) InsertBulk(ctx context.Context, events []*domain.UsageEvent) (err error) {
	if len(events) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if err := storage.ValidateUsageEvent(e); err != nil {
			return err
		}
		if _, dup := seen[e.EventID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[e.EventID] = struct{}{}
		ids = append(ids, e.EventID)
	}
	defer s.observe("insert_bulk", time.Now(), &err)

	var existing uint64
	if err := s.conn.QueryRow(ctx, `SELECT count(*) FROM api_usage_events WHERE event_id IN (?)`, ids).Scan(&existing); err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if existing > 0 {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO api_usage_events (
			event_id, report_id, service, endpoint, token_mint, status,
			http_status, latency_ms, credits, cached, metadata, recorded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		metadata := e.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		err = batch.Append(
			e.EventID, e.ReportID, e.Service, e.Endpoint, e.TokenMint, e.Status,
			uint16(e.HTTPStatus), uint64(e.LatencyMs), uint32(e.Credits), e.Cached,
			metadata, uint64(e.RecordedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByReportID retrieves all events of one report, ordered by recorded_at ASC.
func (s *UsageEventStore) GetByReportID(ctx context.Context, reportID string) (events []*domain.UsageEvent, err error) {
	defer s.observe("get_by_report", time.Now(), &err)

	rows, err := s.conn.Query(ctx, `
		SELECT event_id, report_id, service, endpoint, token_mint, status,
		       http_status, latency_ms, credits, cached, metadata, recorded_at
		FROM api_usage_events
		WHERE report_id = ?
		ORDER BY recorded_at ASC, event_id ASC
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("query by report id: %w", err)
	}
	defer rows.Close()

	return scanUsageEvents(rows)
}

// SummarizeByService aggregates events recorded within [start, end].
func (s *UsageEventStore) SummarizeByService(ctx context.Context, start, end int64) (summary []*domain.ServiceUsage, err error) {
	defer s.observe("summarize", time.Now(), &err)

	rows, err := s.conn.Query(ctx, `
		SELECT service, endpoint,
		       count() AS calls,
		       countIf(status IN ('error', 'timeout')) AS errors,
		       countIf(cached) AS cached_calls,
		       sum(credits) AS credits,
		       avg(latency_ms) AS avg_latency
		FROM api_usage_events
		WHERE recorded_at >= ? AND recorded_at <= ?
		GROUP BY service, endpoint
		ORDER BY service, endpoint
	`, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u domain.ServiceUsage
		var calls, errs, cached, credits uint64
		if err := rows.Scan(&u.Service, &u.Endpoint, &calls, &errs, &cached, &credits, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage summary row: %w", err)
		}
		u.Calls = int64(calls)
		u.Errors = int64(errs)
		u.CachedCalls = int64(cached)
		u.Credits = int64(credits)
		summary = append(summary, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage summary rows: %w", err)
	}
	return summary, nil
}

func (s *UsageEventStore) observe(operation string, start time.Time, err *error) {
	s.metrics.RecordDBQuery("clickhouse", operation, time.Since(start), *err)
}

// scanUsageEvents scans multiple rows.
func scanUsageEvents(rows chRows) ([]*domain.UsageEvent, error) {
	var events []*domain.UsageEvent

	for rows.Next() {
		var e domain.UsageEvent
		var httpStatus uint16
		var latencyMs, recordedAt uint64
		var credits uint32

		err := rows.Scan(
			&e.EventID, &e.ReportID, &e.Service, &e.Endpoint, &e.TokenMint, &e.Status,
			&httpStatus, &latencyMs, &credits, &e.Cached, &e.Metadata, &recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan usage event row: %w", err)
		}

		e.HTTPStatus = int(httpStatus)
		e.LatencyMs = int64(latencyMs)
		e.Credits = int(credits)
		e.RecordedAt = int64(recordedAt)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage event rows: %w", err)
	}

	return events, nil
}

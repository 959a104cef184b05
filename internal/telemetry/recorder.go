// Package telemetry emits one usage record per external call attempt.
// Recording never fails the caller: sinks swallow and log their own errors.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/observability"
	"solana-holder-lab/internal/storage"
)

// Recorder receives usage events.
type Recorder interface {
	Record(ctx context.Context, event domain.UsageEvent)
}

// Nop discards events.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, domain.UsageEvent) {}

// Multi fans an event out to every recorder in order.
type Multi []Recorder

// Record implements Recorder.
func (m Multi) Record(ctx context.Context, event domain.UsageEvent) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, event)
		}
	}
}

// StoreRecorder persists events to a UsageEventStore.
type StoreRecorder struct {
	store storage.UsageEventStore
	log   zerolog.Logger
}

// NewStoreRecorder creates a recorder backed by store.
func NewStoreRecorder(store storage.UsageEventStore, log zerolog.Logger) *StoreRecorder {
	return &StoreRecorder{store: store, log: log}
}

// Record implements Recorder. Store failures are logged and dropped.
func (r *StoreRecorder) Record(ctx context.Context, event domain.UsageEvent) {
	// Persist even if the report context was cancelled mid-call.
	ctx = context.WithoutCancel(ctx)
	if err := r.store.Insert(ctx, &event); err != nil {
		r.log.Warn().Err(err).
			Str("service", event.Service).
			Str("endpoint", event.Endpoint).
			Msg("usage event not persisted")
	}
}

// MetricsRecorder mirrors events into Prometheus counters.
type MetricsRecorder struct {
	metrics *observability.Metrics
}

// NewMetricsRecorder creates a recorder updating m.
func NewMetricsRecorder(m *observability.Metrics) *MetricsRecorder {
	return &MetricsRecorder{metrics: m}
}

// Record implements Recorder.
func (r *MetricsRecorder) Record(_ context.Context, event domain.UsageEvent) {
	r.metrics.RecordUpstreamCall(event.Service, event.Endpoint, event.Status,
		time.Duration(event.LatencyMs)*time.Millisecond, event.Credits, event.Cached)
}

// LogRecorder writes events at debug level.
type LogRecorder struct {
	log zerolog.Logger
}

// NewLogRecorder creates a recorder logging to log.
func NewLogRecorder(log zerolog.Logger) *LogRecorder {
	return &LogRecorder{log: log}
}

// Record implements Recorder.
func (r *LogRecorder) Record(_ context.Context, event domain.UsageEvent) {
	r.log.Debug().
		Str("report_id", event.ReportID).
		Str("service", event.Service).
		Str("endpoint", event.Endpoint).
		Str("status", event.Status).
		Int("http_status", event.HTTPStatus).
		Int64("latency_ms", event.LatencyMs).
		Int("credits", event.Credits).
		Bool("cached", event.Cached).
		Msg("upstream call")
}

type invocationKey struct{}

type invocation struct {
	reportID string
	mint     string
}

// WithInvocation attaches the report id and mint stamped onto every event emitted under ctx.
func WithInvocation(ctx context.Context, reportID, mint string) context.Context {
	return context.WithValue(ctx, invocationKey{}, invocation{reportID: reportID, mint: mint})
}

// ReportID returns the report id attached to ctx, if any.
func ReportID(ctx context.Context) string {
	inv, _ := ctx.Value(invocationKey{}).(invocation)
	return inv.reportID
}

// Emit stamps event with ids and time and hands it to r.
// A nil recorder or a panicking sink is tolerated.
func Emit(ctx context.Context, r Recorder, event domain.UsageEvent) {
	if r == nil {
		return
	}
	if inv, ok := ctx.Value(invocationKey{}).(invocation); ok {
		if event.ReportID == "" {
			event.ReportID = inv.reportID
		}
		if event.TokenMint == "" {
			event.TokenMint = inv.mint
		}
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.RecordedAt == 0 {
		event.RecordedAt = time.Now().UnixMilli()
	}

	defer func() { _ = recover() }()
	r.Record(ctx, event)
}

// StatusFor maps a call outcome to a usage status.
func StatusFor(ctx context.Context, httpStatus int, err error) string {
	switch {
	case err == nil && httpStatus == 404:
		return domain.UsageStatusNotFound
	case err == nil:
		return domain.UsageStatusSuccess
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.UsageStatusTimeout
	case httpStatus == 404:
		return domain.UsageStatusNotFound
	default:
		return domain.UsageStatusError
	}
}

package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/storage"
)

func chEvent(id, report, service, status string, at int64) *domain.UsageEvent {
	return &domain.UsageEvent{
		EventID:    id,
		ReportID:   report,
		Service:    service,
		Endpoint:   "top-holders",
		TokenMint:  "MintCh",
		Status:     status,
		HTTPStatus: 200,
		LatencyMs:  80,
		Credits:    50,
		Metadata:   map[string]string{"attempt": "1"},
		RecordedAt: at,
	}
}

func TestUsageEventStore_InsertBulkAndGetByReportID(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUsageEventStore(conn, nil)

	err := store.InsertBulk(ctx, []*domain.UsageEvent{
		chEvent("ch-2", "report-ch", "markets", domain.UsageStatusSuccess, 2000),
		chEvent("ch-1", "report-ch", "markets", domain.UsageStatusError, 1000),
	})
	require.NoError(t, err)

	events, err := store.GetByReportID(ctx, "report-ch")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "ch-1", events[0].EventID)
	assert.Equal(t, domain.UsageStatusError, events[0].Status)
	assert.Equal(t, 50, events[0].Credits)
	assert.Equal(t, "1", events[0].Metadata["attempt"])
	assert.Equal(t, int64(2000), events[1].RecordedAt)
}

func TestUsageEventStore_Duplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUsageEventStore(conn, nil)

	e := chEvent("ch-dup", "report-dup", "rpc", domain.UsageStatusSuccess, 1)
	require.NoError(t, store.Insert(ctx, e))
	assert.ErrorIs(t, store.Insert(ctx, e), storage.ErrDuplicateKey)

	err := store.InsertBulk(ctx, []*domain.UsageEvent{
		chEvent("ch-x", "report-dup", "rpc", domain.UsageStatusSuccess, 1),
		chEvent("ch-x", "report-dup", "rpc", domain.UsageStatusSuccess, 2),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestUsageEventStore_SummarizeByService(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUsageEventStore(conn, nil)

	cached := chEvent("ch-s3", "r", "markets", domain.UsageStatusSuccess, 300)
	cached.Cached = true
	require.NoError(t, store.InsertBulk(ctx, []*domain.UsageEvent{
		chEvent("ch-s1", "r", "markets", domain.UsageStatusSuccess, 100),
		chEvent("ch-s2", "r", "markets", domain.UsageStatusTimeout, 200),
		cached,
	}))

	summary, err := store.SummarizeByService(ctx, 0, 1000)
	require.NoError(t, err)
	require.Len(t, summary, 1)

	assert.Equal(t, int64(3), summary[0].Calls)
	assert.Equal(t, int64(1), summary[0].Errors)
	assert.Equal(t, int64(1), summary[0].CachedCalls)
	assert.Equal(t, int64(150), summary[0].Credits)
	assert.InDelta(t, 80.0, summary[0].AvgLatencyMs, 0.001)
}

func TestParseDSN(t *testing.T) {
	opts, err := parseDSN("clickhouse://user:pw@ch.local/analytics")
	require.NoError(t, err)
	assert.Equal(t, []string{"ch.local:9000"}, opts.Addr)
	assert.Equal(t, "user", opts.Auth.Username)
	assert.Equal(t, "pw", opts.Auth.Password)
	assert.Equal(t, "analytics", opts.Auth.Database)

	_, err = parseDSN("clickhouse:///nohost")
	assert.Error(t, err)
}

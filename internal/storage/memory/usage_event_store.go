package memory

import (
	"context"
	"sort"
	"sync"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/storage"
)

// DefaultMaxEvents is the retention cap used by long-running processes.
const DefaultMaxEvents = 100_000

// UsageEventStore is an in-memory implementation of storage.UsageEventStore.
type UsageEventStore struct {
	mu        sync.RWMutex
	byID      map[string]*domain.UsageEvent
	events    []*domain.UsageEvent // insertion order
	maxEvents int                  // 0 keeps everything
}

// Option configures UsageEventStore.
type Option func(*UsageEventStore)

// WithMaxEvents keeps only the n most recently inserted events.
func WithMaxEvents(n int) Option {
	return func(s *UsageEventStore) {
		if n > 0 {
			s.maxEvents = n
		}
	}
}

// NewUsageEventStore creates a new in-memory usage event store.
// Without WithMaxEvents it is unbounded.
func NewUsageEventStore(opts ...Option) *UsageEventStore {
	s := &UsageEventStore{
		byID: make(map[string]*domain.UsageEvent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface check.
var _ storage.UsageEventStore = (*UsageEventStore)(nil)

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *UsageEventStore) Insert(_ context.Context, e *domain.UsageEvent) error {
	if err := storage.ValidateUsageEvent(e); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[e.EventID]; exists {
		return storage.ErrDuplicateKey
	}
	s.put(e)
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *UsageEventStore) InsertBulk(_ context.Context, events []*domain.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if err := storage.ValidateUsageEvent(e); err != nil {
			return err
		}
		if _, dup := seen[e.EventID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[e.EventID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		if _, exists := s.byID[e.EventID]; exists {
			return storage.ErrDuplicateKey
		}
	}
	for _, e := range events {
		s.put(e)
	}
	return nil
}

func (s *UsageEventStore) put(e *domain.UsageEvent) {
	eventCopy := copyEvent(e)
	s.byID[e.EventID] = eventCopy
	s.events = append(s.events, eventCopy)

	if s.maxEvents > 0 && len(s.events) > s.maxEvents {
		drop := len(s.events) - s.maxEvents
		for _, old := range s.events[:drop] {
			delete(s.byID, old.EventID)
		}
		s.events = s.events[drop:]
	}
}

// Len returns the number of retained events.
func (s *UsageEventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// GetByReportID retrieves all events of one report, ordered by recorded_at ASC.
func (s *UsageEventStore) GetByReportID(_ context.Context, reportID string) ([]*domain.UsageEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.UsageEvent
	for _, e := range s.events {
		if e.ReportID == reportID {
			result = append(result, copyEvent(e))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RecordedAt < result[j].RecordedAt
	})
	return result, nil
}

// SummarizeByService aggregates events recorded within [start, end].
func (s *UsageEventStore) SummarizeByService(_ context.Context, start, end int64) ([]*domain.ServiceUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct{ service, endpoint string }
	byKey := make(map[key]*domain.ServiceUsage)
	latency := make(map[key]int64)

	for _, e := range s.events {
		if e.RecordedAt < start || e.RecordedAt > end {
			continue
		}
		k := key{e.Service, e.Endpoint}
		u, ok := byKey[k]
		if !ok {
			u = &domain.ServiceUsage{Service: e.Service, Endpoint: e.Endpoint}
			byKey[k] = u
		}
		u.Calls++
		if e.IsError() {
			u.Errors++
		}
		if e.Cached {
			u.CachedCalls++
		}
		u.Credits += int64(e.Credits)
		latency[k] += e.LatencyMs
	}

	result := make([]*domain.ServiceUsage, 0, len(byKey))
	for k, u := range byKey {
		u.AvgLatencyMs = float64(latency[k]) / float64(u.Calls)
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Service != result[j].Service {
			return result[i].Service < result[j].Service
		}
		return result[i].Endpoint < result[j].Endpoint
	})
	return result, nil
}

func copyEvent(e *domain.UsageEvent) *domain.UsageEvent {
	c := *e
	if e.Metadata != nil {
		c.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

package domain

// Usage event statuses.
const (
	UsageStatusSuccess  = "success"
	UsageStatusNotFound = "not_found"
	UsageStatusError    = "error"
	UsageStatusTimeout  = "timeout"
)

// UsageEvent records one external call attempt for cost accounting.
// Corresponds to api_usage_events table in PostgreSQL and ClickHouse.
type UsageEvent struct {
	EventID    string            // uuid, primary key
	ReportID   string            // report invocation that made the call
	Service    string            // upstream service name, e.g. "dexscreener"
	Endpoint   string            // logical endpoint, e.g. "pairs"
	TokenMint  string            // analyzed mint
	Status     string            // one of UsageStatus*
	HTTPStatus int               // 0 when no response was received
	LatencyMs  int64             // wall time of the attempt
	Credits    int               // provider credits consumed
	Cached     bool              // served from the response cache
	Metadata   map[string]string // free-form attributes
	RecordedAt int64             // unix ms
}

// IsError reports whether the call failed.
func (e *UsageEvent) IsError() bool {
	return e.Status == UsageStatusError || e.Status == UsageStatusTimeout
}

// ServiceUsage aggregates usage events per service and endpoint.
type ServiceUsage struct {
	Service      string
	Endpoint     string
	Calls        int64
	Errors       int64
	CachedCalls  int64
	Credits      int64
	AvgLatencyMs float64
}

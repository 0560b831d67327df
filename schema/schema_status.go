package schema

import "time"

// CacheStatus holds status information about the response cache store.
type CacheStatus struct {
	Backend         string
	Connected       bool
	TotalEntries    int64
	LastEntryTime   time.Time
	OldestEntryTime time.Time
	TableSizeBytes  int64
}

// RunStoreStatus holds status information about the run-history store.
type RunStoreStatus struct {
	Backend   string
	Connected bool
	TotalRuns int64
}

// RunRecord is one row of the run-history store: a summary of a
// completed (or in-flight) analysis run.
type RunRecord struct {
	ID          int64
	Owner       string
	Scope       string
	PeriodStart time.Time
	PeriodEnd   time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
	TotalPRs    int
	AssistedPRs int
}

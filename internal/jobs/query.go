package jobs

import (
	"context"
	"time"
)

// RunMode controls how many jobs a single query may pull back.
type RunMode string

const (
	//bounded preview sized for a chat channel
	ModePreview RunMode = "preview"
	//higher cap for a full sweep
	ModeComprehensive RunMode = "comprehensive"
)

// TimeFilter narrows a query to a posting-age window at the source side.
type TimeFilter string

const (
	TimeAny  TimeFilter = "any"
	TimeDay  TimeFilter = "24h"
	TimeWeek TimeFilter = "week"
)

// Query is one concrete search: a keyword/location/time-filter combination
// for a single source. Built from config, consumed once, never mutated.
type Query struct {
	Keyword      string
	Location     string
	TimeFilter   TimeFilter
	RoleCategory string
	Limit        int
}

// Adapter is the extraction contract every source implements. Internal
// retry, parsing strategy and transport are entirely the adapter's business.
type Adapter interface {
	Extract(ctx context.Context, q Query) ([]Record, error)
	Name() string
}

// SourceSpec describes one configured source to the scheduler.
type SourceSpec struct {
	Name          string
	Tier          int //1..3, ascending priority
	RoleCategory  string
	Keywords      []string
	Locations     []string
	TimeFilter    TimeFilter
	RecencyWindow time.Duration //0 disables recency filtering
	Adapter       Adapter
}

// RunReport is the per-source aggregate. Jobs holds ALL relevance-passing
// records seen this run, already-seen ones included; callers that only want
// new postings filter by NewJobCount/dedup status downstream.
type RunReport struct {
	Source      string
	StartedAt   time.Time
	Succeeded   bool
	ErrorCount  int
	NewJobCount int
	Jobs        []Record
}

// SourceFailure pairs a source name with the error that escaped its run.
type SourceFailure struct {
	Name string
	Err  error
}

// OverallReport is the stable summary contract the entry point consumes.
type OverallReport struct {
	Successful     []string
	Failed         []SourceFailure
	TotalJobsFound int
}

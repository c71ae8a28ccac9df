// Package store persists the set of already-seen job postings. The dedup
// cache talks to one of three interchangeable backends: Postgres for a
// shared deployment, Redis for a light one, a local JSON file for dev runs.
package store

import (
	"context"

	"go-jobradar-automation/internal/jobs"
)

// RecordStore is the persistence contract behind the dedup cache.
//
// Insert must be idempotent (re-inserting a seen id is a no-op) and atomic
// per call: a batch either lands fully or not at all, so an interrupted run
// can safely redo its descriptors.
type RecordStore interface {
	Connect(ctx context.Context) error
	//LoadAll returns seen job ids grouped by source
	LoadAll(ctx context.Context) (map[string]map[string]struct{}, error)
	Insert(ctx context.Context, source string, records []jobs.Record) error
	Close()
}

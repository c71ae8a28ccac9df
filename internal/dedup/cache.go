// In-memory mirror of the persisted seen-jobs set. Loaded once at process
// start and trusted for the run's duration; inserts update the mirror
// before the store so a membership check never sees a stale window inside
// one process.

package dedup

import (
	"context"
	"fmt"
	"log"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"go-jobradar-automation/internal/jobs"
	"go-jobradar-automation/internal/store"
)

type Cache struct {
	mu    sync.Mutex
	store store.RecordStore
	seen  map[string]mapset.Set[string] //per-source seen ids
}

// SourceStats is a read-only diagnostic snapshot for one source.
type SourceStats struct {
	Count int
}

// NewCache wraps a RecordStore. The cache is constructor-injected
// everywhere it is used; there is deliberately no package-level instance.
func NewCache(rs store.RecordStore) *Cache {
	return &Cache{
		store: rs,
		seen:  make(map[string]mapset.Set[string]),
	}
}

// Load populates the mirror from the store. A store failure degrades to an
// empty mirror with a warning: a missed dedup is tolerable, a lost posting
// is not. Orchestration must not begin before Load returns.
func (c *Cache) Load(ctx context.Context) {
	loaded, err := c.store.LoadAll(ctx)
	if err != nil {
		log.Printf("⚠️ Dedup cache load failed, continuing with empty state: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for source, ids := range loaded {
		set := mapset.NewThreadUnsafeSet[string]()
		for id := range ids {
			set.Add(id)
		}
		c.seen[source] = set
		total += set.Cardinality()
	}
	log.Printf("📋 Dedup cache loaded: %d jobs across %d sources", total, len(loaded))
}

// Exists reports whether (source, id) has been seen. Safe to call before
// the record is durably stored: the mirror is authoritative for this run.
func (c *Cache) Exists(source, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.seen[source]
	return ok && set.Contains(id)
}

// InsertMany records the batch as seen and persists it. Re-inserting an
// already-present id is a no-op. The mirror is updated even when the store
// write fails, so a flaky store cannot cause duplicate notifications within
// the same run; the returned error is the caller's cue to log the degraded
// persistence.
func (c *Cache) InsertMany(ctx context.Context, source string, records []jobs.Record) error {
	if len(records) == 0 {
		return nil
	}

	c.mu.Lock()
	set, ok := c.seen[source]
	if !ok {
		set = mapset.NewThreadUnsafeSet[string]()
		c.seen[source] = set
	}
	fresh := make([]jobs.Record, 0, len(records))
	for _, r := range records {
		if set.Add(r.ID) {
			fresh = append(fresh, r)
		}
	}
	c.mu.Unlock()

	if len(fresh) == 0 {
		return nil
	}
	if err := c.store.Insert(ctx, source, fresh); err != nil {
		return fmt.Errorf("persisting %d seen jobs for %s: %w", len(fresh), source, err)
	}
	return nil
}

// Stats returns per-source counts plus the total.
func (c *Cache) Stats() (map[string]SourceStats, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]SourceStats, len(c.seen))
	total := 0
	for source, set := range c.seen {
		n := set.Cardinality()
		out[source] = SourceStats{Count: n}
		total += n
	}
	return out, total
}

// Package orchestrator drives one source's full query plan: every
// keyword × location combination becomes one query, run through extraction,
// relevance and recency filtering, dedup and delivery, with pacing between
// queries and bounded retry around the adapter call.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-jobradar-automation/internal/dedup"
	"go-jobradar-automation/internal/deliver"
	"go-jobradar-automation/internal/filter"
	"go-jobradar-automation/internal/jobs"
)

// dayQueryLimit caps 24h-window queries; a recent-only query never needs
// the full comprehensive cap.
const dayQueryLimit = 25

type Options struct {
	MaxAttempts     int           //adapter attempts per query, default 3
	BackoffBase     time.Duration //retry backoff = base * attempt index
	InterQueryDelay time.Duration //fixed sleep between queries
	JobLimit        int           //per-query cap resolved from run mode
	Now             func() time.Time
}

type Orchestrator struct {
	relevance *filter.Relevance
	cache     *dedup.Cache
	router    *deliver.Router //nil when no delivery channel is configured
	opts      Options
}

func New(relevance *filter.Relevance, cache *dedup.Cache, router *deliver.Router, opts Options) *Orchestrator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		relevance: relevance,
		cache:     cache,
		router:    router,
		opts:      opts,
	}
}

// RunSource executes the full query plan for one source and always returns
// a RunReport, even when every query failed. The error return is reserved
// for failures that invalidate the whole source (nil adapter, cancelled
// before start); per-query failures only increment ErrorCount.
func (o *Orchestrator) RunSource(ctx context.Context, spec jobs.SourceSpec) (jobs.RunReport, error) {
	report := jobs.RunReport{
		Source:    spec.Name,
		StartedAt: o.opts.Now(),
		Succeeded: true,
	}

	if spec.Adapter == nil {
		report.Succeeded = false
		return report, fmt.Errorf("source %s: no extraction adapter configured", spec.Name)
	}
	if err := ctx.Err(); err != nil {
		report.Succeeded = false
		return report, fmt.Errorf("source %s: %w", spec.Name, err)
	}

	queries := buildQueries(spec, o.opts.JobLimit)
	log.Printf("▶️ %s: %d queries planned", spec.Name, len(queries))

	for i, q := range queries {
		//operator shutdown: stop starting new queries, keep what we have
		if ctx.Err() != nil {
			log.Printf("🛑 %s: shutdown requested, skipping remaining %d queries", spec.Name, len(queries)-i)
			break
		}

		if err := o.runQuery(ctx, spec, q, &report); err != nil {
			report.ErrorCount++
			log.Printf("❌ %s: query %q/%q failed after %d attempts: %v",
				spec.Name, q.Keyword, q.Location, o.opts.MaxAttempts, err)
		}

		//fixed pacing between queries regardless of outcome; this is the
		//primary defense against upstream rate limiting
		if i < len(queries)-1 {
			sleepCtx(ctx, o.opts.InterQueryDelay)
		}
	}

	log.Printf("✅ %s finished: %d jobs (%d new), %d errors",
		spec.Name, len(report.Jobs), report.NewJobCount, report.ErrorCount)
	return report, nil
}

func (o *Orchestrator) runQuery(ctx context.Context, spec jobs.SourceSpec, q jobs.Query, report *jobs.RunReport) error {
	raw, err := o.extractWithRetry(ctx, spec.Adapter, q)
	if err != nil {
		return err
	}
	//empty result is not an error, just nothing to do
	if len(raw) == 0 {
		log.Printf("  ℹ️ %s: no results for %q/%q", spec.Name, q.Keyword, q.Location)
		return nil
	}

	normalized := make([]jobs.Record, 0, len(raw))
	for _, r := range raw {
		normalized = append(normalized, jobs.Normalize(r, spec.Name))
	}

	relevant := o.relevance.Filter(normalized, q.RoleCategory)
	if len(relevant) == 0 {
		log.Printf("  ℹ️ %s: 0/%d relevant for %q", spec.Name, len(normalized), q.Keyword)
		return nil
	}

	if spec.RecencyWindow > 0 {
		relevant = o.onlyRecent(relevant, spec.RecencyWindow)
		if len(relevant) == 0 {
			return nil
		}
	}

	var fresh []jobs.Record
	for _, rec := range relevant {
		if !o.cache.Exists(spec.Name, rec.ID) {
			fresh = append(fresh, rec)
		}
	}
	//the report carries every relevant job, seen or not; downstream callers
	//that only want new postings filter by dedup status themselves
	report.Jobs = append(report.Jobs, relevant...)
	report.NewJobCount += len(fresh)

	if err := o.cache.InsertMany(ctx, spec.Name, fresh); err != nil {
		//degraded persistence, not a query failure: the in-memory mirror
		//already has these ids so this run will not re-notify them
		log.Printf("  ⚠️ %s: dedup persistence degraded: %v", spec.Name, err)
	}

	//delivery only after the dedup insert for this query has completed
	if o.router != nil && len(fresh) > 0 {
		o.router.Deliver(fresh, spec.Name, q.RoleCategory)
	}

	log.Printf("  📦 %s: %q/%q -> %d relevant, %d new", spec.Name, q.Keyword, q.Location, len(relevant), len(fresh))
	return nil
}

// extractWithRetry calls the adapter up to MaxAttempts times with backoff
// base × attempt index between attempts.
func (o *Orchestrator) extractWithRetry(ctx context.Context, adapter jobs.Adapter, q jobs.Query) ([]jobs.Record, error) {
	var lastErr error
	for attempt := 1; attempt <= o.opts.MaxAttempts; attempt++ {
		records, err := adapter.Extract(ctx, q)
		if err == nil {
			return records, nil
		}
		lastErr = err
		log.Printf("  ⚠️ %s: attempt %d/%d for %q failed: %v", adapter.Name(), attempt, o.opts.MaxAttempts, q.Keyword, err)
		if attempt < o.opts.MaxAttempts {
			sleepCtx(ctx, o.opts.BackoffBase*time.Duration(attempt))
		}
	}
	return nil, lastErr
}

func (o *Orchestrator) onlyRecent(records []jobs.Record, window time.Duration) []jobs.Record {
	now := o.opts.Now()
	out := make([]jobs.Record, 0, len(records))
	for _, rec := range records {
		//unparsable dates are treated as not recent, so a stale posting is
		//never re-notified just because its date string was mangled
		if filter.PostedWithin(rec.PostedDate, window, now) {
			out = append(out, rec)
		}
	}
	return out
}

// buildQueries expands the keyword × location Cartesian product in
// configured order. A source without locations gets one query per keyword.
func buildQueries(spec jobs.SourceSpec, limit int) []jobs.Query {
	locations := spec.Locations
	if len(locations) == 0 {
		locations = []string{""}
	}
	if spec.TimeFilter == jobs.TimeDay && limit > dayQueryLimit {
		limit = dayQueryLimit
	}

	queries := make([]jobs.Query, 0, len(spec.Keywords)*len(locations))
	for _, kw := range spec.Keywords {
		for _, loc := range locations {
			queries = append(queries, jobs.Query{
				Keyword:      kw,
				Location:     loc,
				TimeFilter:   spec.TimeFilter,
				RoleCategory: spec.RoleCategory,
				Limit:        limit,
			})
		}
	}
	return queries
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

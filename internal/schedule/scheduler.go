// Package schedule runs configured sources in priority order. Tiers execute
// ascending, sources within a tier strictly sequentially, with a
// tier-specific delay after each source. Sequential-with-delay is a policy
// decision against the scraped sites, not a performance limitation; do not
// parallelize it.
package schedule

import (
	"context"
	"log"
	"time"

	"go-jobradar-automation/internal/jobs"
)

// RunSourceFunc executes one source's full query plan. In production this
// is the orchestrator's RunSource.
type RunSourceFunc func(ctx context.Context, spec jobs.SourceSpec) (jobs.RunReport, error)

type Scheduler struct {
	run        RunSourceFunc
	tierDelays map[int]time.Duration
}

func New(run RunSourceFunc, tierDelays map[int]time.Duration) *Scheduler {
	return &Scheduler{run: run, tierDelays: tierDelays}
}

// Run sweeps all sources and returns the overall report. A source failure
// is recorded and never aborts its tier or later tiers.
func (s *Scheduler) Run(ctx context.Context, sources []jobs.SourceSpec) jobs.OverallReport {
	report := jobs.OverallReport{}

	for tier := 1; tier <= 3; tier++ {
		tierSources := filterTier(sources, tier)
		if len(tierSources) == 0 {
			continue
		}
		log.Printf("🚀 Tier %d: %d source(s)", tier, len(tierSources))

		for _, spec := range tierSources {
			if ctx.Err() != nil {
				log.Printf("🛑 Shutdown requested, skipping remaining sources")
				return report
			}

			runReport, err := s.run(ctx, spec)
			if err != nil {
				log.Printf("❌ Source %s failed: %v", spec.Name, err)
				report.Failed = append(report.Failed, jobs.SourceFailure{Name: spec.Name, Err: err})
			} else {
				report.Successful = append(report.Successful, spec.Name)
				report.TotalJobsFound += len(runReport.Jobs)
			}

			//delay after every source, success or failure, to space out
			//the next source's first request
			sleepCtx(ctx, s.tierDelays[tier])
		}
	}

	log.Printf("🏁 Sweep complete: %d ok, %d failed, %d jobs found",
		len(report.Successful), len(report.Failed), report.TotalJobsFound)
	return report
}

// filterTier stable-partitions: input order is preserved within a tier.
func filterTier(sources []jobs.SourceSpec, tier int) []jobs.SourceSpec {
	var out []jobs.SourceSpec
	for _, s := range sources {
		if s.Tier == tier {
			out = append(out, s)
		}
	}
	return out
}

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

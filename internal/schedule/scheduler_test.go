package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobradar-automation/internal/jobs"
)

func src(name string, tier int) jobs.SourceSpec {
	return jobs.SourceSpec{Name: name, Tier: tier}
}

func TestRun_TierOrderAndInputOrderWithinTier(t *testing.T) {
	var order []string
	runner := func(_ context.Context, spec jobs.SourceSpec) (jobs.RunReport, error) {
		order = append(order, spec.Name)
		return jobs.RunReport{Succeeded: true}, nil
	}

	sources := []jobs.SourceSpec{
		src("c3", 3), src("a1", 1), src("b2", 2), src("b1", 1), src("a2", 2),
	}

	report := New(runner, nil).Run(context.Background(), sources)

	assert.Equal(t, []string{"a1", "b1", "b2", "a2", "c3"}, order)
	assert.Equal(t, []string{"a1", "b1", "b2", "a2", "c3"}, report.Successful)
	assert.Empty(t, report.Failed)
}

func TestRun_FailureIsolation(t *testing.T) {
	runner := func(_ context.Context, spec jobs.SourceSpec) (jobs.RunReport, error) {
		if spec.Name == "broken" {
			return jobs.RunReport{}, errors.New("cache unreachable")
		}
		return jobs.RunReport{Jobs: []jobs.Record{{ID: "x"}}}, nil
	}

	sources := []jobs.SourceSpec{src("ok1", 1), src("broken", 1), src("ok2", 2)}

	report := New(runner, nil).Run(context.Background(), sources)

	assert.Equal(t, []string{"ok1", "ok2"}, report.Successful)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "broken", report.Failed[0].Name)
	assert.EqualError(t, report.Failed[0].Err, "cache unreachable")
	assert.Equal(t, 2, report.TotalJobsFound)
}

func TestRun_TotalJobsFoundSumsAllRelevant(t *testing.T) {
	runner := func(_ context.Context, spec jobs.SourceSpec) (jobs.RunReport, error) {
		n := map[string]int{"a": 3, "b": 4}[spec.Name]
		return jobs.RunReport{Jobs: make([]jobs.Record, n)}, nil
	}

	sources := []jobs.SourceSpec{src("a", 1), src("b", 1)}
	report := New(runner, nil).Run(context.Background(), sources)

	assert.Equal(t, 7, report.TotalJobsFound)
}

func TestRun_CancelledContextStopsSweep(t *testing.T) {
	calls := 0
	ctx, cancel := context.WithCancel(context.Background())
	runner := func(_ context.Context, _ jobs.SourceSpec) (jobs.RunReport, error) {
		calls++
		cancel() //simulate interrupt during the first source
		return jobs.RunReport{}, nil
	}

	sources := []jobs.SourceSpec{src("a", 1), src("b", 1), src("c", 2)}
	report := New(runner, nil).Run(ctx, sources)

	assert.Equal(t, 1, calls, "no new source starts after cancellation")
	assert.Equal(t, []string{"a"}, report.Successful)
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobradar-automation/internal/dedup"
	"go-jobradar-automation/internal/deliver"
	"go-jobradar-automation/internal/filter"
	"go-jobradar-automation/internal/jobs"
)

// memStore is an in-memory RecordStore so cache behavior is observable.
type memStore struct {
	data map[string]map[string]struct{}
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]map[string]struct{})}
}

func (m *memStore) Connect(context.Context) error { return nil }
func (m *memStore) LoadAll(context.Context) (map[string]map[string]struct{}, error) {
	return m.data, nil
}
func (m *memStore) Insert(_ context.Context, source string, records []jobs.Record) error {
	if m.data[source] == nil {
		m.data[source] = make(map[string]struct{})
	}
	for _, r := range records {
		m.data[source][r.ID] = struct{}{}
	}
	return nil
}
func (m *memStore) Close() {}

// stubAdapter returns canned results per keyword and counts attempts.
type stubAdapter struct {
	results  map[string][]jobs.Record
	err      error
	attempts int
}

func (a *stubAdapter) Extract(_ context.Context, q jobs.Query) ([]jobs.Record, error) {
	a.attempts++
	if a.err != nil {
		return nil, a.err
	}
	return a.results[q.Keyword], nil
}

func (a *stubAdapter) Name() string { return "stub" }

// capturingSink records delivered jobs.
type capturingSink struct {
	jobs     []jobs.Record
	statuses []string
}

func (s *capturingSink) SendJob(r jobs.Record) error { s.jobs = append(s.jobs, r); return nil }
func (s *capturingSink) SendStatus(m string) error   { s.statuses = append(s.statuses, m); return nil }

func relevance() *filter.Relevance {
	return filter.NewRelevance(map[string][]string{"backend": {"golang", "go "}})
}

func loadedCache(t *testing.T, ms *memStore) *dedup.Cache {
	t.Helper()
	c := dedup.NewCache(ms)
	c.Load(context.Background())
	return c
}

func rec(id, title string) jobs.Record {
	return jobs.Record{ID: id, Title: title, URL: "https://example.com/" + id}
}

func testSpec(a jobs.Adapter, keywords ...string) jobs.SourceSpec {
	return jobs.SourceSpec{
		Name:         "stub",
		Tier:         1,
		RoleCategory: "backend",
		Keywords:     keywords,
		Adapter:      a,
	}
}

func TestRunSource_ScenarioA_FilterAndCount(t *testing.T) {
	//keyword A: 5 jobs, 3 relevant, all new; keyword B: nothing
	adapter := &stubAdapter{results: map[string][]jobs.Record{
		"a": {
			rec("1", "Golang Developer"),
			rec("2", "Product Manager"),
			rec("3", "Go Backend Engineer"),
			rec("4", "Accountant"),
			rec("5", "Senior Golang Engineer"),
		},
	}}

	o := New(relevance(), loadedCache(t, newMemStore()), nil, Options{})
	report, err := o.RunSource(context.Background(), testSpec(adapter, "a", "b"))

	require.NoError(t, err)
	assert.True(t, report.Succeeded)
	assert.Equal(t, 0, report.ErrorCount)
	assert.Len(t, report.Jobs, 3)
	assert.Equal(t, 3, report.NewJobCount)
}

func TestRunSource_ScenarioB_RetryExhaustion(t *testing.T) {
	adapter := &stubAdapter{err: errors.New("selector miss")}

	o := New(relevance(), loadedCache(t, newMemStore()), nil, Options{MaxAttempts: 3})
	report, err := o.RunSource(context.Background(), testSpec(adapter, "a"))

	require.NoError(t, err, "per-query failures never escape the source run")
	assert.Equal(t, 3, adapter.attempts, "exactly MaxAttempts attempts observed")
	assert.Equal(t, 1, report.ErrorCount)
	assert.True(t, report.Succeeded)
	assert.Empty(t, report.Jobs)
}

func TestRunSource_ScenarioC_SeenJobExcludedFromDeliveryButReported(t *testing.T) {
	ms := newMemStore()
	ms.data["stub"] = map[string]struct{}{"1": {}}

	adapter := &stubAdapter{results: map[string][]jobs.Record{
		"a": {rec("1", "Golang Developer"), rec("2", "Go Engineer")},
	}}

	sink := &capturingSink{}
	router := deliver.NewRouter(5, 0)
	router.Register("default", sink)

	o := New(relevance(), loadedCache(t, ms), router, Options{})
	report, err := o.RunSource(context.Background(), testSpec(adapter, "a"))

	require.NoError(t, err)
	//both jobs reported, only the unseen one delivered
	assert.Len(t, report.Jobs, 2)
	assert.Equal(t, 1, report.NewJobCount)
	require.Len(t, sink.jobs, 1)
	assert.Equal(t, "2", sink.jobs[0].ID)
}

func TestRunSource_ScenarioD_DeliveryCapOverflow(t *testing.T) {
	var many []jobs.Record
	for i := 0; i < 7; i++ {
		many = append(many, rec(fmt.Sprintf("j%d", i), "Golang Developer"))
	}
	adapter := &stubAdapter{results: map[string][]jobs.Record{"a": many}}

	sink := &capturingSink{}
	router := deliver.NewRouter(5, 0)
	router.Register("default", sink)

	o := New(relevance(), loadedCache(t, newMemStore()), router, Options{})
	_, err := o.RunSource(context.Background(), testSpec(adapter, "a"))

	require.NoError(t, err)
	assert.Len(t, sink.jobs, 5)
	require.Len(t, sink.statuses, 1)
	assert.Contains(t, sink.statuses[0], "2 more")
}

func TestRunSource_RecencyExcludesUnparsableDates(t *testing.T) {
	old := rec("1", "Golang Developer")
	old.PostedDate = "2020-01-01"
	mangled := rec("2", "Go Engineer")
	mangled.PostedDate = "Recent"
	fresh := rec("3", "Golang Engineer")
	fresh.PostedDate = "2 days ago"

	adapter := &stubAdapter{results: map[string][]jobs.Record{
		"a": {old, mangled, fresh},
	}}

	spec := testSpec(adapter, "a")
	spec.RecencyWindow = 14 * 24 * time.Hour

	o := New(relevance(), loadedCache(t, newMemStore()), nil, Options{})
	report, err := o.RunSource(context.Background(), spec)

	require.NoError(t, err)
	require.Len(t, report.Jobs, 1)
	assert.Equal(t, "3", report.Jobs[0].ID)
}

func TestRunSource_NilAdapterFailsWholeSource(t *testing.T) {
	o := New(relevance(), loadedCache(t, newMemStore()), nil, Options{})
	spec := testSpec(nil, "a")

	report, err := o.RunSource(context.Background(), spec)

	assert.Error(t, err)
	assert.False(t, report.Succeeded)
}

func TestRunSource_CancelledContextStopsNewQueries(t *testing.T) {
	adapter := &stubAdapter{results: map[string][]jobs.Record{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := New(relevance(), loadedCache(t, newMemStore()), nil, Options{})
	report, err := o.RunSource(ctx, testSpec(adapter, "a", "b", "c"))

	assert.Error(t, err)
	assert.False(t, report.Succeeded)
	assert.Zero(t, adapter.attempts)
}

func TestBuildQueries_CartesianOrder(t *testing.T) {
	spec := jobs.SourceSpec{
		Keywords:  []string{"go", "rust"},
		Locations: []string{"hcm", "hanoi"},
	}

	qs := buildQueries(spec, 10)

	require.Len(t, qs, 4)
	assert.Equal(t, "go", qs[0].Keyword)
	assert.Equal(t, "hcm", qs[0].Location)
	assert.Equal(t, "go", qs[1].Keyword)
	assert.Equal(t, "hanoi", qs[1].Location)
	assert.Equal(t, "rust", qs[2].Keyword)
}

func TestBuildQueries_DayFilterCapsLimit(t *testing.T) {
	spec := jobs.SourceSpec{Keywords: []string{"go"}, TimeFilter: jobs.TimeDay}
	qs := buildQueries(spec, 100)
	require.Len(t, qs, 1)
	assert.Equal(t, dayQueryLimit, qs[0].Limit)
}

package greenhouse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobradar-automation/internal/jobs"
)

func boardServer(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		//path is /<board>/jobs
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		body, ok := bodies[parts[0]]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
}

const acmeBoard = `{"jobs": [
	{"id": 1, "title": "Senior Go Engineer", "location": {"name": "Remote"}, "absolute_url": "https://boards.greenhouse.io/acme/jobs/1", "updated_at": "2026-08-19T00:00:00Z"},
	{"id": 2, "title": "Designer", "location": {"name": "NYC"}, "absolute_url": "https://boards.greenhouse.io/acme/jobs/2", "updated_at": "2026-08-19T00:00:00Z"}
]}`

const globexBoard = `{"jobs": [
	{"id": 9, "title": "Go Platform Engineer", "location": {"name": "Berlin"}, "absolute_url": "https://boards.greenhouse.io/globex/jobs/9", "updated_at": "2026-08-18T00:00:00Z"}
]}`

func TestExtract_KeywordMatchAcrossBoards(t *testing.T) {
	srv := boardServer(t, map[string]string{"acme": acmeBoard, "globex": globexBoard})
	defer srv.Close()

	a := New(srv.URL, []string{"acme", "globex"})
	records, err := a.Extract(context.Background(), jobs.Query{Keyword: "go"})

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "gh-acme-1", records[0].ID)
	assert.Equal(t, "acme", records[0].Company)
	assert.Equal(t, "gh-globex-9", records[1].ID)
}

func TestExtract_LocationNarrowing(t *testing.T) {
	srv := boardServer(t, map[string]string{"acme": acmeBoard, "globex": globexBoard})
	defer srv.Close()

	a := New(srv.URL, []string{"acme", "globex"})
	records, err := a.Extract(context.Background(), jobs.Query{Keyword: "go", Location: "berlin"})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "gh-globex-9", records[0].ID)
}

func TestExtract_PartialBoardFailureKeepsResults(t *testing.T) {
	srv := boardServer(t, map[string]string{"acme": acmeBoard})
	defer srv.Close()

	a := New(srv.URL, []string{"missing", "acme"})
	records, err := a.Extract(context.Background(), jobs.Query{Keyword: "go"})

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExtract_AllBoardsFailedIsError(t *testing.T) {
	srv := boardServer(t, map[string]string{})
	defer srv.Close()

	a := New(srv.URL, []string{"missing1", "missing2"})
	_, err := a.Extract(context.Background(), jobs.Query{Keyword: "go"})

	assert.Error(t, err)
}

func TestExtract_LimitHonored(t *testing.T) {
	srv := boardServer(t, map[string]string{"acme": acmeBoard, "globex": globexBoard})
	defer srv.Close()

	a := New(srv.URL, []string{"acme", "globex"})
	records, err := a.Extract(context.Background(), jobs.Query{Keyword: "go", Limit: 1})

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

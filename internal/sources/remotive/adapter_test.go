package remotive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobradar-automation/internal/jobs"
)

const sampleResponse = `{
	"job-count": 2,
	"jobs": [
		{
			"id": 101,
			"url": "https://remotive.com/remote-jobs/software-dev/go-engineer-101",
			"title": "Go Engineer",
			"company_name": "Acme",
			"category": "Software Development",
			"job_type": "full_time",
			"candidate_required_location": "Worldwide",
			"salary": "$90k-$120k",
			"publication_date": "2026-08-20T08:00:00"
		},
		{
			"id": 102,
			"url": "https://remotive.com/remote-jobs/software-dev/backend-102",
			"title": "Backend Developer",
			"company_name": "Globex",
			"candidate_required_location": "Europe",
			"publication_date": "2026-08-21T10:00:00"
		}
	]
}`

func TestExtract_ParsesListings(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	a := New(srv.URL)
	records, err := a.Extract(context.Background(), jobs.Query{Keyword: "golang", Limit: 25})

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Contains(t, gotQuery, "search=golang")
	assert.Contains(t, gotQuery, "limit=25")

	assert.Equal(t, "remotive-101", records[0].ID)
	assert.Equal(t, "Go Engineer", records[0].Title)
	assert.Equal(t, "Acme", records[0].Company)
	assert.Equal(t, "$90k-$120k", records[0].Salary)
	assert.Equal(t, "full_time", records[0].WorkModel)
	assert.Equal(t, "Software Development", records[0].Metadata["category"])
}

func TestExtract_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Extract(context.Background(), jobs.Query{Keyword: "golang"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestExtract_EmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"job-count": 0, "jobs": []}`))
	}))
	defer srv.Close()

	records, err := New(srv.URL).Extract(context.Background(), jobs.Query{Keyword: "cobol"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

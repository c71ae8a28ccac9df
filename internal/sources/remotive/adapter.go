// Remotive exposes a public JSON API for remote listings, so this adapter
// is a plain HTTP fetch with a typed response mirror; no browser needed.
package remotive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go-jobradar-automation/internal/jobs"
)

const (
	defaultAPIBase = "https://remotive.com/api/remote-jobs"
	httpTimeout    = 15 * time.Second
)

type Adapter struct {
	apiBase string
	client  *http.Client
}

func New(apiBase string) *Adapter {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Adapter{
		apiBase: apiBase,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

func (a *Adapter) Name() string {
	return "Remotive"
}

// apiResponse mirrors the top-level Remotive JSON response.
type apiResponse struct {
	JobCount int         `json:"job-count"`
	Jobs     []apiResult `json:"jobs"`
}

// apiResult mirrors a single Remotive listing.
type apiResult struct {
	ID              int    `json:"id"`
	URL             string `json:"url"`
	Title           string `json:"title"`
	CompanyName     string `json:"company_name"`
	Category        string `json:"category"`
	JobType         string `json:"job_type"`
	Location        string `json:"candidate_required_location"`
	Salary          string `json:"salary"`
	PublicationDate string `json:"publication_date"`
	Description     string `json:"description"`
}

func (a *Adapter) Extract(ctx context.Context, q jobs.Query) ([]jobs.Record, error) {
	params := url.Values{}
	params.Set("search", q.Keyword)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	reqURL := a.apiBase + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remotive returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	records := make([]jobs.Record, 0, len(apiResp.Jobs))
	for _, r := range apiResp.Jobs {
		records = append(records, jobs.Record{
			ID:         "remotive-" + strconv.Itoa(r.ID),
			Title:      r.Title,
			Company:    r.CompanyName,
			Location:   r.Location,
			PostedDate: r.PublicationDate,
			URL:        r.URL,
			Salary:     r.Salary,
			WorkModel:  r.JobType,
			Metadata:   map[string]string{"category": r.Category},
		})
	}
	return records, nil
}

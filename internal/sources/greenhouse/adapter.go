// The Greenhouse boards API has no server-side search, so this adapter
// pulls each configured company board and matches the query keyword against
// titles client-side. One configured adapter covers many boards.
package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"go-jobradar-automation/internal/jobs"
)

const defaultBaseURL = "https://boards-api.greenhouse.io/v1/boards"

type Adapter struct {
	baseURL string
	boards  []string //greenhouse board tokens, e.g. "stripe"
	client  *http.Client
}

func New(baseURL string, boards []string) *Adapter {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{
		baseURL: baseURL,
		boards:  boards,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *Adapter) Name() string {
	return "Greenhouse"
}

type boardJob struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Location    boardLocation `json:"location"`
	AbsoluteURL string        `json:"absolute_url"`
	UpdatedAt   string        `json:"updated_at"`
	CompanyName string        `json:"company_name"`
}

type boardLocation struct {
	Name string `json:"name"`
}

type boardResponse struct {
	Jobs []boardJob `json:"jobs"`
}

func (a *Adapter) Extract(ctx context.Context, q jobs.Query) ([]jobs.Record, error) {
	keyword := strings.ToLower(q.Keyword)
	location := strings.ToLower(q.Location)

	var records []jobs.Record
	var failed []string
	var lastErr error
	for _, board := range a.boards {
		if q.Limit > 0 && len(records) >= q.Limit {
			break
		}
		listings, err := a.fetchBoard(ctx, board)
		if err != nil {
			//one bad board must not sink the others in this query
			failed = append(failed, board)
			lastErr = err
			continue
		}

		for _, gj := range listings {
			if q.Limit > 0 && len(records) >= q.Limit {
				break
			}
			if keyword != "" && !strings.Contains(strings.ToLower(gj.Title), keyword) {
				continue
			}
			if location != "" && !strings.Contains(strings.ToLower(gj.Location.Name), location) {
				continue
			}

			company := gj.CompanyName
			if company == "" {
				company = board
			}
			records = append(records, jobs.Record{
				ID:         fmt.Sprintf("gh-%s-%d", board, gj.ID),
				Title:      gj.Title,
				Company:    company,
				Location:   gj.Location.Name,
				PostedDate: gj.UpdatedAt,
				URL:        gj.AbsoluteURL,
			})
		}
	}

	//error only when every board failed; partial results stand on their own
	if len(failed) == len(a.boards) && len(a.boards) > 0 {
		return nil, fmt.Errorf("all %d boards failed, last: %w", len(failed), lastErr)
	}
	if len(failed) > 0 {
		log.Printf("  ⚠️ Greenhouse: %d/%d boards failed (%s), continuing with partial results",
			len(failed), len(a.boards), strings.Join(failed, ", "))
	}
	return records, nil
}

func (a *Adapter) fetchBoard(ctx context.Context, board string) ([]boardJob, error) {
	url := fmt.Sprintf("%s/%s/jobs", a.baseURL, board)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var ghResp boardResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, err
	}
	return ghResp.Jobs, nil
}

// Canonical job record shared by every adapter and pipeline stage.
// Adapters hand back partially-filled records; Normalize makes them safe
// for rendering and dedup before anything else touches them.

package jobs

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Sentinel replaces absent display fields so message rendering never
// has to deal with empty strings.
const Sentinel = "N/A"

type Record struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Company     string            `json:"company"`
	Location    string            `json:"location"`
	PostedDate  string            `json:"posted_date"`
	URL         string            `json:"url"`
	Source      string            `json:"source"`
	Description string            `json:"description,omitempty"`
	Salary      string            `json:"salary,omitempty"`
	WorkModel   string            `json:"work_model,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Normalize fills sentinel values for the display fields and derives a
// stable ID when the adapter did not set one. Returns a copy; records are
// immutable once they enter the pipeline.
func Normalize(r Record, source string) Record {
	if r.Source == "" {
		r.Source = source
	}
	r.Title = orSentinel(r.Title)
	r.Company = orSentinel(r.Company)
	r.Location = orSentinel(r.Location)
	r.PostedDate = orSentinel(r.PostedDate)
	r.URL = orSentinel(r.URL)
	r.Source = orSentinel(r.Source)

	if strings.TrimSpace(r.ID) == "" {
		r.ID = DeriveID(r.URL)
	}
	return r
}

// DeriveID builds a source-qualified stable identifier from the posting URL.
// Falls back to a random uuid when there is no usable URL; such records will
// never dedup across runs, which is a documented limitation of sources that
// expose no stable attribute at all.
func DeriveID(url string) string {
	url = strings.TrimSpace(url)
	if url == "" || url == Sentinel {
		return "rand-" + uuid.NewString()
	}
	//strip query/fragment noise so tracking params don't break dedup
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	h := sha1.Sum([]byte(url))
	return "url-" + hex.EncodeToString(h[:])
}

func orSentinel(s string) string {
	if strings.TrimSpace(s) == "" {
		return Sentinel
	}
	return strings.TrimSpace(s)
}

package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func TestPostedWithin(t *testing.T) {
	window := 14 * 24 * time.Hour

	tests := []struct {
		name    string
		dateStr string
		want    bool
	}{
		{"iso inside window", "2026-08-20", true},
		{"iso outside window", "2026-07-01", false},
		{"iso with time part", "2026-08-22T09:30:00Z", true},
		{"slash format dd/mm/yyyy", "18/08/2026", true},
		{"relative days", "3 days ago", true},
		{"relative weeks outside", "4 weeks ago", false},
		{"relative hours", "5 hours ago", true},
		{"far future date", "2026-09-15", false},
		{"unparsable excluded", "Recent", false},
		{"empty excluded", "", false},
		{"sentinel excluded", "N/A", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PostedWithin(tt.dateStr, window, testNow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePostedDate_Relative(t *testing.T) {
	d, ok := ParsePostedDate("2 days ago", testNow)
	assert.True(t, ok)
	assert.Equal(t, testNow.Add(-48*time.Hour), d)
}

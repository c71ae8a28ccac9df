package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	relativeRegex = regexp.MustCompile(`(?i)\b(\d+)\s*(minute|hour|day|week|month)s?\s+ago\b`)
)

// PostedWithin reports whether dateStr parses to a posting date inside the
// given window ending now. Unparsable dates return false: when a recency
// filter is active we would rather drop a stale posting than re-notify one.
// This is the inverse of the permissive default most scrapers use, on
// purpose.
func PostedWithin(dateStr string, window time.Duration, now time.Time) bool {
	posted, ok := ParsePostedDate(dateStr, now)
	if !ok {
		return false
	}

	diff := now.Sub(posted)
	if diff > window {
		return false
	}
	//reject future dates beyond 2 days (timezone slack)
	if diff < -2*24*time.Hour {
		return false
	}
	return true
}

// ParsePostedDate makes a best effort at the date formats job boards emit.
func ParsePostedDate(dateStr string, now time.Time) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, false
	}

	//Case 1: ISO "2026-08-20" or "2026-08-20T..."
	if isoDateRegex.MatchString(dateStr) {
		d, err := time.Parse("2006-01-02", dateStr[:10])
		if err == nil {
			return d, true
		}
	}

	//case 2: dd/mm/yyyy
	if strings.Contains(dateStr, "/") {
		parts := strings.Split(dateStr, "/")
		if len(parts) >= 3 {
			day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
			month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
			year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
			if errD == nil && errM == nil && errY == nil && month >= 1 && month <= 12 {
				return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
			}
		}
	}

	//case 3: relative "3 days ago", "2 hours ago"
	if m := relativeRegex.FindStringSubmatch(dateStr); m != nil {
		n, _ := strconv.Atoi(m[1])
		var unit time.Duration
		switch strings.ToLower(m[2]) {
		case "minute":
			unit = time.Minute
		case "hour":
			unit = time.Hour
		case "day":
			unit = 24 * time.Hour
		case "week":
			unit = 7 * 24 * time.Hour
		case "month":
			unit = 30 * 24 * time.Hour
		}
		return now.Add(-time.Duration(n) * unit), true
	}

	return time.Time{}, false
}

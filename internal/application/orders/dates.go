package orders

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts read in the store's timezone
var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// Layouts that carry their own offset
var absoluteLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
}

// ParseDateTime parses an operator-supplied datetime into an instant.
//
// Naive datetimes are read in loc, the store's timezone. The keywords now,
// today, yesterday and tomorrow are relative to now, and "@<unix>" is a Unix
// timestamp. Anything else is an error; there is no best-effort fallback.
func ParseDateTime(value string, loc *time.Location, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	if loc == nil {
		loc = time.UTC
	}

	switch strings.ToLower(v) {
	case "now":
		return now.In(loc), nil
	case "today":
		return midnight(now.In(loc)), nil
	case "yesterday":
		return midnight(now.In(loc)).AddDate(0, 0, -1), nil
	case "tomorrow":
		return midnight(now.In(loc)).AddDate(0, 0, 1), nil
	}

	if strings.HasPrefix(v, "@") {
		secs, err := strconv.ParseInt(v[1:], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized datetime %q", value)
		}
		return time.Unix(secs, 0).In(loc), nil
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized datetime %q", value)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

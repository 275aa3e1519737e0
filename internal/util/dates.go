package util

import (
	"errors"
	"strings"
	"time"
)

// ParseDateRange parses optional start/end filter strings. Each accepts
// RFC3339 or YYYY-MM-DD; a date-only end is made exclusive of the following
// day so the whole end date is included. Reversed bounds are swapped.
func ParseDateRange(startStr, endStr *string) (start time.Time, hasStart bool, endExclusive time.Time, hasEnd bool, err error) {
	parseAny := func(s string) (t time.Time, ok bool, isDateOnly bool, err error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}, false, false, nil
		}
		if tt, e := time.Parse(time.RFC3339, s); e == nil {
			return tt, true, false, nil
		}
		if tt, e := time.Parse("2006-01-02", s); e == nil {
			return tt, true, true, nil
		}
		return time.Time{}, false, false, errors.New("invalid date format (use YYYY-MM-DD or RFC3339)")
	}

	var (
		rawStart    time.Time
		rawEnd      time.Time
		startOk     bool
		endOk       bool
		endDateOnly bool
	)

	if startStr != nil {
		t, ok, _, e := parseAny(*startStr)
		if e != nil {
			return time.Time{}, false, time.Time{}, false, e
		}
		if ok {
			rawStart = t
			startOk = true
		}
	}

	if endStr != nil {
		t, ok, isDateOnly, e := parseAny(*endStr)
		if e != nil {
			return time.Time{}, false, time.Time{}, false, e
		}
		if ok {
			rawEnd = t
			endOk = true
			endDateOnly = isDateOnly
		}
	}

	if startOk && endOk && rawEnd.Before(rawStart) {
		rawStart, rawEnd = rawEnd, rawStart
	}

	if startOk {
		start = rawStart
		hasStart = true
	}

	if endOk {
		if endDateOnly {
			endExclusive = rawEnd.AddDate(0, 0, 1)
		} else {
			endExclusive = rawEnd
		}
		hasEnd = true
	}

	return start, hasStart, endExclusive, hasEnd, nil
}

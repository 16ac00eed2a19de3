// Package calendar turns client supplied dates into day boundaries of the
// server location. Pickup dates carry no time of day: they are stored as the
// UTC instant of local midnight.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// ParseDay accepts "YYYY-MM-DD" or an RFC 3339 timestamp and returns local
// midnight of that calendar day in loc.
func ParseDay(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.ParseInLocation(DayLayout, raw, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return StartOfDay(t, loc), nil
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayWindow returns the half-open UTC interval [start, end) covering the
// calendar day of t in loc. DST days are 23 or 25 hours long.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	end := start.AddDate(0, 0, 1)
	return start.UTC(), end.UTC()
}

// Format renders t as a calendar day in loc.
func Format(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

package calendar

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	day, err := ParseDay("2024-06-01", paris)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := day.UTC().Format(time.RFC3339); got != "2024-05-31T22:00:00Z" {
		t.Fatalf("unexpected midnight %s", got)
	}

	// 23:30 UTC is already the next day in Paris
	day, err = ParseDay("2024-06-01T23:30:00Z", paris)
	if err != nil {
		t.Fatalf("parse rfc3339: %v", err)
	}
	if Format(day, paris) != "2024-06-02" {
		t.Fatalf("expected 2024-06-02, got %s", Format(day, paris))
	}

	for _, bad := range []string{"", "  ", "01/06/2024", "2024-13-01"} {
		if _, err := ParseDay(bad, paris); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestDayWindowAcrossDST(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	start, end := DayWindow(time.Date(2024, 3, 31, 12, 0, 0, 0, paris), paris)
	if end.Sub(start) != 23*time.Hour {
		t.Fatalf("expected 23h window on DST switch, got %s", end.Sub(start))
	}
	if start.Location() != time.UTC || end.Location() != time.UTC {
		t.Fatalf("window bounds must be UTC")
	}

	start, end = DayWindow(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	if !start.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window %s - %s", start, end)
	}
}

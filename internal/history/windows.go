// Package history computes query windows and aggregates transaction history
// across them.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/wealth-builder/internal/common"
)

// Unit is the step between consecutive window boundaries.
type Unit string

const (
	// Day steps boundaries back one calendar day at a time.
	Day Unit = "d"
	// Month steps boundaries back one calendar month at a time.
	Month Unit = "m"
)

// ParseUnit accepts d, day, days, m, month and months.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "day", "days":
		return Day, nil
	case "m", "month", "months":
		return Month, nil
	default:
		return "", fmt.Errorf("%w: %q (use d or m)", common.ErrInvalidUnit, s)
	}
}

// ComputeDateWindows returns count window start dates stepping back from now,
// newest first. Only dates strictly before now's calendar date are kept.
func ComputeDateWindows(unit Unit, count int, now time.Time) []time.Time {
	if count <= 0 {
		return []time.Time{}
	}

	today := truncateDay(now)
	dates := make([]time.Time, 0, count)

	date := now
	for range count {
		if unit == Day {
			date = date.AddDate(0, 0, -1)
		} else {
			date = AddMonths(date, -1)
		}
		dates = append(dates, truncateDay(date))
	}

	kept := dates[:0]
	for _, d := range dates {
		if d.Before(today) {
			kept = append(kept, d)
		}
	}

	return kept
}

// AddMonths shifts t by n calendar months, clamping the day to the last day
// of the target month (Mar 31 minus one month is Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func truncateDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

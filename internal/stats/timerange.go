package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout of game dates.
const DateLayout = "2006-01-02"

// TimeRange represents a start and end time period. End is exclusive.
// A zero Start or End leaves that side open.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the range is unbounded on both sides.
func (tr TimeRange) IsZero() bool {
	return tr.Start.IsZero() && tr.End.IsZero()
}

// Contains reports whether a "YYYY-MM-DD" date falls within the range.
// Unparseable dates are only contained by an unbounded range.
func (tr TimeRange) Contains(date string) bool {
	if tr.IsZero() {
		return true
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	if !tr.Start.IsZero() && d.Before(tr.Start) {
		return false
	}
	if !tr.End.IsZero() && !d.Before(tr.End) {
		return false
	}
	return true
}

// MonthRangeFrom calculates the start and end of a month with an offset from a reference time.
// offset = 0 means the month containing referenceTime, -1 means previous month, etc.
func MonthRangeFrom(referenceTime time.Time, offset int) TimeRange {
	currentMonthStart := time.Date(referenceTime.Year(), referenceTime.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthStart := currentMonthStart.AddDate(0, offset, 0)

	return TimeRange{
		Start: monthStart,
		End:   monthStart.AddDate(0, 1, 0),
	}
}

// YearRangeFrom calculates the calendar year containing referenceTime, shifted by offset years.
func YearRangeFrom(referenceTime time.Time, offset int) TimeRange {
	yearStart := time.Date(referenceTime.Year()+offset, time.January, 1, 0, 0, 0, 0, time.UTC)

	return TimeRange{
		Start: yearStart,
		End:   yearStart.AddDate(1, 0, 0),
	}
}

// LastDaysFrom returns the range covering the last n days up to and including referenceTime's day.
func LastDaysFrom(referenceTime time.Time, days int) TimeRange {
	today := time.Date(referenceTime.Year(), referenceTime.Month(), referenceTime.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1)

	return TimeRange{
		Start: end.AddDate(0, 0, -days),
		End:   end,
	}
}

// ParseRange resolves a named range relative to now.
// Accepted: "" or "all", "month", "last-month", "year", "last-year", "<n>d" (e.g. "30d"), or a year such as "2024".
func ParseRange(name string, now time.Time) (TimeRange, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "all":
		return TimeRange{}, nil
	case "month":
		return MonthRangeFrom(now, 0), nil
	case "last-month":
		return MonthRangeFrom(now, -1), nil
	case "year":
		return YearRangeFrom(now, 0), nil
	case "last-year":
		return YearRangeFrom(now, -1), nil
	}

	if strings.HasSuffix(name, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(name, "d"))
		if err != nil || days <= 0 {
			return TimeRange{}, fmt.Errorf("invalid day range %q", name)
		}
		return LastDaysFrom(now, days), nil
	}

	if len(name) == 4 {
		year, err := strconv.Atoi(name)
		if err == nil {
			return YearRangeFrom(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), 0), nil
		}
	}

	return TimeRange{}, fmt.Errorf("unknown range %q", name)
}

// FormatPeriod returns a human-readable description of the time period.
func (tr TimeRange) FormatPeriod() string {
	if tr.IsZero() {
		return "All time"
	}
	start := "beginning"
	if !tr.Start.IsZero() {
		start = tr.Start.Format(DateLayout)
	}
	end := "today"
	if !tr.End.IsZero() {
		end = tr.End.AddDate(0, 0, -1).Format(DateLayout) // End is exclusive, so subtract 1 day for display
	}
	return fmt.Sprintf("%s to %s", start, end)
}

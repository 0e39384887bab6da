package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for every calendar date input.
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of calendar dates. A nil bound is unbounded.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// AllTime is the unbounded range.
func AllTime() DateRange { return DateRange{} }

// ParseDate parses YYYY-MM-DD as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseDateRange parses optional bounds; empty strings leave that side open.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if strings.TrimSpace(start) != "" {
		t, err := ParseDate(start)
		if err != nil {
			return r, err
		}
		r.Start = &t
	}
	if strings.TrimSpace(end) != "" {
		t, err := ParseDate(end)
		if err != nil {
			return r, err
		}
		r.End = &t
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return r, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return r, nil
}

// NewDateRange builds a closed range from two dates.
func NewDateRange(start, end time.Time) DateRange {
	s, e := TruncateDay(start), TruncateDay(end)
	return DateRange{Start: &s, End: &e}
}

// Bounds returns the half-open [from, until) interval; until is End widened by one day.
func (r DateRange) Bounds() (from, until *time.Time) {
	if r.Start != nil {
		f := TruncateDay(*r.Start)
		from = &f
	}
	if r.End != nil {
		u := TruncateDay(*r.End).AddDate(0, 0, 1)
		until = &u
	}
	return from, until
}

// Contains reports whether t falls inside the half-open interval.
func (r DateRange) Contains(t time.Time) bool {
	from, until := r.Bounds()
	if from != nil && t.Before(*from) {
		return false
	}
	if until != nil && !t.Before(*until) {
		return false
	}
	return true
}

// IsAllTime reports whether both sides are open.
func (r DateRange) IsAllTime() bool { return r.Start == nil && r.End == nil }

// Label renders the range for report headers.
func (r DateRange) Label() string {
	switch {
	case r.IsAllTime():
		return "All history"
	case r.Start == nil:
		return "Up to " + r.End.Format(DateLayout)
	case r.End == nil:
		return "From " + r.Start.Format(DateLayout)
	default:
		return r.Start.Format(DateLayout) + " to " + r.End.Format(DateLayout)
	}
}

// TruncateDay drops the time-of-day part, keeping the location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns the last calendar day of t's month.
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location())
}

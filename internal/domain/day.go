package domain

import (
	"fmt"
	"math"
	"time"
)

// DayLayout is the storage and wire form of a Day
const DayLayout = "2006-01-02"

// Day is a calendar date with no time zone attached. It only becomes an
// instant when anchored to a location with Start.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// The store keeps instants as Unix nanoseconds, which covers 1677 to 2262
var (
	MinTime = time.Unix(0, math.MinInt64)
	MaxTime = time.Unix(0, math.MaxInt64)
)

// CheckStorable rejects instants outside MinTime..MaxTime
func CheckStorable(what string, t time.Time) error {
	if t.Before(MinTime) || t.After(MaxTime) {
		return NewValidationError(fmt.Sprintf("%s %s is outside %d-%d", what, t.Format(time.RFC3339), MinTime.Year(), MaxTime.Year()))
	}
	return nil
}

// DayOf returns the calendar day t falls on in loc
func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// NewDay normalizes out-of-range values (Jan 32 becomes Feb 1)
func NewDay(year int, month time.Month, day int) Day {
	return DayOf(time.Date(year, month, day, 12, 0, 0, 0, time.UTC), time.UTC)
}

// ParseDay parses a YYYY-MM-DD string
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return DayOf(t, time.UTC), nil
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Day
func (d Day) IsZero() bool {
	return d == Day{}
}

// Start is local midnight of d in loc
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays moves d by n calendar days
func (d Day) AddDays(n int) Day {
	return NewDay(d.Year, d.Month, d.Day+n)
}

// Weekday of d
func (d Day) Weekday() time.Weekday {
	return d.Start(time.UTC).Weekday()
}

// Compare returns -1, 0 or +1
func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before reports whether d is strictly earlier than o
func (d Day) Before(o Day) bool {
	return d.Compare(o) < 0
}

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

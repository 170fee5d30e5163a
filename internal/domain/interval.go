package domain

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidInterval = errors.New("interval end must be after start")

// DateInterval is a half-open range of calendar dates [Start, End). Both bounds
// are UTC midnights; use Day to normalize arbitrary instants.
type DateInterval struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to its calendar date at UTC midnight. The date is read in
// t's own location, so 2024-01-01T23:00-05:00 is 2024-01-01.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func AddDays(day time.Time, n int) time.Time {
	return Day(day).AddDate(0, 0, n)
}

func NewDateInterval(start, end time.Time) (DateInterval, error) {
	iv := DateInterval{Start: Day(start), End: Day(end)}
	if !iv.Valid() {
		return DateInterval{}, ErrInvalidInterval
	}
	return iv, nil
}

// FromInclusiveUserRange converts a user range whose end is the last occupied
// night into the exclusive form [start, end+1 day).
func FromInclusiveUserRange(start, end time.Time) DateInterval {
	return DateInterval{Start: Day(start), End: AddDays(end, 1)}
}

// ToInclusiveUserRange is the inverse of FromInclusiveUserRange.
func ToInclusiveUserRange(iv DateInterval) (time.Time, time.Time) {
	return iv.Start, AddDays(iv.End, -1)
}

func (iv DateInterval) Valid() bool {
	return !iv.Start.IsZero() && !iv.End.IsZero() && iv.Start.Before(iv.End)
}

// Nights is the number of calendar days covered by the interval.
func (iv DateInterval) Nights() int {
	return int(iv.End.Sub(iv.Start).Hours() / 24)
}

func (iv DateInterval) Overlaps(other DateInterval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

func (iv DateInterval) Contains(day time.Time) bool {
	day = Day(day)
	return !day.Before(iv.Start) && day.Before(iv.End)
}

// Dates lists every calendar date in [Start, End).
func (iv DateInterval) Dates() []time.Time {
	return datesBetween(iv.Start, iv.End)
}

func (iv DateInterval) String() string {
	return "[" + iv.Start.Format(DateLayout) + "," + iv.End.Format(DateLayout) + ")"
}

// UserString renders the interval in the inclusive form users submit.
func (iv DateInterval) UserString() string {
	start, end := ToInclusiveUserRange(iv)
	return start.Format(DateLayout) + " to " + end.Format(DateLayout)
}

func datesBetween(from, to time.Time) []time.Time {
	if !from.Before(to) {
		return nil
	}
	out := make([]time.Time, 0, int(to.Sub(from).Hours()/24))
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// DatesBetween lists every calendar date in [from, to).
func DatesBetween(from, to time.Time) []time.Time {
	return datesBetween(Day(from), Day(to))
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ParseUserRange parses an inclusive YYYY-MM-DD pair. An end before start
// yields an empty or inverted interval for the caller to reject.
func ParseUserRange(start, end string) (DateInterval, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateInterval{}, fmt.Errorf("start date %q must be formatted as %s", start, DateLayout)
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateInterval{}, fmt.Errorf("end date %q must be formatted as %s", end, DateLayout)
	}
	return FromInclusiveUserRange(s, e), nil
}

// DefaultWindow is the availability window used when a caller supplies no
// dates: tomorrow and the following days-1 days.
func DefaultWindow(today time.Time, days int) DateInterval {
	start := AddDays(today, 1)
	return DateInterval{Start: start, End: AddDays(start, days)}
}

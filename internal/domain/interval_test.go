package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFromInclusiveUserRange_AddsOneDayToEnd(t *testing.T) {
	iv := FromInclusiveUserRange(date(2024, 2, 1), date(2024, 2, 2))
	if !iv.Start.Equal(date(2024, 2, 1)) || !iv.End.Equal(date(2024, 2, 3)) {
		t.Fatalf("interval = %s, want [2024-02-01,2024-02-03)", iv)
	}
	if iv.Nights() != 2 {
		t.Fatalf("nights = %d, want 2", iv.Nights())
	}
}

func TestToInclusiveUserRange_RoundTrips(t *testing.T) {
	start, end := date(2024, 12, 30), date(2025, 1, 1)
	gotStart, gotEnd := ToInclusiveUserRange(FromInclusiveUserRange(start, end))
	if !gotStart.Equal(start) || !gotEnd.Equal(end) {
		t.Fatalf("round trip = %s..%s, want %s..%s", gotStart, gotEnd, start, end)
	}
}

func TestFromInclusiveUserRange_SameDayIsOneNight(t *testing.T) {
	iv := FromInclusiveUserRange(date(2024, 3, 10), date(2024, 3, 10))
	if !iv.Valid() {
		t.Fatalf("expected valid interval, got %s", iv)
	}
	if iv.Nights() != 1 {
		t.Fatalf("nights = %d, want 1", iv.Nights())
	}
}

func TestDay_UsesLocalCalendarDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	got := Day(time.Date(2024, 1, 1, 23, 30, 0, 0, loc))
	if !got.Equal(date(2024, 1, 1)) {
		t.Fatalf("Day = %s, want 2024-01-01", got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("location = %s, want UTC", got.Location())
	}
}

func TestNewDateInterval_RejectsEmptyAndInverted(t *testing.T) {
	if _, err := NewDateInterval(date(2024, 1, 5), date(2024, 1, 5)); err != ErrInvalidInterval {
		t.Fatalf("zero-length err = %v, want %v", err, ErrInvalidInterval)
	}
	if _, err := NewDateInterval(date(2024, 1, 5), date(2024, 1, 4)); err != ErrInvalidInterval {
		t.Fatalf("inverted err = %v, want %v", err, ErrInvalidInterval)
	}
	if _, err := NewDateInterval(date(2024, 1, 5), date(2024, 1, 6)); err != nil {
		t.Fatalf("NewDateInterval error: %v", err)
	}
}

func TestOverlaps_TouchingIntervalsDoNotOverlap(t *testing.T) {
	a := DateInterval{Start: date(2024, 1, 1), End: date(2024, 1, 3)}
	b := DateInterval{Start: date(2024, 1, 3), End: date(2024, 1, 5)}
	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatalf("touching intervals %s and %s reported as overlapping", a, b)
	}
	c := DateInterval{Start: date(2024, 1, 2), End: date(2024, 1, 4)}
	if !a.Overlaps(c) {
		t.Fatalf("expected %s to overlap %s", a, c)
	}
}

func TestDates_ListsHalfOpenRange(t *testing.T) {
	iv := DateInterval{Start: date(2024, 2, 28), End: date(2024, 3, 2)}
	got := iv.Dates()
	want := []time.Time{date(2024, 2, 28), date(2024, 2, 29), date(2024, 3, 1)}
	if len(got) != len(want) {
		t.Fatalf("len(dates) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("dates[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if !iv.Contains(date(2024, 3, 1)) || iv.Contains(date(2024, 3, 2)) {
		t.Fatalf("Contains must include start and exclude end")
	}
}

func TestUserString_RendersInclusiveRange(t *testing.T) {
	iv := DateInterval{Start: date(2024, 2, 1), End: date(2024, 2, 3)}
	if got, want := iv.UserString(), "2024-02-01 to 2024-02-02"; got != want {
		t.Fatalf("UserString = %q, want %q", got, want)
	}
	if got, want := iv.String(), "[2024-02-01,2024-02-03)"; got != want {
		t.Fatalf("String = %q, want %q", got, want)
	}
}

func TestParseUserRange(t *testing.T) {
	iv, err := ParseUserRange("2024-01-01", "2024-01-03")
	if err != nil {
		t.Fatalf("ParseUserRange error: %v", err)
	}
	want := DateInterval{Start: date(2024, time.January, 1), End: date(2024, time.January, 4)}
	if iv != want {
		t.Fatalf("interval = %v, want %v", iv, want)
	}

	if _, err := ParseUserRange("2024/01/01", "2024-01-03"); err == nil {
		t.Fatalf("expected error for malformed start")
	}
	if _, err := ParseUserRange("2024-01-01", "tomorrow"); err == nil {
		t.Fatalf("expected error for malformed end")
	}

	iv, err = ParseUserRange("2024-01-05", "2024-01-03")
	if err != nil {
		t.Fatalf("ParseUserRange error: %v", err)
	}
	if iv.Valid() {
		t.Fatalf("end before start produced valid interval %v", iv)
	}
}

func TestDefaultWindow_StartsTomorrow(t *testing.T) {
	today := date(2024, time.January, 31)
	iv := DefaultWindow(today, 30)
	if !iv.Start.Equal(date(2024, time.February, 1)) {
		t.Fatalf("start = %v, want 2024-02-01", iv.Start)
	}
	if iv.Nights() != 30 {
		t.Fatalf("nights = %d, want 30", iv.Nights())
	}
}

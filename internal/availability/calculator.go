// Package availability computes the free calendar dates of the campsite.
package availability

import (
	"sort"
	"time"

	"campsite/backend/internal/domain"
)

// FreeDates returns every date in window that no occupied interval covers, in
// ascending order. Occupied intervals outside the window are ignored and the
// input slice is never modified.
func FreeDates(window domain.DateInterval, occupied []domain.DateInterval) []time.Time {
	if !window.Valid() {
		return nil
	}

	intersecting := make([]domain.DateInterval, 0, len(occupied))
	for _, o := range occupied {
		if o.Start.Before(window.End) && window.Start.Before(o.End) {
			intersecting = append(intersecting, o)
		}
	}
	if len(intersecting) == 0 {
		return window.Dates()
	}

	sort.SliceStable(intersecting, func(i, j int) bool {
		return intersecting[i].Start.Before(intersecting[j].Start)
	})

	free := make([]time.Time, 0, window.Nights())
	cursor := window.Start
	for _, o := range intersecting {
		free = append(free, domain.DatesBetween(cursor, later(window.Start, o.Start))...)
		// cursor only moves forward so touching or repeated intervals cannot re-emit dates
		cursor = later(cursor, earlier(window.End, o.End))
	}
	free = append(free, domain.DatesBetween(cursor, window.End)...)

	return free
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

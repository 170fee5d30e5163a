package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"campsite/backend/internal/domain"
	"campsite/backend/internal/store"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func reservation(owner string, start, end time.Time) domain.Reservation {
	return domain.Reservation{
		OwnerName:  owner,
		OwnerEmail: owner + "@example.com",
		StartDate:  start,
		EndDate:    end,
	}
}

func TestInsert_RejectsOverlapAcceptsTouching(t *testing.T) {
	s := NewReservationStore()
	ctx := context.Background()

	if _, err := s.Insert(ctx, reservation("a", date(2024, 2, 1), date(2024, 2, 3))); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if _, err := s.Insert(ctx, reservation("b", date(2024, 2, 2), date(2024, 2, 4))); err != store.ErrConflict {
		t.Fatalf("overlap err = %v, want %v", err, store.ErrConflict)
	}
	if _, err := s.Insert(ctx, reservation("c", date(2024, 2, 3), date(2024, 2, 4))); err != nil {
		t.Fatalf("touching insert error: %v", err)
	}
}

func TestInsert_ConcurrentIdenticalRangesCommitOnce(t *testing.T) {
	s := NewReservationStore()

	const attempts = 16
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Insert(context.Background(), reservation(fmt.Sprintf("owner-%d", i), date(2024, 2, 1), date(2024, 2, 3)))
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, store.ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("successful inserts = %d, want 1", ok)
	}
}

func TestUpdate_ExcludesItselfFromOverlapCheck(t *testing.T) {
	s := NewReservationStore()
	ctx := context.Background()

	a, err := s.Insert(ctx, reservation("a", date(2024, 2, 1), date(2024, 2, 3)))
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if _, err := s.Insert(ctx, reservation("b", date(2024, 2, 5), date(2024, 2, 7))); err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	moved, err := s.Update(ctx, a.ID, domain.DateInterval{Start: date(2024, 2, 2), End: date(2024, 2, 4)})
	if err != nil {
		t.Fatalf("self-overlapping Update error: %v", err)
	}
	if moved.OwnerName != "a" || moved.ID != a.ID {
		t.Fatalf("identity changed: %+v", moved)
	}

	if _, err := s.Update(ctx, a.ID, domain.DateInterval{Start: date(2024, 2, 4), End: date(2024, 2, 6)}); err != store.ErrConflict {
		t.Fatalf("overlap err = %v, want %v", err, store.ErrConflict)
	}
}

func TestDeleteAndGet_NotFound(t *testing.T) {
	s := NewReservationStore()
	ctx := context.Background()

	a, err := s.Insert(ctx, reservation("a", date(2024, 2, 1), date(2024, 2, 3)))
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(ctx, a.ID); err != store.ErrNotFound {
		t.Fatalf("second Delete err = %v, want %v", err, store.ErrNotFound)
	}
	if _, err := s.Get(ctx, a.ID); err != store.ErrNotFound {
		t.Fatalf("Get err = %v, want %v", err, store.ErrNotFound)
	}
	if _, err := s.Update(ctx, a.ID, domain.DateInterval{Start: date(2024, 3, 1), End: date(2024, 3, 2)}); err != store.ErrNotFound {
		t.Fatalf("Update err = %v, want %v", err, store.ErrNotFound)
	}
}

func TestInsert_IdempotentReplay(t *testing.T) {
	s := NewReservationStore()
	ctx := context.Background()

	first, err := s.Insert(ctx, reservation("a", date(2024, 2, 1), date(2024, 2, 3)))
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	replay := reservation("a", date(2024, 2, 1), date(2024, 2, 3))
	replay.ID = first.ID
	got, err := s.Insert(ctx, replay)
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("replay id = %s, want %s", got.ID, first.ID)
	}

	changed := reservation("a", date(2024, 2, 10), date(2024, 2, 11))
	changed.ID = first.ID
	if _, err := s.Insert(ctx, changed); err != store.ErrIdempotencyConflict {
		t.Fatalf("changed replay err = %v, want %v", err, store.ErrIdempotencyConflict)
	}
}

func TestQueryIntersecting_SortedAndFiltered(t *testing.T) {
	s := NewReservationStore()
	ctx := context.Background()

	for _, r := range []domain.Reservation{
		reservation("late", date(2024, 2, 20), date(2024, 2, 22)),
		reservation("early", date(2024, 2, 1), date(2024, 2, 3)),
		reservation("outside", date(2024, 4, 1), date(2024, 4, 3)),
	} {
		if _, err := s.Insert(ctx, r); err != nil {
			t.Fatalf("Insert error: %v", err)
		}
	}

	got, err := s.QueryIntersecting(ctx, domain.DateInterval{Start: date(2024, 2, 2), End: date(2024, 3, 1)})
	if err != nil {
		t.Fatalf("QueryIntersecting error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (%v)", len(got), got)
	}
	if !got[0].Start.Equal(date(2024, 2, 1)) || !got[1].Start.Equal(date(2024, 2, 20)) {
		t.Fatalf("unexpected order: %v", got)
	}
}

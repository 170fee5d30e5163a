// Package memory is a process-local ReservationStore. Each write checks for
// overlap and commits under a single mutex, which gives it the same atomic
// exclusion guarantee the Postgres constraint provides.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"campsite/backend/internal/domain"
	"campsite/backend/internal/store"
)

type ReservationStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.Reservation
	now  func() time.Time
}

func NewReservationStore() *ReservationStore {
	return &ReservationStore{
		rows: make(map[uuid.UUID]domain.Reservation),
		now:  time.Now,
	}
}

var _ store.ReservationStore = (*ReservationStore)(nil)

func (s *ReservationStore) Insert(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dates := r.Dates()
	if r.ID != uuid.Nil {
		if existing, ok := s.rows[r.ID]; ok {
			if existing.OwnerName != r.OwnerName ||
				existing.OwnerEmail != r.OwnerEmail ||
				existing.Dates() != dates {
				return domain.Reservation{}, store.ErrIdempotencyConflict
			}
			return existing, nil
		}
	}
	if s.overlapsLocked(dates, uuid.Nil) {
		return domain.Reservation{}, store.ErrConflict
	}

	if r.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Reservation{}, err
		}
		r.ID = id
	}
	now := s.now().UTC()
	r.SetDates(dates)
	r.CreatedAt = now
	r.UpdatedAt = now
	s.rows[r.ID] = r
	return r, nil
}

func (s *ReservationStore) Update(ctx context.Context, id uuid.UUID, dates domain.DateInterval) (domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[id]
	if !ok {
		return domain.Reservation{}, store.ErrNotFound
	}
	if s.overlapsLocked(dates, id) {
		return domain.Reservation{}, store.ErrConflict
	}
	r.SetDates(dates)
	r.UpdatedAt = s.now().UTC()
	s.rows[id] = r
	return r, nil
}

func (s *ReservationStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *ReservationStore) Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[id]
	if !ok {
		return domain.Reservation{}, store.ErrNotFound
	}
	return r, nil
}

func (s *ReservationStore) QueryIntersecting(ctx context.Context, window domain.DateInterval) ([]domain.DateInterval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	out := make([]domain.DateInterval, 0, len(s.rows))
	for _, r := range s.rows {
		if dates := r.Dates(); dates.Overlaps(window) {
			out = append(out, dates)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

// Ping always succeeds; it lets the memory store stand in for readiness checks.
func (s *ReservationStore) Ping(context.Context) error {
	return nil
}

func (s *ReservationStore) overlapsLocked(dates domain.DateInterval, except uuid.UUID) bool {
	for id, r := range s.rows {
		if id == except {
			continue
		}
		if r.Dates().Overlaps(dates) {
			return true
		}
	}
	return false
}

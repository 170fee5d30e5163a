package store

import (
	"context"

	"github.com/google/uuid"

	"campsite/backend/internal/domain"
)

// ReservationStore is the persistence contract for campsite reservations. It
// is the sole authority on overlap: Insert and Update must reject an interval
// overlapping any other stored reservation atomically with the write and
// report it as ErrConflict. Transport and timeout failures wrap ErrUnavailable.
type ReservationStore interface {
	Insert(ctx context.Context, r domain.Reservation) (domain.Reservation, error)
	Update(ctx context.Context, id uuid.UUID, dates domain.DateInterval) (domain.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	QueryIntersecting(ctx context.Context, window domain.DateInterval) ([]domain.DateInterval, error)
}

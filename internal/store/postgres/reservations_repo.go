package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"campsite/backend/internal/domain"
	"campsite/backend/internal/store"
)

const noOverlapConstraint = "reservations_no_overlap"

type ReservationRepo struct {
	db bun.IDB
}

func NewReservationRepo(db bun.IDB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

var _ store.ReservationStore = (*ReservationRepo)(nil)

// Insert relies on the reservations_no_overlap exclusion constraint; there is
// no availability read before the write. A duplicate id (idempotent replay)
// is resolved against the stored row.
func (r *ReservationRepo) Insert(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	m := domain.Reservation{
		ID:         res.ID,
		OwnerName:  res.OwnerName,
		OwnerEmail: res.OwnerEmail,
		StartDate:  domain.Day(res.StartDate),
		EndDate:    domain.Day(res.EndDate),
		CreatedAt:  res.CreatedAt,
		UpdatedAt:  res.UpdatedAt,
	}

	result, err := r.db.NewInsert().
		Model(&m).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.Reservation{}, classify(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Reservation{}, classify(err)
	}
	if affected == 0 {
		existing, err := r.Get(ctx, m.ID)
		if err != nil {
			return domain.Reservation{}, err
		}
		if existing.OwnerName != m.OwnerName ||
			existing.OwnerEmail != m.OwnerEmail ||
			existing.Dates() != m.Dates() {
			return domain.Reservation{}, store.ErrIdempotencyConflict
		}
		return existing, nil
	}

	return m, nil
}

// Update moves one reservation to new dates. Postgres checks the exclusion
// constraint against every other row, so a range overlapping only the row's
// previous dates succeeds.
func (r *ReservationRepo) Update(ctx context.Context, id uuid.UUID, dates domain.DateInterval) (domain.Reservation, error) {
	m := domain.Reservation{ID: id}
	m.SetDates(dates)

	result, err := r.db.NewUpdate().
		Model(&m).
		Column("start_date", "end_date", "updated_at").
		WherePK().
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reservation{}, store.ErrNotFound
		}
		return domain.Reservation{}, classify(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Reservation{}, classify(err)
	}
	if affected == 0 {
		return domain.Reservation{}, store.ErrNotFound
	}
	return m, nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*domain.Reservation)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return classify(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *ReservationRepo) Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	var m domain.Reservation
	err := r.db.NewSelect().
		Model(&m).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reservation{}, store.ErrNotFound
		}
		return domain.Reservation{}, classify(err)
	}
	return m, nil
}

func (r *ReservationRepo) QueryIntersecting(ctx context.Context, window domain.DateInterval) ([]domain.DateInterval, error) {
	var rows []domain.Reservation
	err := r.db.NewSelect().
		Model(&rows).
		Column("start_date", "end_date").
		Where("start_date < ?::date", window.End).
		Where("end_date > ?::date", window.Start).
		OrderExpr("start_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, classify(err)
	}

	out := make([]domain.DateInterval, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Dates())
	}
	return out, nil
}

// classify maps driver errors onto store sentinels. Constraint names and SQL
// text stay inside this package.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23P01" && pgErr.ConstraintName == noOverlapConstraint:
			return store.ErrConflict
		case isUnavailableCode(pgErr.Code):
			return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
		}
		return err
	}

	if isUnavailable(err) {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return err
}

func isUnavailableCode(code string) bool {
	if len(code) == 5 && code[:2] == "08" {
		return true
	}
	switch code {
	case "53300", "57P01", "57P02", "57P03", "57014":
		return true
	}
	return false
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		pgconn.Timeout(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

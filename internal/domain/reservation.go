package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Reservation struct {
	bun.BaseModel `bun:"table:reservations"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	OwnerName  string    `bun:"owner_name,notnull"`
	OwnerEmail string    `bun:"owner_email,notnull"`
	StartDate  time.Time `bun:"start_date,type:date,notnull"`
	EndDate    time.Time `bun:"end_date,type:date,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

func (r Reservation) Dates() DateInterval {
	return DateInterval{Start: Day(r.StartDate), End: Day(r.EndDate)}
}

func (r *Reservation) SetDates(iv DateInterval) {
	r.StartDate = iv.Start
	r.EndDate = iv.End
}

func (r *Reservation) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if r.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			r.ID = id
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		r.UpdatedAt = now
	}
	return nil
}

package reservations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"campsite/backend/internal/availability"
	"campsite/backend/internal/domain"
	"campsite/backend/internal/store"
)

const tracerName = "campsite/backend/internal/service/reservations"

// Service guards every reservation write. It validates policy locally and
// then forwards exactly one store call; overlap is decided by the store.
type Service struct {
	store  store.ReservationStore
	clock  Clock
	policy Policy
	tracer trace.Tracer
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithPolicy(p Policy) Option {
	return func(s *Service) {
		s.policy = p.withDefaults()
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func NewService(st store.ReservationStore, opts ...Option) *Service {
	s := &Service{
		store:  st,
		clock:  systemClock{},
		policy: DefaultPolicy(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Today is the current calendar date according to the injected clock.
func (s *Service) Today() time.Time {
	return domain.Day(s.clock.Now())
}

type BookInput struct {
	Dates          domain.DateInterval
	OwnerName      string
	OwnerEmail     string
	IdempotencyKey string
}

func (s *Service) Book(ctx context.Context, in BookInput) (res domain.Reservation, err error) {
	ctx, span := s.startSpan(ctx, "reservations.Book", in.Dates)
	defer func() { endSpan(span, err) }()

	dates := normalize(in.Dates)
	if err := s.validateDates(dates); err != nil {
		return domain.Reservation{}, err
	}

	r := domain.Reservation{
		OwnerName:  strings.TrimSpace(in.OwnerName),
		OwnerEmail: strings.TrimSpace(in.OwnerEmail),
	}
	r.SetDates(dates)

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > 256 {
			return domain.Reservation{}, validationError("idempotency_key too long")
		}
		owner := strings.ToLower(r.OwnerEmail)
		r.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("campsite:book_reservation:"+owner+":"+key))
	}

	created, err := s.store.Insert(ctx, r)
	if err != nil {
		return domain.Reservation{}, mapStoreError("book", dates, r.ID, err)
	}
	span.SetAttributes(attribute.String("campsite.reservation_id", created.ID.String()))
	return created, nil
}

// Modify replaces the dates of one reservation. Identity and owner fields are
// left untouched.
func (s *Service) Modify(ctx context.Context, id uuid.UUID, dates domain.DateInterval) (res domain.Reservation, err error) {
	ctx, span := s.startSpan(ctx, "reservations.Modify", dates)
	defer func() { endSpan(span, err) }()

	if id == uuid.Nil {
		return domain.Reservation{}, validationError("reservation_id is required")
	}
	dates = normalize(dates)
	if err := s.validateDates(dates); err != nil {
		return domain.Reservation{}, err
	}

	updated, err := s.store.Update(ctx, id, dates)
	if err != nil {
		return domain.Reservation{}, mapStoreError("modify", dates, id, err)
	}
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := s.startSpan(ctx, "reservations.Cancel", domain.DateInterval{})
	defer func() { endSpan(span, err) }()

	if id == uuid.Nil {
		return validationError("reservation_id is required")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return mapStoreError("cancel", domain.DateInterval{}, id, err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	if id == uuid.Nil {
		return domain.Reservation{}, validationError("reservation_id is required")
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Reservation{}, mapStoreError("get", domain.DateInterval{}, id, err)
	}
	return r, nil
}

// Availability lists the free dates in window. The answer is only as fresh as
// the read; Book remains the authority.
func (s *Service) Availability(ctx context.Context, window domain.DateInterval) (dates []time.Time, err error) {
	ctx, span := s.startSpan(ctx, "reservations.Availability", window)
	defer func() { endSpan(span, err) }()

	window = normalize(window)
	if !window.Valid() {
		start, end := domain.ToInclusiveUserRange(window)
		return nil, validationError("end date %s cannot be before start date %s",
			end.Format(domain.DateLayout), start.Format(domain.DateLayout))
	}
	if window.Nights() > s.policy.MaxWindowDays {
		return nil, validationError("availability can be queried for at most %d days at a time", s.policy.MaxWindowDays)
	}

	occupied, err := s.store.QueryIntersecting(ctx, window)
	if err != nil {
		return nil, mapStoreError("availability", window, uuid.Nil, err)
	}
	return availability.FreeDates(window, occupied), nil
}

func (s *Service) validateDates(dates domain.DateInterval) error {
	start, end := domain.ToInclusiveUserRange(dates)
	startStr := start.Format(domain.DateLayout)
	endStr := end.Format(domain.DateLayout)

	if dates.Start.IsZero() || dates.End.IsZero() {
		return validationError("start and end dates are required")
	}
	if !dates.End.After(dates.Start) {
		return validationError("end date %s cannot be before start date %s", endStr, startStr)
	}

	today := s.Today()
	if !dates.Start.After(today) {
		return validationError("start date %s must be in the future", startStr)
	}
	if nights := dates.Nights(); nights > s.policy.MaxNights {
		return validationError("reservations are limited to %d nights; %s to %s is %d nights",
			s.policy.MaxNights, startStr, endStr, nights)
	}
	latest := addMonths(today, s.policy.HorizonMonths)
	if dates.Start.After(latest) {
		return validationError("start date %s is too far ahead; reservations may start no later than %s",
			startStr, latest.Format(domain.DateLayout))
	}
	return nil
}

// addMonths moves day n calendar months forward, clamping to the last day of
// the target month so that Jan 31 plus one month is Feb 28 or 29.
func addMonths(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func normalize(iv domain.DateInterval) domain.DateInterval {
	if iv.Start.IsZero() || iv.End.IsZero() {
		return iv
	}
	return domain.DateInterval{Start: domain.Day(iv.Start), End: domain.Day(iv.End)}
}

func mapStoreError(op string, dates domain.DateInterval, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		return &ConflictError{Dates: dates}
	case errors.Is(err, store.ErrNotFound):
		return &NotFoundError{ID: id}
	case errors.Is(err, store.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return &StoreUnavailableError{Op: op, Err: err}
	}
	return err
}

func (s *Service) startSpan(ctx context.Context, name string, dates domain.DateInterval) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name)
	if dates.Valid() {
		span.SetAttributes(attribute.String("campsite.dates", dates.String()))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

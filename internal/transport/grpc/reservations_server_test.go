package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"campsite/backend/internal/domain"
	"campsite/backend/internal/service/reservations"
	"campsite/backend/internal/store"
)

type fakeCampsiteService struct {
	bookFn         func(ctx context.Context, in reservations.BookInput) (domain.Reservation, error)
	modifyFn       func(ctx context.Context, id uuid.UUID, dates domain.DateInterval) (domain.Reservation, error)
	cancelFn       func(ctx context.Context, id uuid.UUID) error
	getFn          func(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	availabilityFn func(ctx context.Context, window domain.DateInterval) ([]time.Time, error)
	today          time.Time
}

func (f *fakeCampsiteService) Book(ctx context.Context, in reservations.BookInput) (domain.Reservation, error) {
	if f.bookFn == nil {
		panic("Book not configured")
	}
	return f.bookFn(ctx, in)
}

func (f *fakeCampsiteService) Modify(ctx context.Context, id uuid.UUID, dates domain.DateInterval) (domain.Reservation, error) {
	if f.modifyFn == nil {
		panic("Modify not configured")
	}
	return f.modifyFn(ctx, id, dates)
}

func (f *fakeCampsiteService) Cancel(ctx context.Context, id uuid.UUID) error {
	if f.cancelFn == nil {
		panic("Cancel not configured")
	}
	return f.cancelFn(ctx, id)
}

func (f *fakeCampsiteService) Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	if f.getFn == nil {
		panic("Get not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakeCampsiteService) Availability(ctx context.Context, window domain.DateInterval) ([]time.Time, error) {
	if f.availabilityFn == nil {
		panic("Availability not configured")
	}
	return f.availabilityFn(ctx, window)
}

func (f *fakeCampsiteService) Today() time.Time {
	return f.today
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIdempotencyKey_ReadsHeadersAndTrims(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("idempotency-key", "  abc  "))
	if got := idempotencyKey(ctx); got != "abc" {
		t.Fatalf("idempotencyKey = %q, want %q", got, "abc")
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-idempotency-key", "xyz"))
	if got := idempotencyKey(ctx); got != "xyz" {
		t.Fatalf("idempotencyKey = %q, want %q", got, "xyz")
	}
}

func TestBookReservation_ConvertsInclusiveRangeAndPassesKey(t *testing.T) {
	var got reservations.BookInput
	srv := NewCampsiteServer(&fakeCampsiteService{
		bookFn: func(ctx context.Context, in reservations.BookInput) (domain.Reservation, error) {
			got = in
			r := domain.Reservation{ID: uuid.MustParse("00000000-0000-0000-0000-000000000010"), OwnerName: in.OwnerName}
			r.SetDates(in.Dates)
			return r, nil
		},
	}, slog.Default())

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("idempotency-key", "k1"))
	resp, err := srv.BookReservation(ctx, &BookReservationRequest{
		OwnerName:  "Ada",
		OwnerEmail: "ada@example.com",
		StartDate:  "2024-02-01",
		EndDate:    "2024-02-02",
	})
	if err != nil {
		t.Fatalf("BookReservation error: %v", err)
	}
	want := domain.DateInterval{Start: date(2024, time.February, 1), End: date(2024, time.February, 3)}
	if got.Dates != want {
		t.Fatalf("dates = %v, want %v", got.Dates, want)
	}
	if got.IdempotencyKey != "k1" {
		t.Fatalf("idempotency_key = %q, want %q", got.IdempotencyKey, "k1")
	}
	if resp.Reservation.StartDate != "2024-02-01" || resp.Reservation.EndDate != "2024-02-02" {
		t.Fatalf("wire range = %s..%s, want 2024-02-01..2024-02-02", resp.Reservation.StartDate, resp.Reservation.EndDate)
	}
}

func TestBookReservation_RejectsBadInput(t *testing.T) {
	srv := NewCampsiteServer(&fakeCampsiteService{}, slog.Default())

	reqs := []*BookReservationRequest{
		nil,
		{OwnerEmail: "a@x", StartDate: "2024-02-01", EndDate: "2024-02-02"},
		{OwnerName: "a", OwnerEmail: "a@x", StartDate: "02/01/2024", EndDate: "2024-02-02"},
	}
	for i, req := range reqs {
		_, err := srv.BookReservation(context.Background(), req)
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("req %d: code = %s, want %s", i, status.Code(err), codes.InvalidArgument)
		}
	}
}

func TestBookReservation_MapsServiceErrors(t *testing.T) {
	dates := domain.DateInterval{Start: date(2024, time.February, 1), End: date(2024, time.February, 3)}
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "validation", err: &reservations.ValidationError{}, want: codes.InvalidArgument},
		{name: "conflict", err: &reservations.ConflictError{Dates: dates}, want: codes.FailedPrecondition},
		{name: "idempotency", err: store.ErrIdempotencyConflict, want: codes.FailedPrecondition},
		{name: "unavailable", err: &reservations.StoreUnavailableError{Op: "book", Err: store.ErrUnavailable}, want: codes.Unavailable},
		{name: "unexpected", err: fmt.Errorf("boom"), want: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewCampsiteServer(&fakeCampsiteService{
				bookFn: func(context.Context, reservations.BookInput) (domain.Reservation, error) {
					return domain.Reservation{}, tt.err
				},
			}, slog.Default())

			_, err := srv.BookReservation(context.Background(), &BookReservationRequest{
				OwnerName:  "a",
				OwnerEmail: "a@x",
				StartDate:  "2024-02-01",
				EndDate:    "2024-02-02",
			})
			if status.Code(err) != tt.want {
				t.Fatalf("code = %s, want %s", status.Code(err), tt.want)
			}
		})
	}
}

func TestBookReservation_ConflictMessageNamesRange(t *testing.T) {
	dates := domain.DateInterval{Start: date(2024, time.February, 1), End: date(2024, time.February, 3)}
	srv := NewCampsiteServer(&fakeCampsiteService{
		bookFn: func(context.Context, reservations.BookInput) (domain.Reservation, error) {
			return domain.Reservation{}, &reservations.ConflictError{Dates: dates}
		},
	}, slog.Default())

	_, err := srv.BookReservation(context.Background(), &BookReservationRequest{
		OwnerName: "a", OwnerEmail: "a@x", StartDate: "2024-02-01", EndDate: "2024-02-02",
	})
	want := (&reservations.ConflictError{Dates: dates}).Error()
	if got := status.Convert(err).Message(); got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestModifyReservation_RejectsInvalidUUID(t *testing.T) {
	srv := NewCampsiteServer(&fakeCampsiteService{}, slog.Default())

	_, err := srv.ModifyReservation(context.Background(), &ModifyReservationRequest{
		ReservationId: "not-a-uuid",
		StartDate:     "2024-02-01",
		EndDate:       "2024-02-02",
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.InvalidArgument)
	}
}

func TestCancelReservation_MapsNotFound(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000020")
	srv := NewCampsiteServer(&fakeCampsiteService{
		cancelFn: func(ctx context.Context, got uuid.UUID) error {
			return &reservations.NotFoundError{ID: got}
		},
	}, slog.Default())

	_, err := srv.CancelReservation(context.Background(), &CancelReservationRequest{ReservationId: id.String()})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.NotFound)
	}
}

func TestGetAvailability_DefaultsToTomorrowWindow(t *testing.T) {
	var gotWindow domain.DateInterval
	srv := NewCampsiteServer(&fakeCampsiteService{
		today: date(2024, time.January, 15),
		availabilityFn: func(ctx context.Context, window domain.DateInterval) ([]time.Time, error) {
			gotWindow = window
			return []time.Time{date(2024, time.January, 16), date(2024, time.January, 20)}, nil
		},
	}, slog.Default(), WithDefaultWindowDays(10))

	resp, err := srv.GetAvailability(context.Background(), &GetAvailabilityRequest{})
	if err != nil {
		t.Fatalf("GetAvailability error: %v", err)
	}
	want := domain.DateInterval{Start: date(2024, time.January, 16), End: date(2024, time.January, 26)}
	if gotWindow != want {
		t.Fatalf("window = %v, want %v", gotWindow, want)
	}
	if resp.StartDate != "2024-01-16" || resp.EndDate != "2024-01-25" {
		t.Fatalf("response range = %s..%s, want 2024-01-16..2024-01-25", resp.StartDate, resp.EndDate)
	}
	if len(resp.Dates) != 2 || resp.Dates[1] != "2024-01-20" {
		t.Fatalf("dates = %v", resp.Dates)
	}
}

func TestGetAvailability_PartialWindowUsesDefault(t *testing.T) {
	var gotWindow domain.DateInterval
	srv := NewCampsiteServer(&fakeCampsiteService{
		today: date(2024, time.January, 15),
		availabilityFn: func(ctx context.Context, window domain.DateInterval) ([]time.Time, error) {
			gotWindow = window
			return nil, nil
		},
	}, slog.Default())

	if _, err := srv.GetAvailability(context.Background(), &GetAvailabilityRequest{StartDate: "2024-01-01"}); err != nil {
		t.Fatalf("GetAvailability error: %v", err)
	}
	want := domain.DateInterval{Start: date(2024, time.January, 16), End: date(2024, time.February, 15)}
	if gotWindow != want {
		t.Fatalf("window = %v, want %v", gotWindow, want)
	}
}

func TestGetAvailability_RejectsMalformedDate(t *testing.T) {
	srv := NewCampsiteServer(&fakeCampsiteService{}, slog.Default())

	_, err := srv.GetAvailability(context.Background(), &GetAvailabilityRequest{StartDate: "2024-13-01", EndDate: "2024-01-02"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.InvalidArgument)
	}
}

func TestDefaultRequestTimeoutInterceptor_AddsDeadline(t *testing.T) {
	interceptor := DefaultRequestTimeoutInterceptor(time.Second)

	_, err := interceptor(context.Background(), nil, nil, func(ctx context.Context, req any) (any, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Fatalf("handler context has no deadline")
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor error: %v", err)
	}
}

package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"campsite/backend/internal/domain"
	"campsite/backend/internal/service/reservations"
	"campsite/backend/internal/store"
)

const defaultWindowDays = 30

type CampsiteServer struct {
	UnimplementedCampsiteServiceServer

	svc        campsiteService
	log        *slog.Logger
	windowDays int
}

type campsiteService interface {
	Book(ctx context.Context, in reservations.BookInput) (domain.Reservation, error)
	Modify(ctx context.Context, id uuid.UUID, dates domain.DateInterval) (domain.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	Availability(ctx context.Context, window domain.DateInterval) ([]time.Time, error)
	Today() time.Time
}

type ServerOption func(*CampsiteServer)

// WithDefaultWindowDays sets the length of the availability window used when
// a request carries no dates.
func WithDefaultWindowDays(days int) ServerOption {
	return func(s *CampsiteServer) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

func NewCampsiteServer(svc campsiteService, log *slog.Logger, opts ...ServerOption) *CampsiteServer {
	if log == nil {
		log = slog.Default()
	}
	s := &CampsiteServer{
		svc:        svc,
		log:        log.With(slog.String("component", "grpc.campsite")),
		windowDays: defaultWindowDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CampsiteServer) GetAvailability(ctx context.Context, req *GetAvailabilityRequest) (*GetAvailabilityResponse, error) {
	log := s.rpcLogger(ctx, "GetAvailability")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	// A window needs both bounds; otherwise the default window applies.
	window := domain.DefaultWindow(s.svc.Today(), s.windowDays)
	if req.StartDate != "" && req.EndDate != "" {
		var err error
		window, err = domain.ParseUserRange(req.StartDate, req.EndDate)
		if err != nil {
			log.Warn("invalid request", slog.String("reason", "bad_date"), slog.Any("err", err))
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}

	free, err := s.svc.Availability(ctx, window)
	if err != nil {
		return nil, s.toStatus(log, "availability query", err, slog.String("window", window.String()))
	}

	out := make([]string, 0, len(free))
	for _, d := range free {
		out = append(out, d.Format(domain.DateLayout))
	}
	start, end := domain.ToInclusiveUserRange(window)

	log.Debug("availability listed", slog.String("window", window.String()), slog.Int("count", len(out)))

	return &GetAvailabilityResponse{
		StartDate: start.Format(domain.DateLayout),
		EndDate:   end.Format(domain.DateLayout),
		Dates:     out,
	}, nil
}

func (s *CampsiteServer) BookReservation(ctx context.Context, req *BookReservationRequest) (*BookReservationResponse, error) {
	log := s.rpcLogger(ctx, "BookReservation")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if strings.TrimSpace(req.OwnerName) == "" || strings.TrimSpace(req.OwnerEmail) == "" {
		log.Warn("invalid request", slog.String("reason", "missing_owner"))
		return nil, status.Error(codes.InvalidArgument, "owner_name and owner_email are required")
	}
	dates, err := domain.ParseUserRange(req.StartDate, req.EndDate)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_date"), slog.Any("err", err))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := s.svc.Book(ctx, reservations.BookInput{
		Dates:          dates,
		OwnerName:      req.OwnerName,
		OwnerEmail:     req.OwnerEmail,
		IdempotencyKey: idempotencyKey(ctx),
	})
	if err != nil {
		return nil, s.toStatus(log, "reservation book", err, slog.String("dates", dates.String()))
	}

	log.Info(
		"reservation booked",
		slog.String("reservation_id", res.ID.String()),
		slog.String("dates", res.Dates().String()),
	)

	return &BookReservationResponse{Reservation: toWireReservation(res)}, nil
}

func (s *CampsiteServer) ModifyReservation(ctx context.Context, req *ModifyReservationRequest) (*ModifyReservationResponse, error) {
	log := s.rpcLogger(ctx, "ModifyReservation")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.ReservationId)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, status.Error(codes.InvalidArgument, "reservation_id must be a UUID")
	}
	dates, err := domain.ParseUserRange(req.StartDate, req.EndDate)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_date"), slog.Any("err", err))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := s.svc.Modify(ctx, id, dates)
	if err != nil {
		return nil, s.toStatus(log, "reservation modify", err,
			slog.String("reservation_id", id.String()),
			slog.String("dates", dates.String()),
		)
	}

	log.Info("reservation modified", slog.String("reservation_id", id.String()), slog.String("dates", res.Dates().String()))
	return &ModifyReservationResponse{Reservation: toWireReservation(res)}, nil
}

func (s *CampsiteServer) CancelReservation(ctx context.Context, req *CancelReservationRequest) (*CancelReservationResponse, error) {
	log := s.rpcLogger(ctx, "CancelReservation")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.ReservationId)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, status.Error(codes.InvalidArgument, "reservation_id must be a UUID")
	}

	if err := s.svc.Cancel(ctx, id); err != nil {
		return nil, s.toStatus(log, "reservation cancel", err, slog.String("reservation_id", id.String()))
	}

	log.Info("reservation cancelled", slog.String("reservation_id", id.String()))
	return &CancelReservationResponse{}, nil
}

func (s *CampsiteServer) GetReservation(ctx context.Context, req *GetReservationRequest) (*GetReservationResponse, error) {
	log := s.rpcLogger(ctx, "GetReservation")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.ReservationId)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, status.Error(codes.InvalidArgument, "reservation_id must be a UUID")
	}

	res, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, s.toStatus(log, "reservation get", err, slog.String("reservation_id", id.String()))
	}
	return &GetReservationResponse{Reservation: toWireReservation(res)}, nil
}

func (s *CampsiteServer) rpcLogger(ctx context.Context, rpc string) *slog.Logger {
	log := s.log.With(slog.String("rpc", rpc))
	if id := RequestIDFromContext(ctx); id != "" {
		log = log.With(slog.String("request_id", id))
	}
	return log
}

// toStatus maps service errors onto gRPC codes. Messages of expected failures
// are passed to the caller; anything else is logged and hidden.
func (s *CampsiteServer) toStatus(log *slog.Logger, op string, err error, attrs ...any) error {
	var (
		vErr *reservations.ValidationError
		cErr *reservations.ConflictError
		nErr *reservations.NotFoundError
		uErr *reservations.StoreUnavailableError
	)
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.As(err, &cErr):
		log.Info(op+" conflict", attrs...)
		return status.Error(codes.FailedPrecondition, cErr.Error())
	case errors.Is(err, store.ErrIdempotencyConflict):
		log.Info(op+" idempotency conflict", attrs...)
		return status.Error(codes.FailedPrecondition, "This request key was already used for a different reservation. Try again with a new key.")
	case errors.As(err, &nErr):
		log.Info("reservation not found", attrs...)
		return status.Error(codes.NotFound, "reservation not found")
	case errors.As(err, &uErr):
		log.Warn(op+" store unavailable", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.Unavailable, "reservation store is temporarily unavailable; try again")
	}
	log.Error(op+" failed", append([]any{slog.Any("err", err)}, attrs...)...)
	return status.Error(codes.Internal, "internal error")
}

func idempotencyKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("idempotency-key")
	if len(values) == 0 {
		values = md.Get("x-idempotency-key")
	}
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func toWireReservation(r domain.Reservation) *Reservation {
	start, end := domain.ToInclusiveUserRange(r.Dates())
	return &Reservation{
		Id:         r.ID.String(),
		OwnerName:  r.OwnerName,
		OwnerEmail: r.OwnerEmail,
		StartDate:  start.Format(domain.DateLayout),
		EndDate:    end.Format(domain.DateLayout),
		CreatedAt:  timestamppb.New(r.CreatedAt),
		UpdatedAt:  timestamppb.New(r.UpdatedAt),
	}
}

package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campsite/backend/internal/domain"
	"campsite/backend/internal/service/reservations"
	"campsite/backend/internal/store"
)

type ReservationService interface {
	Book(ctx context.Context, in reservations.BookInput) (domain.Reservation, error)
	Modify(ctx context.Context, id uuid.UUID, dates domain.DateInterval) (domain.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	Availability(ctx context.Context, window domain.DateInterval) ([]time.Time, error)
	Today() time.Time
}

type ReservationHandler struct {
	Svc ReservationService
	Log *slog.Logger
}

type bookReservationRequest struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

type modifyReservationRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type reservationResponse struct {
	ID        string    `json:"id"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h ReservationHandler) Book(c *gin.Context) {
	var req bookReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON reservation"})
		return
	}
	if strings.TrimSpace(req.UserName) == "" || strings.TrimSpace(req.UserEmail) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userName and userEmail are required"})
		return
	}
	dates, err := domain.ParseUserRange(req.Start, req.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Svc.Book(c.Request.Context(), reservations.BookInput{
		Dates:          dates,
		OwnerName:      req.UserName,
		OwnerEmail:     req.UserEmail,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		h.writeError(c, "reservation book", err)
		return
	}
	h.logger(c).Info("reservation booked",
		slog.String("reservation_id", res.ID.String()),
		slog.String("dates", res.Dates().String()),
	)
	c.JSON(http.StatusCreated, toReservationResponse(res))
}

func (h ReservationHandler) Get(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}
	res, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "reservation get", err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}

func (h ReservationHandler) Modify(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}
	var req modifyReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON date range"})
		return
	}
	dates, err := domain.ParseUserRange(req.Start, req.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Svc.Modify(c.Request.Context(), id, dates)
	if err != nil {
		h.writeError(c, "reservation modify", err)
		return
	}
	h.logger(c).Info("reservation modified",
		slog.String("reservation_id", id.String()),
		slog.String("dates", res.Dates().String()),
	)
	c.JSON(http.StatusOK, toReservationResponse(res))
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}
	if err := h.Svc.Cancel(c.Request.Context(), id); err != nil {
		h.writeError(c, "reservation cancel", err)
		return
	}
	h.logger(c).Info("reservation cancelled", slog.String("reservation_id", id.String()))
	c.Status(http.StatusNoContent)
}

func (h ReservationHandler) logger(c *gin.Context) *slog.Logger {
	return requestLogger(h.Log, c)
}

func (h ReservationHandler) writeError(c *gin.Context, op string, err error) {
	writeServiceError(h.logger(c), c, op, err)
}

func requestLogger(log *slog.Logger, c *gin.Context) *slog.Logger {
	if log == nil {
		log = slog.Default()
	}
	return log.With(
		slog.String("component", "http.campsite"),
		slog.String("request_id", RequestIDFromContext(c.Request.Context())),
	)
}

// writeServiceError maps service errors onto HTTP statuses. Only expected
// failures expose their message.
func writeServiceError(log *slog.Logger, c *gin.Context, op string, err error) {
	var (
		vErr *reservations.ValidationError
		cErr *reservations.ConflictError
		nErr *reservations.NotFoundError
		uErr *reservations.StoreUnavailableError
	)
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.As(err, &cErr):
		log.Info(op+" conflict", slog.String("dates", cErr.Dates.String()))
		c.JSON(http.StatusConflict, gin.H{"error": cErr.Error()})
	case errors.Is(err, store.ErrIdempotencyConflict):
		log.Info(op + " idempotency conflict")
		c.JSON(http.StatusConflict, gin.H{"error": "this Idempotency-Key was already used for a different reservation"})
	case errors.As(err, &nErr):
		log.Info("reservation not found", slog.String("reservation_id", nErr.ID.String()))
		c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
	case errors.As(err, &uErr):
		log.Warn(op+" store unavailable", slog.Any("err", err))
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reservation store is temporarily unavailable; try again"})
	default:
		log.Error(op+" failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func reservationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reservation id must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func toReservationResponse(r domain.Reservation) reservationResponse {
	start, end := domain.ToInclusiveUserRange(r.Dates())
	return reservationResponse{
		ID:        r.ID.String(),
		UserName:  r.OwnerName,
		UserEmail: r.OwnerEmail,
		Start:     start.Format(domain.DateLayout),
		End:       end.Format(domain.DateLayout),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

var _ ReservationHTTP = ReservationHandler{}

package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type ReservationHTTP interface {
	Book(c *gin.Context)
	Get(c *gin.Context)
	Modify(c *gin.Context)
	Cancel(c *gin.Context)
}

type AvailabilityHTTP interface {
	List(c *gin.Context)
}

type Handlers struct {
	Reservation  ReservationHTTP
	Availability AvailabilityHTTP
	Health       HealthHandlers
	// RateLimit guards the mutating reservation routes when set.
	RateLimit gin.HandlerFunc
}

type ServerConfig struct {
	Addr string
	Mode string
}

func NewServer(cfg ServerConfig, log *slog.Logger, h Handlers) *http.Server {
	if log == nil {
		log = slog.Default()
	}
	mode := configureGinMode(cfg.Mode)
	log.Info("gin initialized", slog.String("mode", mode))

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(NewRouter(log, h), "campsite.http"),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(log *slog.Logger, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(AccessLog(log.With(slog.String("component", "http"))))

	router.GET("/healthz", h.Health.Livez)
	router.GET("/readyz", h.Health.Readyz)

	if h.Availability != nil {
		router.GET("/campsite/availabilities", h.Availability.List)
	}
	if h.Reservation != nil {
		limited := func(handler gin.HandlerFunc) []gin.HandlerFunc {
			if h.RateLimit == nil {
				return []gin.HandlerFunc{handler}
			}
			return []gin.HandlerFunc{h.RateLimit, handler}
		}
		group := router.Group("/reservations")
		group.POST("", limited(h.Reservation.Book)...)
		group.GET("/:id", h.Reservation.Get)
		group.PUT("/:id", limited(h.Reservation.Modify)...)
		group.DELETE("/:id", limited(h.Reservation.Cancel)...)
	}
	return router
}

func configureGinMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

type HealthHandlers struct {
	// Ready reports whether the reservation store can serve requests.
	Ready   func(ctx context.Context) error
	Timeout time.Duration
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := h.Ready(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"campsite/backend/internal/domain"
)

type AvailabilityHandler struct {
	Svc ReservationService
	Log *slog.Logger
	// DefaultDays is the window length used when startDate or endDate is
	// missing.
	DefaultDays int
}

// List returns the free dates between startDate and endDate, both inclusive.
func (h AvailabilityHandler) List(c *gin.Context) {
	startParam := c.Query("startDate")
	endParam := c.Query("endDate")

	days := h.DefaultDays
	if days <= 0 {
		days = 30
	}
	window := domain.DefaultWindow(h.Svc.Today(), days)
	if startParam != "" && endParam != "" {
		var err error
		window, err = domain.ParseUserRange(startParam, endParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	free, err := h.Svc.Availability(c.Request.Context(), window)
	if err != nil {
		writeServiceError(requestLogger(h.Log, c), c, "availability query", err)
		return
	}

	out := make([]string, 0, len(free))
	for _, d := range free {
		out = append(out, d.Format(domain.DateLayout))
	}
	c.JSON(http.StatusOK, out)
}

var _ AvailabilityHTTP = AvailabilityHandler{}

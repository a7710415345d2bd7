package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"boiler_controller/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errRange       = "'from' must be <= 'to'"
	errLimit       = "invalid 'limit'; use 1..1000"

	maxLogLimit = 1000

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List journal events
// @Description  Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' covers the whole day.
// @Tags         logs
// @Produce      json
// @Param        from  query     string  false  "Start of range"  example(2026-01-01)
// @Param        to    query     string  false  "End of range; date-only means end of day"  example(2026-01-31)
// @Param        limit query     int     false  "Return only the newest N events (1..1000)"
// @Param        type  query     string  false  "Event type"  Enums(BOILER_EXTINGUISHED,IGNITION_STARTED,IGNITION_SUCCESS,IGNITION_FAILED,OVERHEAT,SENSOR_FROZEN,COAL_BURNED,HEATING_TIMEOUT,MODE_CHANGED,COAL_FEEDING_STARTED,COAL_FEEDING_STOPPED,SYSTEM_ENABLED,SYSTEM_DISABLED,SENSORS_RESET,COMFORT_FALLBACK,FAULTS_RESET)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	f, limit, msg := parseLogQuery(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load logs", "logs_list_failed", err,
			"from", f.From, "to", f.To, "type", f.Type)
		return
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// parseLogQuery builds the journal filter from the query string. A non-empty
// message means the query is invalid.
func parseLogQuery(c *gin.Context) (service.LogFilter, int, string) {
	var (
		f     = service.LogFilter{Type: strings.ToUpper(strings.TrimSpace(c.Query("type")))}
		limit int
		err   error
	)
	if qs := c.Query("from"); qs != "" {
		if f.From, err = parseQueryTime(qs); err != nil {
			return f, 0, errFromInvalid
		}
	}
	if qs := c.Query("to"); qs != "" {
		if f.To, err = parseQueryTime(qs); err != nil {
			return f, 0, errToInvalid
		}
		if isDateOnly(qs) {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, 0, errRange
	}
	if qs := c.Query("limit"); qs != "" {
		limit, err = strconv.Atoi(qs)
		if err != nil || limit < 1 || limit > maxLogLimit {
			return f, 0, errLimit
		}
	}
	return f, limit, ""
}

// parseQueryTime accepts RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD' and returns UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"thermo_relay/internal/service"
)

const (
	errLoadLogs = "failed to load logs"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var queryTimeLayouts = []string{time.RFC3339, layoutDateTime, layoutDate}

// logQuery is the raw query string of GET /api/v1/logs.
type logQuery struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Type  string `form:"type"`
	Limit int    `form:"limit"`
}

// filter converts the query into a service filter. A date-only 'to' covers
// the whole day.
func (q logQuery) filter() (service.LogFilter, error) {
	f := service.LogFilter{Type: q.Type, Limit: q.Limit}
	var err error
	if q.From != "" {
		if f.From, err = parseQueryTime(q.From); err != nil {
			return f, fmt.Errorf("invalid 'from': %w", err)
		}
	}
	if q.To != "" {
		if f.To, err = parseQueryTime(q.To); err != nil {
			return f, fmt.Errorf("invalid 'to': %w", err)
		}
		if !strings.ContainsAny(q.To, "T ") {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return f, nil
}

// @Summary      List controller events
// @Description  Filter by time (RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD', UTC) and event type. A date-only 'to' includes that whole day.
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2026-03-01)
// @Param        to    query   string  false  "End of range"  example(2026-03-31)
// @Param        type  query   string  false  "Event type"  Enums(START,STOP,RELAY_ON,RELAY_OFF,SHUTDOWN,CONFIG_CHANGE,SENSOR_ERROR,SENSOR_RESTORED)
// @Param        limit query   int     false  "Only the newest N matches, 1..1000"
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
func (h *Handler) getLogs(c *gin.Context) {
	var q logQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := q.filter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Range order, event type and limit are validated by the service.
	events, err := h.services.EventLog.List(c.Request.Context(), f)
	if err != nil {
		h.writeServiceError(c, errLoadLogs, "logs_list_failed", err, "from", f.From, "to", f.To, "type", f.Type, "limit", f.Limit)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

var errQueryTime = errors.New("expected RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'")

// parseQueryTime accepts the layouts in queryTimeLayouts and returns UTC.
// Layouts without a zone are read as UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range queryTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q: %w", s, errQueryTime)
}

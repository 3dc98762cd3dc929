package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"thermo_relay/internal/service"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK            = "ok"
	statusConfigUpdated = "config_updated"

	errUpdateConfig    = "failed to update configuration"
	errControl         = "failed to apply control action"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// writeServiceError maps controller errors to HTTP codes: caller mistakes
// are 400, a latched shutdown is 409, everything else is 500.
func (h *Handler) writeServiceError(c *gin.Context, userMsg, logKey string, err error, kv ...interface{}) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidConfig),
		errors.Is(err, service.ErrUnknownAction),
		errors.Is(err, service.ErrInvalidFilter):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrShutdownLatched):
		code = http.StatusConflict
	}
	if code != http.StatusInternalServerError {
		if h.log != nil {
			h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	h.logAndJSONError(c, code, userMsg, logKey, err, kv...)
}

// ConfigRequest is the configuration update payload.
type ConfigRequest struct {
	// Relay energizes at or below this temperature (°C)
	TempLow *float64 `json:"temp_low" binding:"required" example:"60"`
	// Relay de-energizes at or above this temperature (°C)
	TempHigh *float64 `json:"temp_high" binding:"required" example:"70"`
	// Seconds between sensor reads (1..60)
	CheckInterval *int `json:"check_interval" binding:"required" example:"5"`
}

// ControlRequest is the operator action payload.
type ControlRequest struct {
	// One of: start, stop, relay_on, relay_off
	Action string `json:"action" binding:"required" example:"stop"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Controller status
// @Description  Consistent snapshot of temperature, relay, state, counters and configuration
// @Tags         controller
// @Produce      json
// @Success      200  {object}  models.StatusView
// @Router       /api/v1/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.GetStatus(c.Request.Context()))
}

// @Summary      Current configuration
// @Tags         controller
// @Produce      json
// @Success      200  {object}  models.Configuration
// @Router       /api/v1/config [get]
func (h *Handler) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.GetConfig())
}

// @Summary      Update configuration
// @Description  Thresholds must satisfy min_temp <= temp_low < temp_high <= max_temp; check_interval 1..60
// @Tags         controller
// @Accept       json
// @Produce      json
// @Param        body  body      ConfigRequest  true  "Configuration payload"
// @Success      200   {object}  map[string]interface{}  "status, config"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/config [post]
// @Security     BearerAuth
func (h *Handler) updateConfig(c *gin.Context) {
	var req ConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	params := service.ConfigParams{
		TempLow:       *req.TempLow,
		TempHigh:      *req.TempHigh,
		CheckInterval: *req.CheckInterval,
	}
	if err := h.services.Controller.UpdateConfig(c.Request.Context(), params); err != nil {
		h.writeServiceError(c, errUpdateConfig, "config_update_failed", err,
			"temp_low", params.TempLow, "temp_high", params.TempHigh, "check_interval", params.CheckInterval)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusConfigUpdated,
		"config": h.services.Monitoring.GetConfig(),
	})
}

// @Summary      Sample history
// @Description  Most recent samples, oldest first
// @Tags         controller
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, points"
// @Router       /api/v1/history [get]
func (h *Handler) getHistory(c *gin.Context) {
	points := h.services.Monitoring.GetHistory()
	c.JSON(http.StatusOK, gin.H{
		"count":  len(points),
		"points": points,
	})
}

// @Summary      Control the controller
// @Description  start re-arms after an emergency shutdown; relay_on is refused while shut down
// @Tags         controller
// @Accept       json
// @Produce      json
// @Param        body  body      ControlRequest  true  "Action payload"
// @Success      200   {object}  map[string]interface{}  "status, action, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/control [post]
// @Security     BearerAuth
func (h *Handler) control(c *gin.Context) {
	var req ControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	action := service.Action(req.Action)
	if err := h.services.Controller.Control(ctx, action); err != nil {
		h.writeServiceError(c, errControl, "control_failed", err, "action", req.Action)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
		"action": action,
		"state":  h.services.Monitoring.GetStatus(ctx),
	})
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"boiler_controller/internal/control"
	"boiler_controller/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK          = "ok"
	statusModeSet     = "mode_set"
	statusUpdated     = "updated"
	statusApplied     = "applied"
	statusIgniting    = "ignition_started"
	statusReset       = "reset"
	statusSensorReset = "sensors_reset"
	statusRemapped    = "remapped"

	errGetState        = "failed to load state"
	errGetSettings     = "failed to load settings"
	errSensorReset     = "failed to reset sensors"
	errLoopUnavailable = "controller is not running"
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

// commandError answers a rejected command. Rejections by the controller are
// the caller's problem; an unavailable loop is ours.
func (h *Handler) commandError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	kv = append(kv, "user_id", operator(c))
	switch {
	case errors.Is(err, service.ErrLoopStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		h.logAndJSONError(c, http.StatusServiceUnavailable, errLoopUnavailable, logKey, err, kv...)
	case errors.Is(err, control.ErrIgnitionUnavailable),
		errors.Is(err, control.ErrHomeSensorOffline),
		errors.Is(err, control.ErrSystemDisabled):
		if h.log != nil {
			h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		if h.log != nil {
			h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	if h.log != nil {
		h.log.Infow("operator_command", "path", c.FullPath(), "status", status, "user_id", operator(c))
	}
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.GetState(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// SetModeRequest selects the operating mode.
type SetModeRequest struct {
	// auto or comfort
	Mode string `json:"mode" binding:"required" example:"comfort"`
}

// ControlRequest applies or releases a manual actuator override.
type ControlRequest struct {
	// fan or pump
	Device string `json:"device" binding:"required" example:"fan"`
	// Desired output; ignored when manual is false
	State bool `json:"state" example:"true"`
	// false returns the device to automatic control
	Manual *bool `json:"manual" binding:"required" example:"true"`
}

// SystemRequest enables or disables the controller outputs.
type SystemRequest struct {
	Enabled *bool `json:"enabled" binding:"required" example:"true"`
}

// CoalFeedingRequest starts or stops a coal feeding pause.
type CoalFeedingRequest struct {
	Active *bool `json:"active" binding:"required" example:"true"`
}

// SensorMappingRequest assigns probe addresses to sensor roles.
type SensorMappingRequest struct {
	Mapping map[string]string `json:"mapping" binding:"required"`
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

// @Summary      Get boiler state
// @Tags         boiler
// @Produce      json
// @Success      200  {object}  boiler_controller.BoilerState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/boiler/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "boiler_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Set mode
// @Description  comfort requires a live home temperature sensor
// @Tags         boiler
// @Accept       json
// @Produce      json
// @Param        body  body      SetModeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/boiler/mode [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req SetModeRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.Boiler.SetMode(c.Request.Context(), req.Mode); err != nil {
		h.commandError(c, "boiler_set_mode_failed", err, "mode", req.Mode)
		return
	}
	h.respondWithStatusAndState(c, statusModeSet, gin.H{"mode": req.Mode})
}

// @Summary      Get Auto mode settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  control.AutoParams
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/boiler/settings/auto [get]
// @Security     BearerAuth
func (h *Handler) getAutoSettings(c *gin.Context) {
	p, err := h.services.Boiler.AutoSettings(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusServiceUnavailable, errGetSettings, "auto_settings_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Update Auto mode settings
// @Description  Fields left out of the body keep their current value
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      control.AutoParams  true  "Auto settings"
// @Success      200   {object}  control.AutoParams
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/boiler/settings/auto [put]
// @Security     BearerAuth
func (h *Handler) updateAutoSettings(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.services.Boiler.AutoSettings(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusServiceUnavailable, errGetSettings, "auto_settings_get_failed", err)
		return
	}
	if ok := h.bindJSONOrBadRequest(c, &p); !ok {
		return
	}
	if err := h.services.Boiler.UpdateAutoSettings(ctx, p); err != nil {
		h.commandError(c, "auto_settings_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Get Comfort mode settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  control.ComfortParams
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/boiler/settings/comfort [get]
// @Security     BearerAuth
func (h *Handler) getComfortSettings(c *gin.Context) {
	p, err := h.services.Boiler.ComfortSettings(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusServiceUnavailable, errGetSettings, "comfort_settings_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Update Comfort mode settings
// @Description  Fields left out of the body keep their current value
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      control.ComfortParams  true  "Comfort settings"
// @Success      200   {object}  control.ComfortParams
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/boiler/settings/comfort [put]
// @Security     BearerAuth
func (h *Handler) updateComfortSettings(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.services.Boiler.ComfortSettings(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusServiceUnavailable, errGetSettings, "comfort_settings_get_failed", err)
		return
	}
	if ok := h.bindJSONOrBadRequest(c, &p); !ok {
		return
	}
	if err := h.services.Boiler.UpdateComfortSettings(ctx, p); err != nil {
		h.commandError(c, "comfort_settings_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Manual actuator control
// @Description  manual=true forces the device for the override window; manual=false releases it
// @Tags         boiler
// @Accept       json
// @Produce      json
// @Param        body  body      ControlRequest  true  "Control payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/boiler/control [post]
// @Security     BearerAuth
func (h *Handler) setControl(c *gin.Context) {
	var req ControlRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	p := service.ControlParams{Device: req.Device, State: req.State, Manual: *req.Manual}
	if err := h.services.Boiler.SetControl(c.Request.Context(), p); err != nil {
		h.commandError(c, "boiler_control_failed", err, "device", req.Device)
		return
	}
	h.respondWithStatusAndState(c, statusApplied, gin.H{"device": req.Device})
}

// @Summary      Enable or disable the system
// @Tags         boiler
// @Accept       json
// @Produce      json
// @Param        body  body      SystemRequest  true  "System payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/boiler/system [post]
// @Security     BearerAuth
func (h *Handler) setSystem(c *gin.Context) {
	var req SystemRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.Boiler.SetSystemEnabled(c.Request.Context(), *req.Enabled); err != nil {
		h.commandError(c, "boiler_system_failed", err, "enabled", *req.Enabled)
		return
	}
	h.respondWithStatusAndState(c, statusApplied, gin.H{"enabled": *req.Enabled})
}

// @Summary      Start ignition
// @Description  Only after the fire went out or a previous ignition failed
// @Tags         boiler
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/boiler/ignition [post]
// @Security     BearerAuth
func (h *Handler) startIgnition(c *gin.Context) {
	if err := h.services.Boiler.StartIgnition(c.Request.Context()); err != nil {
		h.commandError(c, "boiler_ignition_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusIgniting, gin.H{})
}

// @Summary      Reset faults
// @Tags         boiler
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/boiler/reset [post]
// @Security     BearerAuth
func (h *Handler) resetFaults(c *gin.Context) {
	if err := h.services.Boiler.ResetFaults(c.Request.Context()); err != nil {
		h.commandError(c, "boiler_reset_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusReset, gin.H{})
}

// @Summary      Start or stop coal feeding
// @Tags         boiler
// @Accept       json
// @Produce      json
// @Param        body  body      CoalFeedingRequest  true  "Coal feeding payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/boiler/coal-feeding [post]
// @Security     BearerAuth
func (h *Handler) setCoalFeeding(c *gin.Context) {
	var req CoalFeedingRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.Boiler.SetCoalFeeding(c.Request.Context(), *req.Active); err != nil {
		h.commandError(c, "coal_feeding_failed", err, "active", *req.Active)
		return
	}
	h.respondWithStatusAndState(c, statusApplied, gin.H{"active": *req.Active})
}

// @Summary      Power-cycle the sensor bus
// @Tags         sensors
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/boiler/sensors/reset [post]
// @Security     BearerAuth
func (h *Handler) resetSensors(c *gin.Context) {
	err := h.services.Boiler.ResetSensors(c.Request.Context())
	switch {
	case errors.Is(err, service.ErrLoopStopped):
		h.commandError(c, "sensor_reset_failed", err)
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errSensorReset, "sensor_reset_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusSensorReset, gin.H{})
}

// @Summary      Remap sensor roles
// @Description  Keys are supply, return, boiler or outdoor; values are probe addresses
// @Tags         sensors
// @Accept       json
// @Produce      json
// @Param        body  body      SensorMappingRequest  true  "Mapping payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/boiler/sensors/mapping [put]
// @Security     BearerAuth
func (h *Handler) remapSensors(c *gin.Context) {
	var req SensorMappingRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.Boiler.RemapSensors(c.Request.Context(), req.Mapping); err != nil {
		h.commandError(c, "sensor_remap_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusRemapped, gin.H{})
}

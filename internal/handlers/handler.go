package handlers

import (
	"boiler_controller/internal/logger"
	"boiler_controller/internal/metrics"
	"boiler_controller/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewHandler constructs a new HTTP handler with dependencies. Metrics may be nil.
func NewHandler(services *service.Service, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{services: services, log: log, metrics: m}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.metrics.GinMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// state stream on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerBoilerRoutes(api)
		api.GET("/logs", h.getLogs)
	}
}

func (h *Handler) registerBoilerRoutes(api *gin.RouterGroup) {
	boiler := api.Group("/boiler")
	{
		boiler.GET("/state", h.getState)
		boiler.POST("/mode", h.setMode)

		boiler.GET("/settings/auto", h.getAutoSettings)
		boiler.PUT("/settings/auto", h.updateAutoSettings)
		boiler.GET("/settings/comfort", h.getComfortSettings)
		boiler.PUT("/settings/comfort", h.updateComfortSettings)

		// Body example: {"device":"fan","state":true,"manual":true}
		boiler.POST("/control", h.setControl)
		boiler.POST("/system", h.setSystem)
		boiler.POST("/ignition", h.startIgnition)
		boiler.POST("/reset", h.resetFaults)
		boiler.POST("/coal-feeding", h.setCoalFeeding)

		boiler.POST("/sensors/reset", h.resetSensors)
		boiler.PUT("/sensors/mapping", h.remapSensors)
	}
}

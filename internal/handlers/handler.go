package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"thermo_relay/internal/logger"
	"thermo_relay/internal/service"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services    *service.Service
	log         *logger.Logger
	authEnabled bool
}

// Option customizes a Handler.
type Option func(*Handler)

// WithAuth requires a bearer token on the mutating routes.
func WithAuth(enabled bool) Option {
	return func(h *Handler) { h.authEnabled = enabled }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Web page and the minimal liveness page
	h.registerPageRoutes(router)

	// Auth endpoints exist only when tokens are enforced
	if h.authEnabled {
		h.registerAuthRoutes(router)
	}

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Live status stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	r.GET("/", h.indexPage)
	r.POST("/", h.protect(), h.submitConfigForm)
	r.GET("/test", h.testPage)
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/status", h.getStatus)
		api.GET("/config", h.getConfig)
		api.GET("/history", h.getHistory)
		h.registerLogRoutes(api)

		// Body example: {"temp_low":60,"temp_high":70,"check_interval":5}
		api.POST("/config", h.protect(), h.updateConfig)
		// Body example: {"action":"stop"}
		api.POST("/control", h.protect(), h.control)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
		logs.GET("/", h.getLogs)
	}
}

// protect returns the token check when auth is enabled and a pass-through otherwise.
func (h *Handler) protect() gin.HandlerFunc {
	if h.authEnabled {
		return h.operatorMiddleware
	}
	return func(c *gin.Context) { c.Next() }
}

package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/tracing"
)

// RouterConfig selects the optional middleware
type RouterConfig struct {
	Development      bool
	CORS             middleware.CORSConfig
	RateLimitEnabled bool
	RateLimit        middleware.RateLimitConfig
	// Tracer is optional
	Tracer *tracing.Tracer
}

// NewRouter builds the gin engine serving h
func NewRouter(h *Handlers, metrics *monitoring.Metrics, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(cfg.Tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimitEnabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(monitoring.Handler(metrics)))

	// Mirrored state
	router.GET("/state", h.State)
	router.GET("/components/:id", h.GetComponent)
	router.GET("/windows/:window/controls/:control", h.GetControl)

	// Commands
	router.POST("/actions", h.SendAction)
	router.POST("/windows/:window/controls/:control/activate", h.Activate)
	router.POST("/view/navigate", h.Navigate)
	router.POST("/view/popup", h.Popup)
	router.POST("/view/close", h.CloseView)
	router.POST("/visibility", h.SetVisibility)

	return router
}

package v1

import (
	"context"
	"time"

	"portfolio-backend/config"
	"portfolio-backend/internal/content"
	"portfolio-backend/internal/delivery/http/middleware"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/usecase"
	"portfolio-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC domain.ContactUsecase
	HealthUC  usecase.HealthUsecase
	Portfolio *content.Portfolio
	Events    *security.SecurityLogger
	Metrics   prometheus.Gatherer // nil disables /metrics
	Config    *config.Config
	Context   context.Context // ends background sweepers on shutdown
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(middleware.CORSConfig{
		FrontendURL: cfg.FrontendURL,
		Production:  cfg.IsProduction(),
	})) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	globalLimit := middleware.DefaultRateLimitConfig(cfg.RateLimitGlobalThreshold, window)
	globalLimit.Context = deps.Context
	v1.Use(middleware.RateLimitMiddleware(globalLimit))

	NewHealthHandler(v1, deps.HealthUC)

	// Public routes
	contact := v1.Group("")
	contact.Use(middleware.CSRFMiddleware(middleware.CSRFConfig{Secure: cfg.IsProduction(), Events: deps.Events}))
	contactLimit := middleware.ContactRateLimitConfig(cfg.RateLimitContactThreshold, window)
	contactLimit.Context = deps.Context
	submitLimit := middleware.RateLimitMiddleware(contactLimit)
	NewContactHandler(contact, deps.ContactUC, submitLimit, cfg.IsProduction())
	if deps.Portfolio != nil {
		NewPortfolioHandler(v1, deps.Portfolio)
	}

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AdminAuthMiddleware(cfg.AdminJWTSecret, deps.Events))
	{
		NewAdminHandler(protected, deps.ContactUC)
	}

	return r
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AnhAnhii/veterans-verify-system/internal/api/handlers"
	"github.com/AnhAnhii/veterans-verify-system/internal/api/middleware"
	"github.com/AnhAnhii/veterans-verify-system/internal/config"
	"github.com/AnhAnhii/veterans-verify-system/internal/logger"
	"github.com/AnhAnhii/veterans-verify-system/internal/services"
)

// Dependencies are the services the public API is built on.
type Dependencies struct {
	Profiles      services.IProfileService
	Verifications services.IVerificationService
	History       services.IHistoryService
	Lookups       services.ILookupService
	APILogs       middleware.APILogRecorder // optional
	Log           *zap.Logger
}

// SetupRouter configures and returns the main Gin engine.
// stop ends the rate limiter's background sweep.
func SetupRouter(cfg *config.Config, deps Dependencies, stop <-chan struct{}) *gin.Engine {
	log := logger.Named(deps.Log, "api")

	r := gin.New()
	r.MaxMultipartMemory = int64(cfg.DocumentMaxSizeMB+1) << 20

	// Apply global middleware first (order matters)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.AccessLogMiddleware(log, deps.APILogs))
	r.Use(middleware.CORSMiddleware(cfg.CorsOrigins))

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg, log, stop)
	ipLimiter := middleware.NewRateLimiterMiddleware(cfg, log, stop)

	healthHandler := handlers.NewHealthHandler(cfg)
	verifyHandler := handlers.NewVerifyHandler(deps.Verifications, cfg.DocumentMaxSizeMB)
	lookupHandler := handlers.NewLookupHandler(deps.Lookups)
	historyHandler := handlers.NewHistoryHandler(deps.History, cfg.HistoryExportMaxRecords)

	// Public routes are limited per client IP.
	r.GET("/", ipLimiter.LimitByIP(), healthHandler.Root)
	r.GET("/health", ipLimiter.LimitByIP(), healthHandler.Health)

	// Authenticated routes are limited per client IP before auth, then per profile.
	apiGroup := r.Group("/api")
	apiGroup.Use(
		ipLimiter.LimitByIP(),
		middleware.AuthMiddleware(deps.Profiles, cfg.JwtSecret, log),
		rateLimiter.Limit(),
	)
	{
		verify := apiGroup.Group("/verify")
		verify.POST("/create", verifyHandler.Create)
		verify.POST("/submit", verifyHandler.Submit)
		verify.GET("/:id/status", verifyHandler.Status)
		verify.POST("/:id/document", verifyHandler.UploadDocument)

		lookup := apiGroup.Group("/lookup")
		lookup.GET("/grave", lookupHandler.Grave)
		lookup.GET("/vlm", lookupHandler.VLM)
		lookup.GET("/army", lookupHandler.Army)
		lookup.GET("/aggregate", lookupHandler.Aggregate)

		apiGroup.GET("/history", historyHandler.List)
		apiGroup.GET("/history/export", historyHandler.Export)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
	})

	return r
}

// SetupServiceRouter configures the operator engine bound to the service port.
func SetupServiceRouter(
	cfg *config.Config,
	profiles services.IProfileService,
	lookups services.ILookupService,
	shutdownChan chan<- struct{},
	log *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AccessLogMiddleware(logger.Named(log, "service-api"), nil))

	serviceApiHandler := handlers.NewServiceApiHandler(cfg, profiles, lookups, shutdownChan, log)
	r.POST("/api", serviceApiHandler.HandleRequest)

	return r
}

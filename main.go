package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/AnhAnhii/veterans-verify-system/internal/api"
	"github.com/AnhAnhii/veterans-verify-system/internal/cache"
	"github.com/AnhAnhii/veterans-verify-system/internal/config"
	"github.com/AnhAnhii/veterans-verify-system/internal/db"
	"github.com/AnhAnhii/veterans-verify-system/internal/logger"
	"github.com/AnhAnhii/veterans-verify-system/internal/lookup"
	"github.com/AnhAnhii/veterans-verify-system/internal/provider"
	"github.com/AnhAnhii/veterans-verify-system/internal/services"
	"github.com/AnhAnhii/veterans-verify-system/internal/storage"
	"github.com/AnhAnhii/veterans-verify-system/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default)")

func main() {
	flag.Parse()

	log, err := logger.New(logger.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	switch cfg.RunMode {
	case "api", "bg", "all":
	default:
		log.Fatal("invalid run mode", zap.String("mode", cfg.RunMode))
	}
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Error("error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx, mongoDb); err != nil {
		log.Fatal("failed to ensure indexes", zap.Error(err))
	}
	cancelIndex()

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Error("error disconnecting from Redis", zap.Error(err))
		}
	}()

	documentStorage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal("failed to initialize S3 storage", zap.Error(err))
	}

	verificationProvider := provider.NewSheerIDClient(cfg, log)
	if !verificationProvider.Enabled() {
		log.Warn("verification provider not configured; submissions will be stored and marked processing")
	}

	// Task client and enqueuer are shared by the API and the worker.
	taskClient := tasks.NewClient(redisClient)
	defer func() {
		if err := taskClient.Close(); err != nil {
			log.Error("error closing task client", zap.Error(err))
		}
	}()
	enqueuer := tasks.NewEnqueuer(taskClient, cfg)

	// Initialize Services
	profileService := services.NewProfileService(mongoDb, log)
	verificationService := services.NewVerificationService(mongoDb, cfg, verificationProvider, documentStorage, enqueuer, log)
	historyService := services.NewHistoryService(mongoDb)
	lookupService := services.NewLookupService(
		lookup.NewRegistries(cfg),
		cache.NewLookupCache(redisClient, cfg.LookupCacheTTL),
		cfg.AggregateTimeout,
		log,
	)
	apiLogService := services.NewAPILogService(mongoDb)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)
	// Closed on shutdown to stop background sweeps.
	stop := make(chan struct{})

	// Start Service API (always runs)
	serviceSrv := &http.Server{
		Addr:              ":" + cfg.ServiceApiPort,
		Handler:           api.SetupServiceRouter(cfg, profileService, lookupService, shutdownChan, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("service API listening", zap.String("addr", serviceSrv.Addr))
		if err := serviceSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("service API ListenAndServe error", zap.Error(err))
		}
		log.Info("service API server stopped")
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server
	var scheduler *tasks.Scheduler

	log.Info("starting application", zap.String("mode", cfg.RunMode), zap.String("version", cfg.AppVersion))

	apiMode := func() {
		router := api.SetupRouter(cfg, api.Dependencies{
			Profiles:      profileService,
			Verifications: verificationService,
			History:       historyService,
			Lookups:       lookupService,
			APILogs:       enqueuer,
			Log:           log,
		}, stop)
		mainApiSrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("main API listening", zap.String("addr", mainApiSrv.Addr))
			if err := mainApiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal("main API ListenAndServe error", zap.Error(err))
			}
			log.Info("main API server stopped")
		}()
	}

	bgMode := func() {
		processor := tasks.NewTaskProcessor(cfg, verificationService, apiLogService, enqueuer, log)
		var mux *asynq.ServeMux
		backgroundTaskSrv, mux = tasks.SetupServer(redisClient, processor)
		if err := backgroundTaskSrv.Start(mux); err != nil {
			log.Fatal("background task server error", zap.Error(err))
		}
		log.Info("background task server started")

		scheduler, err = tasks.NewScheduler(cfg.ExpirySweepCron, enqueuer, log)
		if err != nil {
			log.Fatal("failed to create scheduler", zap.Error(err))
		}
		scheduler.Start()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case <-shutdownChan:
		log.Info("shutdown requested via service API")
	}
	close(stop)

	// Create context with timeout for shutdown
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Error("service API server shutdown error", zap.Error(err))
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Error("main API server shutdown error", zap.Error(err))
		}
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	if backgroundTaskSrv != nil {
		backgroundTaskSrv.Shutdown()
	}

	// Wait for all server goroutines to finish
	wg.Wait()
	log.Info("server gracefully stopped")
}

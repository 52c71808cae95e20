package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"yield-ledger/internal/auth"
	"yield-ledger/internal/config"
	"yield-ledger/internal/database"
	"yield-ledger/internal/handlers"
	"yield-ledger/internal/jobs"
	"yield-ledger/internal/logging"
	"yield-ledger/internal/middleware"
	"yield-ledger/internal/repository"
	"yield-ledger/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, cleanup, err := logging.Init(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer cleanup()

	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := repository.NewRepository(db)

	catalog, err := config.LoadCatalog(cfg.App.CatalogFile)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	if err := database.SeedCatalog(ctx, repo, catalog); err != nil {
		logger.Fatal("Failed to seed catalog", zap.Error(err))
	}

	svc := services.New(repo, services.Options{
		CommissionRate: cfg.App.CommissionRate,
	})

	// Optional background maturity sweep
	var sweepJob *jobs.MaturitySweepJob
	if cfg.Jobs.MaturitySweepInterval > 0 {
		rdb := database.InitRedis(ctx, cfg.Redis)
		if rdb != nil {
			defer rdb.Close()
		}
		sweepJob = jobs.NewMaturitySweepJob(svc.Maturity, rdb, cfg.Jobs.SweepBatchSize, cfg.Jobs.MaturitySweepInterval)
		sweepJob.Start(cfg.Jobs.MaturitySweepInterval)
	}

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	go limiter.RunCleanup(ctx)

	// Set up Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.RegisterRoutes(router, svc, middleware.RateLimit(limiter))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if sweepJob != nil {
		sweepJob.Stop()
	}

	logger.Info("Server exited")
}

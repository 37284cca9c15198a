package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/application/partnersync"
	"github.com/pms/backend/internal/application/syncqueue"
	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/infrastructure/config"
	"github.com/pms/backend/internal/infrastructure/directory"
	"github.com/pms/backend/internal/infrastructure/logger"
	"github.com/pms/backend/internal/infrastructure/persistence/models"
	"github.com/pms/backend/internal/infrastructure/queue"
	"github.com/pms/backend/internal/interfaces/http/handler"
	"github.com/pms/backend/internal/interfaces/http/middleware"
	"github.com/pms/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting partner sync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env))

	gormLevel := logger.MapGormLogLevel(cfg.Log.Level)

	// Central tenant directory
	directoryDB, err := gorm.Open(postgres.Open(cfg.Directory.DSN), &gorm.Config{
		Logger: logger.NewGormLogger(log, gormLevel),
	})
	if err != nil {
		log.Fatal("Failed to connect to tenant directory", zap.Error(err))
	}
	if err := directoryDB.AutoMigrate(&models.TenantModel{}); err != nil {
		log.Fatal("Failed to provision tenant directory schema", zap.Error(err))
	}

	dir := directory.NewGormDirectory(directoryDB)
	resolver := directory.NewResolver(dir)

	// Per-tenant database pool
	pool := directory.NewConnectionPool(
		directory.NewDSNBuilder(cfg.Database),
		func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{
				Logger: logger.NewGormLogger(log, gormLevel),
			})
		},
		log,
	)
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warn("Failed to close tenant connections", zap.Error(err))
		}
	}()

	// Operation handlers
	registry := queue.NewRegistry()
	partnersync.RegisterAll(registry, partnersync.NopLedgerPoster{})

	// Optional duplicate suppression
	var dedup shared.DedupStore
	if cfg.Sync.DedupEnabled {
		dedup, err = queue.NewRedisDedupStore(cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect dedup guard", zap.Error(err))
		}
		defer func() { _ = dedup.Close() }()
		log.Info("Dedup guard enabled", zap.Duration("ttl", cfg.Sync.DedupTTL))
	}

	defaults := cfg.Sync.QueueDefaults()
	enqueuer := queue.NewEnqueuer(resolver, pool, defaults)
	dispatcher := queue.NewDispatcher(enqueuer, resolver, pool, registry)
	inspection := syncqueue.NewService(resolver, pool, defaults, cfg.Sync.MaxAttempts, log)

	worker := queue.NewWorker(dir, pool, registry, dedup, queue.WorkerConfig{
		Interval:    time.Duration(cfg.Sync.WorkerIntervalSeconds) * time.Second,
		MaxAttempts: cfg.Sync.MaxAttempts,
		Defaults:    defaults,
		Dedup:       shared.DedupConfig{TTL: cfg.Sync.DedupTTL, Enabled: cfg.Sync.DedupEnabled},
	}, log)
	if err := worker.Start(context.Background()); err != nil {
		log.Fatal("Failed to start sync worker", zap.Error(err))
	}

	mode := gin.ReleaseMode
	if cfg.App.Env != "production" {
		mode = gin.DebugMode
	}
	engine := router.New(router.Config{
		Mode:   mode,
		CORS:   middleware.DefaultCORSConfig(),
		Logger: log,
	},
		handler.NewSyncHandler(dispatcher, inspection),
		handler.NewSystemHandler(directoryDB),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := worker.Stop(ctx); err != nil {
		log.Error("Worker shutdown failed", zap.Error(err))
	}

	log.Info("Shutdown complete")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"signoff-api/internal/client"
	"signoff-api/internal/config"
	"signoff-api/internal/database"
	"signoff-api/internal/job"
	"signoff-api/internal/metrics"
	"signoff-api/internal/notifier"
	"signoff-api/internal/repository"
	"signoff-api/internal/router"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Signoff API",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
	)

	db, err := database.New(database.Config{
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	if err := database.AutoMigrateWithRetry(db, logger, 5); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	m := metrics.NewWithLogger(logger)
	database.RegisterMetricsCallbacks(db, m)
	statsDone := database.StartDBStatsCollector(db, m)
	defer close(statsDone)

	businessCollector := metrics.NewBusinessMetricsCollector(db, m, logger)
	businessCollector.Start()
	defer businessCollector.Stop()

	// S3 is optional at boot. Without it the API still serves project
	// and decision flows; upload endpoints return storage errors.
	var s3Client client.S3ClientInterface
	if cfg.S3.Bucket != "" && cfg.S3.Region != "" {
		s3, err := client.NewS3Client(&cfg.S3)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, file features disabled", zap.Error(err))
		} else {
			s3Client = s3
			logger.Info("S3 client initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region),
			)
		}
	} else {
		logger.Warn("S3 configuration incomplete, file features disabled")
	}

	// Initialize redis and the event notifier. The service works
	// without redis; live updates are simply off.
	var eventNotifier notifier.Notifier = notifier.NoopNotifier{}
	var redisNotifier *notifier.RedisNotifier
	redisClient, err := database.NewRedis(cfg.Redis)
	if err != nil {
		logger.Warn("Failed to connect to redis, live updates disabled", zap.Error(err))
	} else {
		redisNotifier = notifier.NewRedisNotifier(redisClient, logger)
		eventNotifier = redisNotifier
		logger.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}

	// Schedule the orphaned object sweep
	scheduler := cron.New()
	if s3Client != nil {
		cleanupJob := job.NewCleanupJob(repository.NewOrphanedObjectRepository(db), s3Client, logger, m)
		if _, err := scheduler.AddJob("@every 15m", cleanupJob); err != nil {
			logger.Error("Failed to schedule cleanup job", zap.Error(err))
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := router.Setup(router.Config{
		DB:             db,
		Logger:         logger,
		Metrics:        m,
		S3Client:       s3Client,
		Notifier:       eventNotifier,
		RedisNotifier:  redisNotifier,
		Upload:         cfg.Upload,
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Signoff API started successfully",
			zap.String("address", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		redisClient.Close()
	}
	if err := database.Close(db); err != nil {
		logger.Error("Failed to close database", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// initLogger builds a JSON zap logger at the configured level.
// Unrecognized levels fall back to info.
func initLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

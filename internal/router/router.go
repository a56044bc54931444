package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"signoff-api/internal/client"
	"signoff-api/internal/config"
	"signoff-api/internal/database"
	"signoff-api/internal/handler"
	"signoff-api/internal/metrics"
	"signoff-api/internal/middleware"
	"signoff-api/internal/notifier"
	"signoff-api/internal/repository"
	"signoff-api/internal/service"
)

// Config holds router configuration
type Config struct {
	DB             *gorm.DB
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	S3Client       client.S3ClientInterface
	Notifier       notifier.Notifier
	RedisNotifier  *notifier.RedisNotifier
	Upload         config.UploadConfig
	BasePath       string
	AllowedOrigins []string
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	if cfg.Notifier == nil {
		cfg.Notifier = notifier.NoopNotifier{}
	}

	// Middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "signoff-api"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if cfg.DB == nil || database.Ping(cfg.DB) != nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "signoff-api"})
			return
		}
		c.JSON(200, gin.H{"status": "ready", "service": "signoff-api"})
	})

	// Services
	projectService := service.NewProjectService(cfg.DB, cfg.S3Client, cfg.Notifier, cfg.Logger, cfg.Metrics)
	storageService := service.NewStorageService(cfg.DB, cfg.S3Client, cfg.Notifier, cfg.Logger, cfg.Metrics, cfg.Upload)
	resolver := service.NewTokenResolver(repository.NewProjectRepository(cfg.DB))

	// Handlers
	projectHandler := handler.NewProjectHandler(projectService)
	storageHandler := handler.NewStorageHandler(storageService)
	wsHandler := handler.NewWSHandler(resolver, cfg.RedisNotifier, cfg.Logger)

	adminAuth := middleware.AdminAuth(resolver)

	// API routes group
	api := r.Group(cfg.BasePath)

	projects := api.Group("/projects")
	{
		// Project creation is the only unauthenticated write
		projects.POST("", projectHandler.CreateProject)

		// Public link routes, authorized by the token in the path
		projects.GET("/view/:token", projectHandler.GetPublicView)
		projects.POST("/:token/status", projectHandler.SubmitDecision)
		projects.GET("/:token/events", wsHandler.HandleEvents)

		// Admin routes, authorized by the Bearer admin token
		admin := projects.Group("")
		admin.Use(adminAuth)
		{
			admin.GET("/admin", projectHandler.GetAdminView)
			admin.PATCH("/expiration", projectHandler.ExtendExpiration)
			admin.DELETE("", projectHandler.DeleteProject)
		}
	}

	storage := api.Group("/storage")
	storage.Use(adminAuth)
	{
		storage.POST("/sign-url", storageHandler.SignUploadURL)
		storage.POST("/confirm", storageHandler.ConfirmUpload)
		storage.GET("/files", storageHandler.ListFiles)
		storage.GET("/download/:id", storageHandler.GetDownloadURL)
		storage.DELETE("/files/:id", storageHandler.DeleteFile)
	}

	return r
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/resolveit/complaints-api/api/swagger"
	"github.com/resolveit/complaints-api/internal/handler"
	"github.com/resolveit/complaints-api/internal/middleware"
	"github.com/resolveit/complaints-api/internal/models"
	"github.com/resolveit/complaints-api/internal/repository"
	"github.com/resolveit/complaints-api/internal/service"
	"github.com/resolveit/complaints-api/pkg/cache"
	"github.com/resolveit/complaints-api/pkg/config"
	"github.com/resolveit/complaints-api/pkg/database"
	"github.com/resolveit/complaints-api/pkg/jobs"
	"github.com/resolveit/complaints-api/pkg/logger"
	corsmiddleware "github.com/resolveit/complaints-api/pkg/middleware/cors"
	reqidmiddleware "github.com/resolveit/complaints-api/pkg/middleware/requestid"
	"github.com/resolveit/complaints-api/pkg/storage"
)

// @title ResolveIT Complaints API
// @version 1.0.0
// @description Grievance tracking with lifecycle state machine and automatic escalation
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	fileStore, err := storage.NewLocalStorage(cfg.Attachments.StorageDir, cfg.Attachments.MaxFileSizeBytes, cfg.Attachments.AllowedMIMEs)
	if err != nil {
		logr.Sugar().Fatalw("failed to init attachment storage", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	complaintRepo := repository.NewComplaintRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()
	metricsService := service.NewMetricsService()

	// Notification dispatch runs on a worker queue so complaint mutations
	// never block on fan-out.
	notificationService := service.NewNotificationService(notificationRepo, userRepo, metricsService, logr)
	dispatchQueue := jobs.NewQueue("notifications", notificationService.DispatchHandler(), jobs.QueueConfig{
		Workers:    cfg.Dispatch.Workers,
		BufferSize: cfg.Dispatch.BufferSize,
		MaxRetries: cfg.Dispatch.MaxRetries,
		RetryDelay: cfg.Dispatch.RetryDelay,
		Logger:     logr,
	})
	dispatchQueue.Start(ctx)
	defer dispatchQueue.Stop()

	publisher := service.NewQueuePublisher(dispatchQueue, logr)
	lifecycleService := service.NewLifecycleService(complaintRepo, publisher, logr)
	complaintService := service.NewComplaintService(complaintRepo, timelineRepo, userRepo, fileStore, lifecycleService, validate, logr)
	escalationService := service.NewEscalationService(complaintRepo, lifecycleService, cacheRepo, metricsService, cfg.Escalation, logr)
	reportService := service.NewReportService(reportRepo, complaintRepo, cacheRepo, cfg.Reports.CacheTTL, metricsService, logr)
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	go escalationService.Start(ctx)

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	complaintHandler := handler.NewComplaintHandler(complaintService)
	escalationHandler := handler.NewEscalationHandler(escalationService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	reportHandler := handler.NewReportHandler(reportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	complaints := api.Group("/complaints")
	{
		complaints.POST("/submit", middleware.JWT(authService), complaintHandler.Submit)
		complaints.POST("/submit/anonymous", complaintHandler.SubmitAnonymous)
		complaints.GET("/categories", complaintHandler.Categories)

		authed := complaints.Group("", middleware.JWT(authService))
		{
			authed.GET("/my", complaintHandler.My)
			authed.GET("/assigned", middleware.RequireRoles(models.RoleOfficer, models.RoleAdmin), complaintHandler.Assigned)
			authed.GET("/officers", middleware.RequireRoles(models.RoleAdmin), complaintHandler.Officers)
			authed.GET("/admin/all", middleware.RequireRoles(models.RoleAdmin), complaintHandler.All)
			authed.GET("/admin/escalated", middleware.RequireRoles(models.RoleAdmin), complaintHandler.Escalated)
			authed.GET("/admin/unresolved", middleware.RequireRoles(models.RoleAdmin), complaintHandler.Unresolved)

			authed.GET("/:id", complaintHandler.Get)
			authed.GET("/:id/timeline", complaintHandler.Timeline)
			authed.GET("/:id/attachment", complaintHandler.Attachment)
			authed.POST("/:id/notes", complaintHandler.AddNote)

			authed.PUT("/assign/:id", middleware.RequireRoles(models.RoleAdmin), complaintHandler.Assign)
			authed.PUT("/unassign/:id", middleware.RequireRoles(models.RoleAdmin), complaintHandler.Unassign)
			authed.PUT("/deadline/:id", middleware.RequireRoles(models.RoleOfficer, models.RoleAdmin), complaintHandler.UpdateDeadline)
			authed.PUT("/complete/:id", middleware.RequireRoles(models.RoleOfficer, models.RoleAdmin), complaintHandler.Complete)
			authed.PUT("/resolve/:id", middleware.RequireRoles(models.RoleAdmin), complaintHandler.Resolve)
			authed.PUT("/status/:id", middleware.RequireRoles(models.RoleAdmin), complaintHandler.UpdateStatus)
			authed.POST("/escalate/:id", middleware.RequireRoles(models.RoleAdmin), complaintHandler.Escalate)
			authed.PUT("/de-escalate/:id", middleware.RequireRoles(models.RoleAdmin), complaintHandler.DeEscalate)
		}
	}

	autoEscalation := api.Group("/auto-escalation")
	{
		autoEscalation.GET("/health", escalationHandler.Health)

		admin := autoEscalation.Group("", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
		{
			admin.POST("/trigger", escalationHandler.Trigger)
			admin.GET("/candidates", escalationHandler.Candidates)
			admin.GET("/stats", escalationHandler.Stats)
			admin.GET("/test/:id", escalationHandler.Test)
			admin.GET("/config", escalationHandler.GetConfig)
			admin.PUT("/config", escalationHandler.UpdateConfig)
		}
	}

	notifications := api.Group("/notifications", middleware.JWT(authService))
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.PUT("/read/:id", notificationHandler.MarkRead)
		notifications.PUT("/read-all", notificationHandler.MarkAllRead)
	}

	reports := api.Group("/reports", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	{
		reports.GET("/dashboard", reportHandler.Dashboard)
		reports.GET("/export/csv", reportHandler.ExportCSV)
		reports.GET("/export/pdf", reportHandler.ExportPDF)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

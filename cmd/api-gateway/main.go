package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/supply-desk-api/api/swagger"
	"github.com/noah-isme/supply-desk-api/internal/handler"
	"github.com/noah-isme/supply-desk-api/internal/middleware"
	"github.com/noah-isme/supply-desk-api/internal/repository"
	"github.com/noah-isme/supply-desk-api/internal/service"
	"github.com/noah-isme/supply-desk-api/internal/transport"
	"github.com/noah-isme/supply-desk-api/pkg/cache"
	"github.com/noah-isme/supply-desk-api/pkg/config"
	"github.com/noah-isme/supply-desk-api/pkg/database"
	"github.com/noah-isme/supply-desk-api/pkg/jobs"
	"github.com/noah-isme/supply-desk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/supply-desk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/supply-desk-api/pkg/middleware/requestid"
	"github.com/noah-isme/supply-desk-api/pkg/storage"
)

// @title Supply Desk API
// @version 1.0.0
// @description Request lifecycle engine for internal supply requests
// @BasePath /api/v1
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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	attachmentStore, err := storage.NewLocalStorage(cfg.Attachments.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init attachment storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Attachments.SignedURLSecret, cfg.Attachments.SignedURLTTL)

	requestRepo := repository.NewRequestRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	directorySvc := service.NewDirectoryService(
		participantRepo,
		service.NewRedisRosterCache(redisClient),
		cfg.Assignment.RosterCacheTTL,
		validator.New(),
		logr,
	)

	var policy service.SelectionPolicy
	switch cfg.Assignment.Policy {
	case service.PolicyRoundRobin:
		policy = service.NewRoundRobinPolicy(service.NewRedisSequenceCounter(redisClient))
	case service.PolicyLeastLoaded:
		policy = service.NewLeastLoadedPolicy(requestRepo)
	default:
		policy = service.ManualPolicy{}
	}
	assignmentSvc := service.NewAssignmentService(directorySvc, policy)

	courier := transport.NewWebhookCourier(cfg.Transport.GatewayURL, cfg.Transport.AuthToken, cfg.Transport.Timeout)

	var notificationSvc *service.NotificationService
	dispatchQueue := jobs.NewQueue("notifications", func(ctx context.Context, job jobs.Job) error {
		return notificationSvc.HandleJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})

	metricsSvc := service.NewMetricsService(func() float64 {
		return float64(dispatchQueue.Depth())
	})

	notificationSvc = service.NewNotificationService(
		notificationRepo,
		dispatchQueue,
		courier,
		cfg.Notifications.MaxRetries,
		metricsSvc,
		logr,
	)

	lifecycleOpts := []service.LifecycleOption{
		service.WithBroadcastClaim(cfg.Assignment.BroadcastClaim),
		service.WithTransitionObserver(metricsSvc),
	}
	if cfg.Assignment.Policy != service.PolicyManual {
		lifecycleOpts = append(lifecycleOpts, service.WithProposer(assignmentSvc))
	}
	lifecycleSvc := service.NewLifecycleService(requestRepo, directorySvc, notificationSvc, logr, lifecycleOpts...)

	identitySvc := service.NewIdentityService(cfg.Identity)
	exportSvc := service.NewExportService(requestRepo)
	attachmentSvc := service.NewAttachmentService(attachmentStore, cfg.Attachments, logr)

	queueCtx, queueCancel := context.WithCancel(context.Background())
	defer queueCancel()
	dispatchQueue.Start(queueCtx)
	defer dispatchQueue.Stop()
	attachmentSvc.StartCleanup(queueCtx)

	requestHandler := handler.NewRequestHandler(lifecycleSvc, assignmentSvc, notificationSvc)
	participantHandler := handler.NewParticipantHandler(directorySvc)
	attachmentHandler := handler.NewAttachmentHandler(attachmentStore, signer, cfg.Attachments.MaxFileSizeBytes)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc,
		func() error { return db.Ping() },
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		},
	)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authed := api.Group("")
	authed.Use(middleware.Identity(identitySvc))

	requests := authed.Group("/requests")
	{
		requests.POST("", requestHandler.Submit)
		requests.GET("", requestHandler.List)
		requests.GET("/:id", requestHandler.Get)
		requests.POST("/:id/assign", requestHandler.Assign)
		requests.POST("/:id/claim", requestHandler.Claim)
		requests.POST("/:id/start", requestHandler.Start)
		requests.POST("/:id/complete", requestHandler.Complete)
		requests.GET("/:id/candidates", requestHandler.Candidates)
		requests.GET("/:id/notifications", requestHandler.Notifications)
	}

	participants := authed.Group("/participants")
	{
		participants.POST("", participantHandler.Register)
		participants.GET("", participantHandler.List)
		participants.GET("/handlers", participantHandler.Handlers)
		participants.GET("/:id", participantHandler.Get)
	}

	authed.POST("/attachments", attachmentHandler.Upload)
	authed.GET("/attachments/sign", attachmentHandler.Sign)
	api.GET("/attachments/download", attachmentHandler.Download)

	if cfg.Exports.Enabled {
		authed.GET("/exports/requests", exportHandler.Requests)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "assignment_policy", cfg.Assignment.Policy)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}

package main

import (
	"context"
	"errors"
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

	_ "github.com/noah-isme/edu-admin-gateway/api/swagger"
	"github.com/noah-isme/edu-admin-gateway/internal/filters"
	"github.com/noah-isme/edu-admin-gateway/internal/handler"
	"github.com/noah-isme/edu-admin-gateway/internal/middleware"
	"github.com/noah-isme/edu-admin-gateway/internal/query"
	"github.com/noah-isme/edu-admin-gateway/internal/service"
	"github.com/noah-isme/edu-admin-gateway/internal/session"
	"github.com/noah-isme/edu-admin-gateway/internal/upstream"
	"github.com/noah-isme/edu-admin-gateway/pkg/cache"
	"github.com/noah-isme/edu-admin-gateway/pkg/config"
	"github.com/noah-isme/edu-admin-gateway/pkg/logger"
	corsmiddleware "github.com/noah-isme/edu-admin-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edu-admin-gateway/pkg/middleware/requestid"
	"github.com/noah-isme/edu-admin-gateway/pkg/storage"
)

// @title Edu Admin Gateway
// @version 0.1.0
// @description Admin gateway for the learning platform backend
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis connection failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	store := query.NewStore(cfg.Query.WatchBuffer, metrics, logr)
	validate := validator.New()

	client := upstream.NewClient(cfg.Upstream, logr, metrics)
	tokens := session.NewTokenStore(redisClient, 24*time.Hour, logr)
	resolver := session.NewResolver(cfg.JWT.Secret)
	filterStore := filters.NewStore(redisClient, cfg.Filters.TTL, logr)

	taxonomySvc := service.NewTaxonomyService(store, upstream.NewGradeClient(client), validate, logr)
	authSvc := service.NewAuthService(upstream.NewAuthClient(client), tokens, validate, logr)
	teacherSvc := service.NewTeacherService(store, upstream.NewTeacherClient(client), taxonomySvc, validate, logr)
	classSvc := service.NewClassService(store, upstream.NewClassClient(client), validate, logr)
	scheduleSvc := service.NewScheduleService(store, upstream.NewLessonClient(client), upstream.NewLiveClient(client), validate, logr)
	paperSvc := service.NewPaperService(store, upstream.NewPaperClient(client), upstream.NewQuestionClient(client), validate, logr)
	studentSvc := service.NewStudentService(store, upstream.NewStudentClient(client), filterStore, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(store, upstream.NewEnrollClient(client), logr)
	resultClient := upstream.NewResultClient(client)
	resultSvc := service.NewResultService(store, resultClient, logr)
	uploadClient := upstream.NewUploadClient(client, tokens)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("export storage init failed", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(resultClient, files, signer, service.ExportConfig{
			Workers:         cfg.Exports.WorkerConcurrency,
			DownloadPath:    cfg.APIPrefix + "/results/exports/download",
			FileTTL:         cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
		}, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, resolver, handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Taxonomy:    handler.NewTaxonomyHandler(taxonomySvc),
		Teachers:    handler.NewTeacherHandler(teacherSvc),
		Classes:     handler.NewClassHandler(classSvc),
		Schedule:    handler.NewScheduleHandler(scheduleSvc),
		Papers:      handler.NewPaperHandler(paperSvc),
		Students:    handler.NewStudentHandler(studentSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Results:     handler.NewResultHandler(resultSvc, exportSvc),
		Uploads:     handler.NewUploadHandler(uploadClient),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}

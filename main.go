package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/bugpredictor/api/v1"
	"github.com/bugpredictor/config"
	"github.com/bugpredictor/database"
	"github.com/bugpredictor/lib/mailer"
	"github.com/bugpredictor/lib/severity"
	"github.com/bugpredictor/lib/storage"
	"github.com/bugpredictor/logger"
	"github.com/bugpredictor/repositories"
	"github.com/bugpredictor/routes"
	"github.com/bugpredictor/scheduler"
	"github.com/bugpredictor/services"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	appLogger, err := logger.NewFromConfig(cfg.Log)
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	if cfg.Server.Mode == gin.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("AUTH_JWT_SECRET must be set")
	}

	if err := database.Initialize(cfg.Database); err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.EnsureSuperuser(database.DB, cfg.Admin); err != nil {
		logger.Fatal("Failed to ensure superuser: %v", err)
	}

	mail, err := mailer.New(cfg.Mail)
	if err != nil {
		logger.Fatal("Failed to initialize mailer: %v", err)
	}
	defer mail.Close(10 * time.Second)

	classifier := severity.NewClient(severity.Options{
		BaseURL:     cfg.Classifier.BaseURL,
		ModelChoice: cfg.Classifier.ModelChoice,
		Timeout:     cfg.Classifier.Timeout,
		FailMode:    severity.FailMode(cfg.Classifier.FailMode),
	})
	files := storage.NewDisk(cfg.Upload.Dir)

	svc := v1.Services{
		Auth:      services.NewAuthService(cfg.Auth, cfg.Server.BaseURL, mail),
		Members:   services.NewMemberService(mail, cfg.Server.BaseURL),
		Bugs:      services.NewBugService(classifier, files, mail, cfg.Server.BaseURL),
		Comments:  services.NewCommentService(),
		Media:     services.NewMediaService(files, cfg.Upload),
		Dashboard: services.NewDashboardService(),
		Projects:  services.NewProjectService(),
	}

	jobs, err := scheduler.NewManager(
		scheduler.NewTokenCleanupJob(repositories.NewTokenRepository(), cfg.Scheduler.TokenCleanupInterval),
	)
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}
	if err := jobs.Start(); err != nil {
		logger.Fatal("Failed to start scheduler: %v", err)
	}
	defer jobs.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.SetupRouter(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("🚀 Bug Predictor starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited")
}

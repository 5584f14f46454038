package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yuadm/first-step-greet/internal/config"
	appHTTP "github.com/yuadm/first-step-greet/internal/handler/http"
	"github.com/yuadm/first-step-greet/internal/pkg/cron"
	"github.com/yuadm/first-step-greet/internal/pkg/database"
	"github.com/yuadm/first-step-greet/internal/pkg/jwt"
	"github.com/yuadm/first-step-greet/internal/pkg/logger"
	"github.com/yuadm/first-step-greet/internal/pkg/sse"
	"github.com/yuadm/first-step-greet/internal/pkg/storage"
	"github.com/yuadm/first-step-greet/internal/repository/postgresql"
	assessmentService "github.com/yuadm/first-step-greet/internal/service/assessment"
	serviceAuth "github.com/yuadm/first-step-greet/internal/service/auth"
	complianceService "github.com/yuadm/first-step-greet/internal/service/compliance"
	dashboardService "github.com/yuadm/first-step-greet/internal/service/dashboard"
	"github.com/yuadm/first-step-greet/internal/service/file"
	"github.com/yuadm/first-step-greet/internal/service/master"
)

const (
	appName    = "first-step-compliance"
	appVersion = "v1.0.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog := logger.New(logger.Options{
		App:        appName,
		Version:    appVersion,
		Env:        cfg.App.Env,
		Level:      cfg.App.LogLevel,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer closeLog.Close()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	clk := cfg.Clock()
	if !cfg.Compliance.SimulatedDate.IsZero() {
		slog.Warn("Compliance clock is pinned to a simulated date", "date", cfg.Compliance.SimulatedDate.Format("2006-01-02"))
	}

	// Repositories
	userRepo := postgresql.NewUserRepository(db)
	branchRepo := postgresql.NewBranchRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	clientRepo := postgresql.NewClientRepository(db)
	typeRepo := postgresql.NewComplianceTypeRepository(db)
	recordRepo := postgresql.NewComplianceRecordRepository(db)
	draftRepo := postgresql.NewFormDraftRepository(db)
	applicationRepo := postgresql.NewJobApplicationRepository(db)
	transactor := postgresql.NewTransactor(db)

	// Storage
	var fileStorage storage.FileStorage
	uploadsDir := ""
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			return fmt.Errorf("initialize local storage: %w", err)
		}
		uploadsDir = cfg.Storage.BasePath
	case "s3":
		fileStorage, err = storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:    cfg.Storage.S3.Bucket,
			Region:    cfg.Storage.S3.Region,
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			PublicURL: cfg.Storage.S3.PublicURL,
		})
		if err != nil {
			return fmt.Errorf("initialize s3 storage: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}

	// Services
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()
	fileService := file.NewFileService(fileStorage)

	complianceSvc := complianceService.NewComplianceService(
		typeRepo,
		recordRepo,
		complianceService.NewSubjectSource(employeeRepo, clientRepo),
		fileService,
		clk,
	)
	dashboardSvc := dashboardService.NewDashboardService(complianceSvc, clk)
	refresher := dashboardService.NewRefresher(dashboardSvc, hub, cfg.Compliance.RefreshDebounce)
	defer refresher.Stop()
	complianceSvc.SetNotifier(refresher)

	authSvc := serviceAuth.NewAuthService(userRepo, JWTService)
	assessmentSvc := assessmentService.NewAssessmentService(transactor, draftRepo, applicationRepo, complianceSvc, clk)
	masterSvc := master.NewMasterService(branchRepo)

	// Background jobs
	scheduler := cron.NewScheduler(ctx)
	cron.NewComplianceJobs(dashboardSvc, hub, cfg.Compliance.DigestInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         log,
		LogLevel:       logger.ParseLevel(cfg.App.LogLevel),
		CORSOrigins:    cfg.App.CORSOrigins,
		LoginRateLimit: cfg.App.LoginRateLimit,
		UploadsDir:     uploadsDir,
	}, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc),
		Compliance: appHTTP.NewComplianceHandler(complianceSvc),
		Dashboard:  appHTTP.NewDashboardHandler(dashboardSvc),
		Assessment: appHTTP.NewAssessmentHandler(assessmentSvc),
		Master:     appHTTP.NewMasterHandler(masterSvc),
		Events:     appHTTP.NewEventsHandler(hub, JWTService, userRepo),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end when the signal context is cancelled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "storage", cfg.Storage.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

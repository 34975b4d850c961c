package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/config"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/action"
	appHTTP "github.com/cmlabs-hris/hris-report-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/hrapi"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/logging"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-report-go/internal/repository/postgresql"
	actionService "github.com/cmlabs-hris/hris-report-go/internal/service/action"
	"github.com/cmlabs-hris/hris-report-go/internal/service/file"
	reportService "github.com/cmlabs-hris/hris-report-go/internal/service/report"
	"golang.org/x/oauth2/clientcredentials"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		App:     "hris-report",
		Version: version,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		File:    cfg.App.LogFile,
	})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client := hrapi.NewClient(newTransport(ctx, cfg.HRAPI))

	profiles := reportService.DefaultProfiles()
	if cfg.Views.RoleProfilesFile != "" {
		loaded, err := reportService.LoadProfiles(cfg.Views.RoleProfilesFile)
		if err != nil {
			return fmt.Errorf("failed to load role profiles: %w", err)
		}
		profiles = loaded
	}

	var archive file.ArchiveService
	fileStorage, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if fileStorage != nil {
		archive = file.NewArchiveService(fileStorage)
	}

	var audit action.AuditRepository
	if cfg.Audit.Enabled() {
		db, err := database.NewPostgreSQLDB(ctx, cfg.Audit.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to audit database: %w", err)
		}
		defer db.Close()
		if err := postgresql.EnsureActionAuditSchema(ctx, db); err != nil {
			return err
		}
		audit = postgresql.NewActionAuditRepository(db)
	}

	hub := sse.NewHub()
	registry := reportService.NewRegistry(cfg.Views.IdleTTL, logger)
	// Streams of a discarded view end with it
	registry.OnEvict(hub.CloseTopic)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	reportSvc := reportService.NewReportService(client, registry, profiles, archive, logger)
	actionSvc := actionService.NewActionService(registry, client, hub, audit, logger)

	scheduler := cron.NewScheduler(logger)
	cron.NewViewJobs(registry, cfg.Views.SweepInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	routerCfg := appHTTP.RouterConfig{
		Logger:         logger,
		AllowedOrigins: []string{cfg.App.FrontendURL},
	}
	if cfg.Storage.Type == "local" {
		routerCfg.ExportsDir = cfg.Storage.BasePath
	}

	router := appHTTP.NewRouter(
		routerCfg,
		JWTService,
		appHTTP.NewReportHandler(reportSvc),
		appHTTP.NewViewHandler(reportSvc),
		appHTTP.NewActionHandler(actionSvc),
		appHTTP.NewEventHandler(JWTService, reportSvc, hub),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newTransport(ctx context.Context, cfg config.HRAPIConfig) *hrapi.Transport {
	if cfg.UsesClientCredentials() {
		return hrapi.NewClientCredentialsTransport(ctx, cfg.BaseURL, clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}, cfg.Timeout)
	}
	return hrapi.NewTransport(cfg.BaseURL, cfg.Token, cfg.Timeout)
}

// newStorage returns nil when archiving is disabled.
func newStorage(ctx context.Context, cfg config.StorageConfig) (storage.FileStorage, error) {
	switch cfg.Type {
	case "local":
		local, err := storage.NewLocalStorage(cfg.BasePath, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return local, nil
	case "s3":
		s3Storage, err := storage.NewS3Storage(ctx, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		return s3Storage, nil
	}
	return nil, nil
}

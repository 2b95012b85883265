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

	"github.com/joho/godotenv"

	"github.com/dejobratic/rmaflow/internal/config"
	"github.com/dejobratic/rmaflow/internal/database"
	"github.com/dejobratic/rmaflow/internal/kafka"
	"github.com/dejobratic/rmaflow/internal/returns/adapters"
	httpadapter "github.com/dejobratic/rmaflow/internal/returns/adapters/http"
	"github.com/dejobratic/rmaflow/internal/returns/app"
	"github.com/dejobratic/rmaflow/internal/returns/app/steps"
	"github.com/dejobratic/rmaflow/internal/returns/metrics"
	"github.com/dejobratic/rmaflow/internal/telemetry"
)

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(telemetry.ParseLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		Insecure:       cfg.Telemetry.OTelInsecure,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	meter := telemetry.Meter()
	returnsMetrics, err := metrics.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create workflow metrics: %w", err)
	}
	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create database metrics: %w", err)
	}
	eventMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create event metrics: %w", err)
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create http metrics: %w", err)
	}

	directory, err := loadDirectory(cfg)
	if err != nil {
		return err
	}

	b := &backends{cfg: cfg, logger: logger, dbMetrics: dbMetrics}
	defer b.close()

	if err := b.connect(ctx); err != nil {
		return err
	}

	store, err := b.idempotencyStore(ctx)
	if err != nil {
		return err
	}
	emailSender, err := b.emailSender()
	if err != nil {
		return err
	}
	eventBus, err := b.eventBus()
	if err != nil {
		return err
	}

	service := app.NewService(app.Dependencies{
		Directory:   directory,
		EmailSender: adapters.NewObservableEmailSender(emailSender, returnsMetrics),
		SMSSender:   adapters.NewObservableSMSSender(b.smsSender(), returnsMetrics),
		Recorder:    adapters.NewObservableRecorder(b.submissionRecorder(), returnsMetrics),
		Events:      adapters.NewObservableEventBus(eventBus, cfg.Events.Backend, eventMetrics),
		Store:       store,
		Retry: steps.RetryPolicy{
			MaxAttempts: cfg.Workflow.MaxAttempts,
			Pause:       cfg.Workflow.RetryPause,
		},
		Timeout:        cfg.Workflow.Timeout,
		IdempotencyTTL: cfg.Idempotency.TTL,
		Logger:         logger,
		Metrics:        returnsMetrics,
	})

	handler := httpadapter.NewHandler(service, logger, cfg.Service.Version, b.checks...)
	router := httpadapter.NewRouter(handler, httpadapter.RouterOptions{
		Logger:      logger,
		Metrics:     httpMetrics,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	// Workflow runs can take up to the workflow timeout, so the write timeout leaves room.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Workflow.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting",
			"port", cfg.HTTP.Port,
			"idempotency_backend", cfg.Idempotency.Backend,
			"email_provider", cfg.Email.Provider,
			"sms_provider", cfg.SMS.Provider,
			"events_backend", cfg.Events.Backend,
			"submissions_backend", cfg.Submissions.Backend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"balance_reporter/internal/app"
	"balance_reporter/internal/infrastructure/configloader"
	"balance_reporter/internal/infrastructure/restapi"
	"balance_reporter/internal/infrastructure/telemetry"
	"balance_reporter/internal/pkg/logger"
	"balance_reporter/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	if err := configloader.LoadDotEnv(".env"); err != nil {
		log.WithError(err).Warn("Failed to load .env file")
	}
	cfg, err := configloader.Load("", configloader.FromEnviron())
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	zapLogger := logger.NewZapLogger(logger.Config{
		Level:       cfg.Logging.Level,
		File:        cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
		Development: cfg.Logging.Development,
	})
	defer zapLogger.Sync() //nolint:errcheck

	slogHandler := zapslog.NewHandler(zapLogger.Core())
	logger.SetDefault(slog.New(slogHandler))

	if logger.ParseLevel(cfg.Logging.Level) != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		zapLogger.Warn("Tracing disabled", zap.Error(err))
	}

	metrics.MustRegisterMetrics()

	reportService, cleanup, err := app.NewReportService(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize report service", zap.Error(err))
	}
	defer cleanup()

	handler := restapi.NewBalanceHandler(reportService, cfg.Report.Path, logger.NewComponentLogger("api"))
	router := restapi.SetupRouter(handler, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server",
			zap.String("address", srv.Addr),
			zap.String("network", cfg.ResolvedNetwork.Identifier))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutdown signal received, stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		zapLogger.Warn("Tracer shutdown failed", zap.Error(err))
	}
	zapLogger.Info("Balance reporter server stopped")
}

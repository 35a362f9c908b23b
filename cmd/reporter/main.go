package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"balance_reporter/internal/app"
	"balance_reporter/internal/domain/entity"
	"balance_reporter/internal/infrastructure/configloader"
	"balance_reporter/internal/infrastructure/telemetry"
	"balance_reporter/internal/pkg/logger"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	start := time.Now()

	bootstrap, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize bootstrap logger: %v\n", err)
		return 1
	}

	if err := configloader.LoadDotEnv(".env"); err != nil {
		bootstrap.Warn("Failed to load .env file", zap.Error(err))
	}
	cfg, err := configloader.Load("", configloader.FromEnviron())
	if err != nil {
		var cfgErr *entity.ConfigurationError
		if errors.As(err, &cfgErr) {
			bootstrap.Error("Invalid configuration", zap.String("field", cfgErr.Field), zap.String("reason", cfgErr.Reason))
		} else {
			bootstrap.Error("Failed to load configuration", zap.Error(err))
		}
		return 1
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

	slogHandler := slogzap.Option{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Logger: zapLogger,
	}.NewZapHandler()
	logger.SetDefault(slog.New(slogHandler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(shutdownCtx)
	}()

	netDef := cfg.ResolvedNetwork
	logger.Info("Balance reporter starting",
		"network", netDef.Identifier,
		"native_symbol", netDef.NativeSymbol,
		"symbol_strategy", cfg.Symbols.Strategy,
		"input", cfg.Input.Path,
		"report", cfg.Report.Path)

	reportService, cleanup, err := app.NewReportService(ctx, cfg, zapLogger)
	if err != nil {
		logger.Error("Failed to initialize reporter", "error", err)
		return 1
	}
	defer cleanup()

	report, err := reportService.GenerateReport(ctx)
	if err != nil {
		var exportErr *entity.ExportError
		if errors.As(err, &exportErr) {
			logger.Error("Failed to export report", "path", exportErr.Path, "error", exportErr.Err)
		} else {
			logger.Error("Failed to generate report", "error", err)
		}
		return 1
	}

	logger.Info("Balances exported",
		"path", cfg.Report.Path,
		"wallets", len(report.Rows),
		"columns", len(report.Header),
		"execution_time", time.Since(start).String())
	return 0
}

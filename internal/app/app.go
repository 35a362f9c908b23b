package app

import (
	"context"
	"time"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/app/service"
	"balance_reporter/internal/infrastructure/configloader"
	"balance_reporter/internal/infrastructure/httpclient"
	clientprovider "balance_reporter/internal/infrastructure/network/client"
	"balance_reporter/internal/infrastructure/reportwriter"
	"balance_reporter/internal/infrastructure/tokenloader"
	"balance_reporter/internal/infrastructure/walletloader"
	"balance_reporter/internal/pkg/logger"

	"go.uber.org/zap"
)

// NewReportService wires the balance pipeline from configuration. The returned cleanup
// closes the RPC connections.
func NewReportService(ctx context.Context, cfg *configloader.Config, zapLogger *zap.Logger) (port.ReportService, func(), error) {
	netDef := cfg.ResolvedNetwork

	clientProvider := clientprovider.NewEVMClientProvider(
		time.Duration(cfg.Performance.ConnectionTimeoutSeconds)*time.Second,
		time.Duration(cfg.Performance.RPCCallTimeoutSeconds)*time.Second,
		logger.NewComponentLogger("rpc"),
	)
	chain, err := clientProvider.GetClient(ctx, netDef)
	if err != nil {
		return nil, nil, err
	}

	var metadataClient port.TokenMetadataClient
	if cfg.Symbols.Strategy == configloader.StrategyMetadata {
		metadataClient = httpclient.NewCoinGeckoClient(
			cfg.CoinGecko.BaseURL,
			cfg.CoinGecko.APIKey,
			time.Duration(cfg.CoinGecko.RequestTimeoutMillis)*time.Millisecond,
			time.Duration(cfg.CoinGecko.CacheTTLMinutes)*time.Minute,
			zapLogger,
		)
	}

	serviceLogger := logger.NewComponentLogger("report")
	resolver, err := service.NewSymbolResolver(cfg.Symbols.Strategy, chain, metadataClient, netDef.CoinGeckoPlatformID, serviceLogger)
	if err != nil {
		clientProvider.Close()
		return nil, nil, err
	}

	loaderLogger := logger.NewComponentLogger("input")
	walletProvider := walletloader.NewWalletFileLoader(cfg.Input.Path, cfg.Input.WalletsFile, loaderLogger.Info, loaderLogger.Warn)
	tokenProvider := tokenloader.NewTokenLoader(cfg.Input.Path, loaderLogger.Info, loaderLogger.Warn)

	aggregator := service.NewWalletAggregator(service.NewBalanceReader(chain), serviceLogger, cfg.Performance.MaxConcurrentWallets)
	exporter := service.NewReportExporter(netDef.NativeSymbol, reportwriter.NewFileReportWriter(cfg.Report.Path), serviceLogger)

	reportService := service.NewReportService(
		walletProvider,
		tokenProvider,
		aggregator,
		resolver,
		exporter,
		serviceLogger,
		time.Duration(cfg.Performance.RunTimeoutSeconds)*time.Second,
	)
	return reportService, clientProvider.Close, nil
}

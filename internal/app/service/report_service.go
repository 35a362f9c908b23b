package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/domain/entity"
	"balance_reporter/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
)

// reportServiceImpl implements port.ReportService.
type reportServiceImpl struct {
	walletProvider port.WalletProvider
	tokenProvider  port.TokenProvider
	aggregator     *WalletAggregator
	resolver       port.SymbolResolver
	exporter       *ReportExporter
	logger         port.Logger
	runTimeout     time.Duration
}

// NewReportService wires the pipeline. runTimeout <= 0 disables the run deadline.
func NewReportService(
	wp port.WalletProvider,
	tp port.TokenProvider,
	aggregator *WalletAggregator,
	resolver port.SymbolResolver,
	exporter *ReportExporter,
	l port.Logger,
	runTimeout time.Duration,
) port.ReportService {
	return &reportServiceImpl{
		walletProvider: wp,
		tokenProvider:  tp,
		aggregator:     aggregator,
		resolver:       resolver,
		exporter:       exporter,
		logger:         l,
		runTimeout:     runTimeout,
	}
}

func (s *reportServiceImpl) Snapshot(ctx context.Context) (*entity.BalanceSnapshot, error) {
	wallets, err := s.walletProvider.GetWallets()
	if err != nil {
		return nil, fmt.Errorf("failed to load wallets: %w", err)
	}
	return s.snapshot(ctx, wallets)
}

func (s *reportServiceImpl) SnapshotWallet(ctx context.Context, walletAddress string) (*entity.BalanceSnapshot, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidWalletAddress, walletAddress)
	}
	return s.snapshot(ctx, []entity.Wallet{{Address: walletAddress}})
}

// snapshot runs the aggregator and the symbol resolver concurrently and joins
// their results. Neither side can fail as a whole; failures are per cell.
func (s *reportServiceImpl) snapshot(ctx context.Context, wallets []entity.Wallet) (*entity.BalanceSnapshot, error) {
	tokens, err := s.tokenProvider.GetTokens()
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}

	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info("Starting balance aggregation", "wallets", len(wallets), "tokens", len(tokens))

	var (
		records        []entity.WalletRecord
		readFailures   []entity.ReadFailure
		symbolMap      entity.SymbolMap
		symbolFailures []entity.ReadFailure
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		records, readFailures = s.aggregator.Aggregate(ctx, wallets, tokens)
	}()
	go func() {
		defer wg.Done()
		symbolMap, symbolFailures = s.resolver.Resolve(ctx, tokens)
	}()
	wg.Wait()

	columns := ReportColumns(tokens, symbolMap)

	metrics.ObserveRun(start, len(readFailures))
	s.logger.Info("Balance aggregation finished",
		"wallets", len(records),
		"failed_reads", len(readFailures),
		"failed_symbols", len(symbolFailures),
		"duration", time.Since(start).String())

	return &entity.BalanceSnapshot{
		Records:   records,
		Symbols:   entity.ColumnLabels(columns),
		Columns:   columns,
		SymbolMap: symbolMap,
		Failures:  append(readFailures, symbolFailures...),
	}, nil
}

func (s *reportServiceImpl) Render(snapshot *entity.BalanceSnapshot) entity.Report {
	if snapshot == nil {
		return s.exporter.Build(nil, nil)
	}
	return s.exporter.Build(snapshot.Records, snapshot.Columns)
}

func (s *reportServiceImpl) GenerateReport(ctx context.Context) (entity.Report, error) {
	start := time.Now()
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return entity.Report{}, err
	}
	report, err := s.exporter.Export(ctx, snapshot.Records, snapshot.Columns)
	if err != nil {
		return report, err
	}
	s.logger.Info("Execution time", "duration", time.Since(start).String())
	return report, nil
}

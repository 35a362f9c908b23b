package service

import (
	"context"
	"errors"
	"sync"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/domain/entity"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// WalletAggregator reads every (wallet, token) pair plus each wallet's native
// balance and assembles one WalletRecord per wallet, in input order.
type WalletAggregator struct {
	reader               *BalanceReader
	logger               port.Logger
	maxConcurrentWallets int
}

// NewWalletAggregator creates an aggregator. maxConcurrentWallets <= 0 means no limit.
func NewWalletAggregator(reader *BalanceReader, logger port.Logger, maxConcurrentWallets int) *WalletAggregator {
	return &WalletAggregator{reader: reader, logger: logger, maxConcurrentWallets: maxConcurrentWallets}
}

// Aggregate returns len(wallets) records, records[i] belonging to wallets[i], and
// every read failure flattened in wallet order. It never fails as a whole.
func (a *WalletAggregator) Aggregate(ctx context.Context, wallets []entity.Wallet, tokens []entity.TokenInfo) ([]entity.WalletRecord, []entity.ReadFailure) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "WalletAggregator.Aggregate", trace.WithAttributes(
		attribute.Int("wallets", len(wallets)),
		attribute.Int("tokens", len(tokens)),
	))
	defer span.End()

	records := make([]entity.WalletRecord, len(wallets))
	failures := make([][]entity.ReadFailure, len(wallets))

	var g errgroup.Group
	if a.maxConcurrentWallets > 0 {
		g.SetLimit(a.maxConcurrentWallets)
	}
	for i, wallet := range wallets {
		g.Go(func() error {
			records[i], failures[i] = a.aggregateWallet(ctx, wallet.Address, tokens)
			return nil
		})
	}
	_ = g.Wait()

	var all []entity.ReadFailure
	for _, f := range failures {
		all = append(all, f...)
	}
	span.SetAttributes(attribute.Int("failures", len(all)))
	return records, all
}

// AggregateWallet aggregates a single wallet.
func (a *WalletAggregator) AggregateWallet(ctx context.Context, walletAddress string, tokens []entity.TokenInfo) (entity.WalletRecord, []entity.ReadFailure) {
	return a.aggregateWallet(ctx, walletAddress, tokens)
}

type tokenSlot struct {
	entry entity.TokenBalanceEntry
	err   error
}

func (a *WalletAggregator) aggregateWallet(ctx context.Context, walletAddress string, tokens []entity.TokenInfo) (entity.WalletRecord, []entity.ReadFailure) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "WalletAggregator.wallet", trace.WithAttributes(
		attribute.String("wallet", walletAddress),
	))
	defer span.End()

	var (
		native    string
		nativeErr error
		slots     = make([]tokenSlot, len(tokens))
		wg        sync.WaitGroup
	)

	wg.Add(1 + len(tokens))
	go func() {
		defer wg.Done()
		native, nativeErr = a.reader.ReadNative(ctx, walletAddress)
	}()
	for i, token := range tokens {
		go func() {
			defer wg.Done()
			entry, err := a.reader.Read(ctx, walletAddress, token.Address)
			slots[i] = tokenSlot{entry: entry, err: err}
		}()
	}
	wg.Wait()

	record := entity.WalletRecord{
		Address:       walletAddress,
		NativeAmount:  native,
		TokenBalances: make(map[string]string, len(tokens)),
		TokenAmounts:  make(map[string]string, len(tokens)),
	}
	var failures []entity.ReadFailure
	if nativeErr != nil {
		failures = append(failures, a.failure(nativeErr, entity.OpNativeBalance, walletAddress, ""))
	}

	owner := make(map[string]string, len(tokens))
	for i, token := range tokens {
		if slots[i].err != nil {
			failures = append(failures, a.failure(slots[i].err, entity.OpBalanceOf, walletAddress, token.Address))
			continue
		}
		entry := slots[i].entry
		if prev, taken := owner[entry.Symbol]; taken {
			a.logger.Warn("Symbol collision, later token overwrites earlier balance",
				"wallet", walletAddress, "symbol", entry.Symbol, "overwritten_token", prev, "token", entry.Token)
		}
		owner[entry.Symbol] = entry.Token
		record.TokenBalances[entry.Symbol] = entry.Amount
		record.TokenAmounts[token.Address] = entry.Amount
	}
	return record, failures
}

// failure logs err and converts it to a ReadFailure value.
func (a *WalletAggregator) failure(err error, op, wallet, token string) entity.ReadFailure {
	var rf *entity.ReadFailure
	if !errors.As(err, &rf) {
		rf = entity.NewReadFailure(op, wallet, token, err)
	}
	a.logger.Warn("Balance read failed, cell will fall back to sentinel",
		"wallet", rf.WalletAddress, "token", rf.TokenAddress, "operation", rf.Operation, "error", rf.Message)
	return *rf
}

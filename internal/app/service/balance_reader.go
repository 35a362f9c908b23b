package service

import (
	"context"
	"math/big"
	"sync"
	"time"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/domain/entity"
	"balance_reporter/internal/pkg/metrics"
	"balance_reporter/internal/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "balance_reporter/service"

// BalanceReader turns remote reads into normalized balance entries.
type BalanceReader struct {
	chain port.ChainReader
}

// NewBalanceReader creates a BalanceReader over chain.
func NewBalanceReader(chain port.ChainReader) *BalanceReader {
	return &BalanceReader{chain: chain}
}

// Read issues balanceOf, decimals and symbol concurrently and completes when all
// three have finished. If any of them fails the whole entry fails; the error is a
// *entity.ReadFailure naming the first failed operation in that order.
func (r *BalanceReader) Read(ctx context.Context, walletAddress, tokenAddress string) (entity.TokenBalanceEntry, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "BalanceReader.Read", trace.WithAttributes(
		attribute.String("wallet", walletAddress),
		attribute.String("token", tokenAddress),
	))
	defer span.End()

	var (
		raw      *big.Int
		decimals uint8
		symbol   string
		errs     [3]error
	)

	// One failing read does not cancel its siblings; every read gets its single attempt.
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		start := time.Now()
		raw, errs[0] = r.chain.TokenBalance(ctx, tokenAddress, walletAddress)
		metrics.ObserveRead(entity.OpBalanceOf, start, errs[0])
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		decimals, errs[1] = r.chain.TokenDecimals(ctx, tokenAddress)
		metrics.ObserveRead(entity.OpDecimals, start, errs[1])
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		symbol, errs[2] = r.chain.TokenSymbol(ctx, tokenAddress)
		metrics.ObserveRead(entity.OpSymbol, start, errs[2])
	}()
	wg.Wait()

	for i, op := range [...]string{entity.OpBalanceOf, entity.OpDecimals, entity.OpSymbol} {
		if errs[i] != nil {
			failure := entity.NewReadFailure(op, walletAddress, tokenAddress, errs[i])
			span.SetStatus(codes.Error, failure.Error())
			return entity.TokenBalanceEntry{}, failure
		}
	}

	return entity.TokenBalanceEntry{
		Token:  tokenAddress,
		Symbol: symbol,
		Amount: utils.FormatBigInt(raw, decimals),
	}, nil
}

// ReadNative reads the wallet's native balance and normalizes it with precision 18.
func (r *BalanceReader) ReadNative(ctx context.Context, walletAddress string) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "BalanceReader.ReadNative", trace.WithAttributes(
		attribute.String("wallet", walletAddress),
	))
	defer span.End()

	start := time.Now()
	raw, err := r.chain.NativeBalance(ctx, walletAddress)
	metrics.ObserveRead(entity.OpNativeBalance, start, err)
	if err != nil {
		failure := entity.NewReadFailure(entity.OpNativeBalance, walletAddress, "", err)
		span.SetStatus(codes.Error, failure.Error())
		return "", failure
	}
	return utils.FormatBigInt(raw, entity.NativeDecimals), nil
}

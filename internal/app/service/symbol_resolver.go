package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/domain/entity"
	"balance_reporter/internal/pkg/metrics"
)

const (
	SymbolStrategyOnChain  = "onchain"
	SymbolStrategyMetadata = "metadata"
)

var errEmptySymbol = errors.New("empty symbol")

type symbolLookup func(ctx context.Context, tokenAddress string) (string, error)

// resolveConcurrently runs one lookup per token into a pre-sized slot and
// assembles the map after all lookups finished. Failed tokens are left out.
func resolveConcurrently(ctx context.Context, tokens []entity.TokenInfo, op string, lookup symbolLookup, logger port.Logger) (entity.SymbolMap, []entity.ReadFailure) {
	type slot struct {
		symbol string
		err    error
	}
	slots := make([]slot, len(tokens))

	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, address string) {
			defer wg.Done()
			start := time.Now()
			symbol, err := lookup(ctx, address)
			if err == nil && symbol == "" {
				err = errEmptySymbol
			}
			metrics.ObserveRead(op, start, err)
			slots[i] = slot{symbol: symbol, err: err}
		}(i, token.Address)
	}
	wg.Wait()

	symbols := make(entity.SymbolMap, len(tokens))
	var failures []entity.ReadFailure
	for i, token := range tokens {
		if slots[i].err != nil {
			failure := entity.NewReadFailure(op, "", token.Address, slots[i].err)
			logger.Warn("Symbol lookup failed, the token address will be used as column label",
				"token", token.Address, "operation", op, "error", slots[i].err)
			failures = append(failures, *failure)
			continue
		}
		symbols[token.Address] = slots[i].symbol
	}
	return symbols, failures
}

// onChainSymbolResolver reads symbol() from each token contract.
type onChainSymbolResolver struct {
	chain  port.ChainReader
	logger port.Logger
}

// NewOnChainSymbolResolver creates a resolver that reads symbols from the contracts.
func NewOnChainSymbolResolver(chain port.ChainReader, logger port.Logger) port.SymbolResolver {
	return &onChainSymbolResolver{chain: chain, logger: logger}
}

func (r *onChainSymbolResolver) Resolve(ctx context.Context, tokens []entity.TokenInfo) (entity.SymbolMap, []entity.ReadFailure) {
	return resolveConcurrently(ctx, tokens, entity.OpSymbol, r.chain.TokenSymbol, r.logger)
}

// metadataSymbolResolver asks the token metadata service. Its symbols are
// uppercased for display.
type metadataSymbolResolver struct {
	client     port.TokenMetadataClient
	platformID string
	logger     port.Logger
}

// NewMetadataSymbolResolver creates a resolver backed by a metadata service for platformID.
func NewMetadataSymbolResolver(client port.TokenMetadataClient, platformID string, logger port.Logger) port.SymbolResolver {
	return &metadataSymbolResolver{client: client, platformID: platformID, logger: logger}
}

func (r *metadataSymbolResolver) Resolve(ctx context.Context, tokens []entity.TokenInfo) (entity.SymbolMap, []entity.ReadFailure) {
	lookup := func(ctx context.Context, tokenAddress string) (string, error) {
		symbol, err := r.client.GetTokenSymbol(ctx, r.platformID, tokenAddress)
		return strings.ToUpper(strings.TrimSpace(symbol)), err
	}
	return resolveConcurrently(ctx, tokens, entity.OpMetadata, lookup, r.logger)
}

// NewSymbolResolver selects the resolver for strategy. An empty strategy means on-chain.
func NewSymbolResolver(strategy string, chain port.ChainReader, metadata port.TokenMetadataClient, platformID string, logger port.Logger) (port.SymbolResolver, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", SymbolStrategyOnChain:
		return NewOnChainSymbolResolver(chain, logger), nil
	case SymbolStrategyMetadata:
		if metadata == nil || platformID == "" {
			return nil, &entity.ConfigurationError{Field: "symbols.strategy", Reason: "metadata strategy requires a metadata client and a platform id"}
		}
		return NewMetadataSymbolResolver(metadata, platformID, logger), nil
	default:
		return nil, &entity.ConfigurationError{Field: "symbols.strategy", Reason: fmt.Sprintf("unknown strategy %q", strategy)}
	}
}

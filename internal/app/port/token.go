package port

import (
	"context"

	"balance_reporter/internal/domain/entity"
)

// TokenProvider defines the interface for fetching the configured tokens, in configured order.
type TokenProvider interface {
	GetTokens() ([]entity.TokenInfo, error)
}

// SymbolResolver maps token addresses to display symbols. A failed lookup leaves
// the token out of the map and is returned as a ReadFailure.
type SymbolResolver interface {
	Resolve(ctx context.Context, tokens []entity.TokenInfo) (entity.SymbolMap, []entity.ReadFailure)
}

// TokenMetadataClient looks up token metadata in an external service.
type TokenMetadataClient interface {
	GetTokenSymbol(ctx context.Context, platformID string, tokenAddress string) (string, error)
}

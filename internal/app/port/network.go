package port

import (
	"context"
	"math/big"

	"balance_reporter/internal/domain/entity"
)

// ChainReader performs single remote reads against an EVM node.
// Implementations must be safe for concurrent use.
type ChainReader interface {
	// NativeBalance fetches the native currency balance (e.g. ETH, BNB) of a wallet.
	NativeBalance(ctx context.Context, walletAddress string) (*big.Int, error)

	// TokenBalance calls balanceOf(walletAddress) on the token contract.
	TokenBalance(ctx context.Context, tokenAddress string, walletAddress string) (*big.Int, error)

	// TokenDecimals calls decimals() on the token contract.
	TokenDecimals(ctx context.Context, tokenAddress string) (uint8, error)

	// TokenSymbol calls symbol() on the token contract.
	TokenSymbol(ctx context.Context, tokenAddress string) (string, error)
}

// BlockchainClient is a ChainReader bound to a network.
type BlockchainClient interface {
	ChainReader

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition

	Close()
}

// BlockchainClientProvider defines the interface for providing blockchain clients.
type BlockchainClientProvider interface {
	GetClient(ctx context.Context, networkDefinition entity.NetworkDefinition) (BlockchainClient, error)

	// Close closes every client handed out by the provider.
	Close()
}

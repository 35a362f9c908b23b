package port

import "balance_reporter/internal/domain/entity"

// WalletProvider defines the interface for fetching wallet addresses, in configured order.
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
}

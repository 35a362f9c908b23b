package entity

// TokenInfo identifies a configured token contract.
type TokenInfo struct {
	Address string `json:"address" yaml:"address"`
}

// TokenBalanceEntry is the normalized result of reading one token for one wallet.
type TokenBalanceEntry struct {
	Token  string `json:"token"`
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
}

package entity

// Wallet is a configured wallet address.
type Wallet struct {
	Address string `json:"address" yaml:"address"`
}

// WalletRecord holds the merged balances of one wallet.
// NativeAmount is empty when the native read failed. TokenBalances is keyed by
// on-chain symbol, TokenAmounts by token address; failed tokens appear in neither.
type WalletRecord struct {
	Address       string            `json:"address"`
	NativeAmount  string            `json:"nativeAmount"`
	TokenBalances map[string]string `json:"tokenBalances"`
	TokenAmounts  map[string]string `json:"tokenAmounts"`
}

// Amount returns the amount of the last token of column that was read successfully.
func (r WalletRecord) Amount(column ReportColumn) (string, bool) {
	for i := len(column.Tokens) - 1; i >= 0; i-- {
		if amount, ok := r.TokenAmounts[column.Tokens[i]]; ok {
			return amount, true
		}
	}
	return "", false
}

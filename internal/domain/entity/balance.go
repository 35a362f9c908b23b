package entity

// NativeDecimals is the fixed precision of the chain's native asset.
const NativeDecimals uint8 = 18

// SentinelAmount is rendered for any report cell whose read failed.
const SentinelAmount = "0"

// Read operations, used to label failures, metrics and spans.
const (
	OpNativeBalance = "native_balance"
	OpBalanceOf     = "balance_of"
	OpDecimals      = "decimals"
	OpSymbol        = "symbol"
	OpMetadata      = "metadata_symbol"
)

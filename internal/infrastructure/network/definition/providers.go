package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"balance_reporter/internal/domain/entity"
)

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:             1,
		Name:                "Ethereum Mainnet",
		Identifier:          "ethereum",
		NativeSymbol:        "ETH",
		PrimaryRPCURL:       "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:     []string{"https://rpc.ankr.com/eth", "https://eth.llamarpc.com"},
		BlockExplorerURL:    "https://etherscan.io",
		CoinGeckoPlatformID: "ethereum",
	}
	BSC = entity.NetworkDefinition{
		ChainID:             56,
		Name:                "BNB Smart Chain",
		Identifier:          "bsc",
		NativeSymbol:        "BNB",
		PrimaryRPCURL:       "https://1rpc.io/bnb",
		FallbackRPCURLs:     []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		BlockExplorerURL:    "https://bscscan.com",
		CoinGeckoPlatformID: "binance-smart-chain",
	}
	Polygon = entity.NetworkDefinition{
		ChainID:             137,
		Name:                "Polygon PoS",
		Identifier:          "polygon",
		NativeSymbol:        "POL",
		PrimaryRPCURL:       "https://polygon-rpc.com/",
		FallbackRPCURLs:     []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		BlockExplorerURL:    "https://polygonscan.com",
		CoinGeckoPlatformID: "polygon-pos",
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:             42161,
		Name:                "Arbitrum One",
		Identifier:          "arbitrum",
		NativeSymbol:        "ETH",
		PrimaryRPCURL:       "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:     []string{"https://arbitrum.llamarpc.com", "https://arbitrum.publicnode.com"},
		BlockExplorerURL:    "https://arbiscan.io",
		CoinGeckoPlatformID: "arbitrum-one",
	}
	Optimism = entity.NetworkDefinition{
		ChainID:             10,
		Name:                "OP Mainnet",
		Identifier:          "optimism",
		NativeSymbol:        "ETH",
		PrimaryRPCURL:       "https://mainnet.optimism.io",
		FallbackRPCURLs:     []string{"https://optimism.publicnode.com"},
		BlockExplorerURL:    "https://optimistic.etherscan.io",
		CoinGeckoPlatformID: "optimistic-ethereum",
	}
	Avalanche = entity.NetworkDefinition{
		ChainID:             43114,
		Name:                "Avalanche C-Chain",
		Identifier:          "avalanche",
		NativeSymbol:        "AVAX",
		PrimaryRPCURL:       "https://api.avax.network/ext/bc/C/rpc",
		FallbackRPCURLs:     []string{"https://rpc.ankr.com/avalanche"},
		BlockExplorerURL:    "https://snowtrace.io",
		CoinGeckoPlatformID: "avalanche",
	}
	Base = entity.NetworkDefinition{
		ChainID:             8453,
		Name:                "Base Mainnet",
		Identifier:          "base",
		NativeSymbol:        "ETH",
		PrimaryRPCURL:       "https://1rpc.io/base",
		FallbackRPCURLs:     []string{"https://base.publicnode.com", "https://base.llamarpc.com"},
		BlockExplorerURL:    "https://basescan.org",
		CoinGeckoPlatformID: "base",
	}
	Gnosis = entity.NetworkDefinition{
		ChainID:             100,
		Name:                "Gnosis Chain",
		Identifier:          "gnosis",
		NativeSymbol:        "xDAI",
		PrimaryRPCURL:       "https://rpc.gnosischain.com",
		FallbackRPCURLs:     []string{"https://gnosis.publicnode.com"},
		BlockExplorerURL:    "https://gnosisscan.io",
		CoinGeckoPlatformID: "xdai",
	}
)

var allKnownDefinitions = map[string]entity.NetworkDefinition{
	Ethereum.Identifier:  Ethereum,
	BSC.Identifier:       BSC,
	Polygon.Identifier:   Polygon,
	Arbitrum.Identifier:  Arbitrum,
	Optimism.Identifier:  Optimism,
	Avalanche.Identifier: Avalanche,
	Base.Identifier:      Base,
	Gnosis.Identifier:    Gnosis,
}

// Overrides replace parts of a known definition. Empty fields keep the known value.
type Overrides struct {
	Name                string
	ChainID             uint64
	NativeSymbol        string
	RPCURL              string
	FallbackRPCURLs     []string
	CoinGeckoPlatformID string
}

// Lookup returns a copy of the known definition for identifier (case-insensitive).
func Lookup(identifier string) (entity.NetworkDefinition, bool) {
	def, ok := allKnownDefinitions[strings.ToLower(strings.TrimSpace(identifier))]
	if !ok {
		return entity.NetworkDefinition{}, false
	}
	def.FallbackRPCURLs = append([]string(nil), def.FallbackRPCURLs...)
	return def, true
}

// Identifiers lists the known network identifiers in sorted order.
func Identifiers() []string {
	ids := make([]string, 0, len(allKnownDefinitions))
	for id := range allKnownDefinitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve builds the effective network definition. A configured RPC URL replaces the
// known endpoints entirely, so a private node is never silently bypassed for a public one.
// Unknown identifiers are accepted when the overrides carry an RPC URL and a native symbol.
func Resolve(identifier string, o Overrides) (entity.NetworkDefinition, error) {
	def, known := Lookup(identifier)
	if !known {
		if o.RPCURL == "" || o.NativeSymbol == "" {
			return entity.NetworkDefinition{}, &entity.ConfigurationError{
				Field:  "network.identifier",
				Reason: fmt.Sprintf("unknown network %q (known: %s); custom networks need rpcURL and nativeSymbol", identifier, strings.Join(Identifiers(), ", ")),
			}
		}
		def = entity.NetworkDefinition{Identifier: strings.ToLower(strings.TrimSpace(identifier)), Name: identifier}
	}

	if o.Name != "" {
		def.Name = o.Name
	}
	if o.ChainID != 0 {
		def.ChainID = o.ChainID
	}
	if o.NativeSymbol != "" {
		def.NativeSymbol = o.NativeSymbol
	}
	if o.CoinGeckoPlatformID != "" {
		def.CoinGeckoPlatformID = o.CoinGeckoPlatformID
	}
	if o.RPCURL != "" {
		def.PrimaryRPCURL = o.RPCURL
		def.FallbackRPCURLs = append([]string(nil), o.FallbackRPCURLs...)
	} else if len(o.FallbackRPCURLs) > 0 {
		def.FallbackRPCURLs = append(def.FallbackRPCURLs, o.FallbackRPCURLs...)
	}

	if len(def.RPCURLs()) == 0 {
		return entity.NetworkDefinition{}, &entity.ConfigurationError{Field: "network.rpcURL", Reason: fmt.Sprintf("no RPC endpoint resolvable for network %q", def.Identifier)}
	}
	return def, nil
}

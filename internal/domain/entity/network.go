package entity

// NetworkDefinition holds the configuration for a specific blockchain network.
type NetworkDefinition struct {
	ChainID             uint64   `json:"chainId" yaml:"chainId"`
	Name                string   `json:"name" yaml:"name"`
	Identifier          string   `json:"identifier" yaml:"identifier"` // e.g. "ethereum", "bsc"
	NativeSymbol        string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	PrimaryRPCURL       string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs     []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL    string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	CoinGeckoPlatformID string   `json:"coinGeckoPlatformId" yaml:"coinGeckoPlatformId"`
}

// RPCURLs returns the primary endpoint followed by the fallbacks, skipping empty entries.
func (d NetworkDefinition) RPCURLs() []string {
	urls := make([]string, 0, 1+len(d.FallbackRPCURLs))
	if d.PrimaryRPCURL != "" {
		urls = append(urls, d.PrimaryRPCURL)
	}
	for _, u := range d.FallbackRPCURLs {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

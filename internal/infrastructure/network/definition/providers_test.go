package networkdefinition

import (
	"errors"
	"testing"

	"balance_reporter/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	def, ok := Lookup(" Ethereum ")
	require.True(t, ok)
	assert.Equal(t, "ETH", def.NativeSymbol)
	assert.Equal(t, "ethereum", def.CoinGeckoPlatformID)

	def.FallbackRPCURLs[0] = "mutated"
	again, _ := Lookup("ethereum")
	assert.NotEqual(t, "mutated", again.FallbackRPCURLs[0])

	_, ok = Lookup("unknown-chain")
	assert.False(t, ok)
}

func TestResolve_RPCOverrideReplacesKnownEndpoints(t *testing.T) {
	def, err := Resolve("ethereum", Overrides{RPCURL: "http://localhost:8545"})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:8545"}, def.RPCURLs())
	assert.Equal(t, "ETH", def.NativeSymbol)
}

func TestResolve_KnownNetworkDefaults(t *testing.T) {
	def, err := Resolve("bsc", Overrides{FallbackRPCURLs: []string{"https://extra.example"}})
	require.NoError(t, err)
	assert.Equal(t, BSC.PrimaryRPCURL, def.PrimaryRPCURL)
	assert.Equal(t, "https://extra.example", def.FallbackRPCURLs[len(def.FallbackRPCURLs)-1])
	assert.Len(t, BSC.FallbackRPCURLs, 2)
}

func TestResolve_CustomNetwork(t *testing.T) {
	def, err := Resolve("devnet", Overrides{RPCURL: "ws://127.0.0.1:8546", NativeSymbol: "DEV", ChainID: 1337})
	require.NoError(t, err)
	assert.Equal(t, "devnet", def.Identifier)
	assert.Equal(t, uint64(1337), def.ChainID)
	assert.Equal(t, "DEV", def.NativeSymbol)
}

func TestResolve_UnknownWithoutEndpoint(t *testing.T) {
	_, err := Resolve("devnet", Overrides{NativeSymbol: "DEV"})
	var cfgErr *entity.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "network.identifier", cfgErr.Field)
}

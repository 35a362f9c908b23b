package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"balance_reporter/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
network:
  identifier: bsc
  rpcURL: https://bsc.example/rpc
input:
  path: testdata/input.json
report:
  path: out/report.csv
symbols:
  strategy: Metadata
performance:
  maxConcurrentWallets: 4
  runTimeoutSeconds: 30
`)
	cfg, err := Load(path, EnvMap{})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "testdata/input.json", cfg.Input.Path)
	assert.Equal(t, "out/report.csv", cfg.Report.Path)
	assert.Equal(t, StrategyMetadata, cfg.Symbols.Strategy)
	assert.Equal(t, 4, cfg.Performance.MaxConcurrentWallets)
	assert.Equal(t, 30, cfg.Performance.RunTimeoutSeconds)
	assert.Equal(t, 10, cfg.Performance.RPCCallTimeoutSeconds)

	assert.Equal(t, "BNB", cfg.ResolvedNetwork.NativeSymbol)
	assert.Equal(t, "binance-smart-chain", cfg.ResolvedNetwork.CoinGeckoPlatformID)
	assert.Equal(t, []string{"https://bsc.example/rpc"}, cfg.ResolvedNetwork.RPCURLs())
}

func TestLoad_DefaultsWhenDefaultFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", EnvMap{})
	require.NoError(t, err)
	assert.Equal(t, DefaultInputPath, cfg.Input.Path)
	assert.Equal(t, DefaultReportPath, cfg.Report.Path)
	assert.Equal(t, StrategyOnChain, cfg.Symbols.Strategy)
	assert.Equal(t, "ethereum", cfg.ResolvedNetwork.Identifier)
	assert.Equal(t, "ETH", cfg.ResolvedNetwork.NativeSymbol)
	assert.NotEmpty(t, cfg.ResolvedNetwork.PrimaryRPCURL)
	assert.Equal(t, 0, cfg.Performance.MaxConcurrentWallets)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"), EnvMap{})
	assert.Error(t, err)

	_, err = Load("", EnvMap{"CONFIG_PATH": filepath.Join(t.TempDir(), "nope.yml")})
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
network:
  identifier: ethereum
  rpcURL: https://from-file.example
report:
  path: from-file.csv
`)
	env := EnvMap{
		"RPC_URL":                     "http://localhost:8545",
		"REPORT_PATH":                 "from-env.csv",
		"INPUT_PATH":                  "env-input.json",
		"SYMBOL_STRATEGY":             "onchain",
		"LOG_LEVEL":                   "warn",
		"COINGECKO_API_KEY":           "secret",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4318",
		"MAX_CONCURRENT_WALLETS":      "8",
		"REPORT_UNUSED":               "ignored",
	}
	cfg, err := Load(path, env)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8545", cfg.ResolvedNetwork.PrimaryRPCURL)
	assert.Equal(t, "from-env.csv", cfg.Report.Path)
	assert.Equal(t, "env-input.json", cfg.Input.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "secret", cfg.CoinGecko.APIKey)
	assert.Equal(t, "localhost:4318", cfg.Telemetry.OTLPEndpoint)
	assert.Equal(t, 8, cfg.Performance.MaxConcurrentWallets)
}

func TestLoad_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		env       EnvMap
		wantField string
	}{
		{
			name:      "unknown strategy",
			yaml:      "symbols:\n  strategy: oracle\n",
			wantField: "symbols.strategy",
		},
		{
			name:      "metadata without platform",
			yaml:      "network:\n  identifier: devnet\n  rpcURL: http://127.0.0.1:8545\n  nativeSymbol: DEV\nsymbols:\n  strategy: metadata\n",
			wantField: "network.coinGeckoPlatformId",
		},
		{
			name:      "unknown network without endpoint",
			yaml:      "network:\n  identifier: devnet\n",
			wantField: "network.identifier",
		},
		{
			name:      "blank input path",
			yaml:      "input:\n  path: \"   \"\n",
			wantField: "input.path",
		},
		{
			name:      "bad integer override",
			yaml:      "",
			env:       EnvMap{"MAX_CONCURRENT_WALLETS": "many"},
			wantField: "MAX_CONCURRENT_WALLETS",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml), tt.env)
			var cfgErr *entity.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "network: [unclosed"), EnvMap{})
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, ".env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BALANCE_REPORTER_TEST_RPC=http://dotenv.example\n"), 0o644))
	t.Setenv("BALANCE_REPORTER_TEST_RPC", "")
	require.NoError(t, os.Unsetenv("BALANCE_REPORTER_TEST_RPC"))

	require.NoError(t, LoadDotEnv(path))
	v, ok := FromEnviron().Lookup("BALANCE_REPORTER_TEST_RPC")
	assert.True(t, ok)
	assert.Equal(t, "http://dotenv.example", v)
}

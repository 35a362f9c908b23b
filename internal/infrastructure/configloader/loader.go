package configloader

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"balance_reporter/internal/domain/entity"
	networkdefinition "balance_reporter/internal/infrastructure/network/definition"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config/config.yml"
	DefaultInputPath  = "data/input.json"
	DefaultReportPath = "balances.csv"
	DefaultNetwork    = "ethereum"

	StrategyOnChain  = "onchain"
	StrategyMetadata = "metadata"
)

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"maxSizeMB"`
	MaxBackups  int    `yaml:"maxBackups"`
	MaxAgeDays  int    `yaml:"maxAgeDays"`
	Development bool   `yaml:"development"`
}

// NetworkConfig selects the chain. Empty fields fall back to the known definition
// for Identifier.
type NetworkConfig struct {
	Identifier          string   `yaml:"identifier"`
	Name                string   `yaml:"name"`
	ChainID             uint64   `yaml:"chainId"`
	RPCURL              string   `yaml:"rpcURL"`
	FallbackRPCURLs     []string `yaml:"fallbackRPCURLs"`
	NativeSymbol        string   `yaml:"nativeSymbol"`
	CoinGeckoPlatformID string   `yaml:"coinGeckoPlatformId"`
}

// InputConfig points at the wallet and token lists.
type InputConfig struct {
	Path        string `yaml:"path"`
	WalletsFile string `yaml:"walletsFile"`
}

// ReportConfig holds the output location.
type ReportConfig struct {
	Path string `yaml:"path"`
}

// SymbolsConfig selects how display symbols are resolved.
type SymbolsConfig struct {
	Strategy string `yaml:"strategy"` // onchain or metadata
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey               string `yaml:"apiKey"`
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	CacheTTLMinutes      int    `yaml:"cacheTTLMinutes"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentWallets     int `yaml:"maxConcurrentWallets"` // 0 = unbounded
	RPCCallTimeoutSeconds    int `yaml:"rpcCallTimeoutSeconds"`
	ConnectionTimeoutSeconds int `yaml:"connectionTimeoutSeconds"`
	RunTimeoutSeconds        int `yaml:"runTimeoutSeconds"` // 0 = none
}

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                string   `yaml:"port"`
	ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds"`
	AllowedOrigins      []string `yaml:"allowedOrigins"`
}

// TelemetryConfig holds tracing settings. An empty endpoint disables export.
type TelemetryConfig struct {
	ServiceName  string `yaml:"serviceName"`
	OTLPEndpoint string `yaml:"otlpEndpoint"`
}

// Config is the top-level configuration structure.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Network     NetworkConfig     `yaml:"network"`
	Input       InputConfig       `yaml:"input"`
	Report      ReportConfig      `yaml:"report"`
	Symbols     SymbolsConfig     `yaml:"symbols"`
	CoinGecko   CoinGeckoConfig   `yaml:"coingecko"`
	Performance PerformanceConfig `yaml:"performance"`
	Server      ServerConfig      `yaml:"server"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// ResolvedNetwork is the effective network definition after defaults and overrides.
	ResolvedNetwork entity.NetworkDefinition `yaml:"-"`
}

// EnvSource looks up environment variables.
type EnvSource interface {
	Lookup(key string) (string, bool)
}

// EnvMap is an EnvSource backed by a map, handy in tests.
type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

type osEnv struct{}

func (osEnv) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

// FromEnviron returns an EnvSource over the process environment.
func FromEnviron() EnvSource { return osEnv{} }

// LoadDotEnv loads a .env file into the process environment when it exists.
// Variables already set take precedence.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Load reads the YAML configuration, applies defaults and environment overrides
// and validates the result. An empty path means CONFIG_PATH or DefaultConfigPath;
// only the default path may be absent.
func Load(path string, env EnvSource) (*Config, error) {
	if env == nil {
		env = EnvMap{}
	}
	explicit := path != ""
	if !explicit {
		if p, ok := env.Lookup("CONFIG_PATH"); ok && strings.TrimSpace(p) != "" {
			path, explicit = strings.TrimSpace(p), true
		} else {
			path = DefaultConfigPath
		}
	}

	var cfg Config
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		logrus.Infof("Config file %s not found, using defaults and environment", path)
	default:
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := applyEnv(&cfg, env); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyEnv(cfg *Config, env EnvSource) error {
	overrides := []struct {
		key    string
		target *string
	}{
		{"RPC_URL", &cfg.Network.RPCURL},
		{"NETWORK", &cfg.Network.Identifier},
		{"INPUT_PATH", &cfg.Input.Path},
		{"WALLETS_FILE", &cfg.Input.WalletsFile},
		{"REPORT_PATH", &cfg.Report.Path},
		{"SYMBOL_STRATEGY", &cfg.Symbols.Strategy},
		{"LOG_LEVEL", &cfg.Logging.Level},
		{"COINGECKO_API_KEY", &cfg.CoinGecko.APIKey},
		{"OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Telemetry.OTLPEndpoint},
		{"SERVER_PORT", &cfg.Server.Port},
	}
	for _, o := range overrides {
		if v, ok := env.Lookup(o.key); ok && strings.TrimSpace(v) != "" {
			*o.target = strings.TrimSpace(v)
		}
	}

	maxWallets, err := parseIntEnv(env, "MAX_CONCURRENT_WALLETS", cfg.Performance.MaxConcurrentWallets)
	if err != nil {
		return err
	}
	cfg.Performance.MaxConcurrentWallets = maxWallets

	runTimeout, err := parseIntEnv(env, "RUN_TIMEOUT_SECONDS", cfg.Performance.RunTimeoutSeconds)
	if err != nil {
		return err
	}
	cfg.Performance.RunTimeoutSeconds = runTimeout
	return nil
}

func parseIntEnv(env EnvSource, key string, defaultValue int) (int, error) {
	raw, ok := env.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return 0, &entity.ConfigurationError{Field: key, Reason: fmt.Sprintf("expected a non-negative integer, got %q", raw)}
	}
	return value, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Network.Identifier == "" {
		cfg.Network.Identifier = DefaultNetwork
		logrus.Infof("network.identifier not set, defaulting to %s", cfg.Network.Identifier)
	}
	if cfg.Input.Path == "" {
		cfg.Input.Path = DefaultInputPath
		logrus.Infof("input.path not set, defaulting to %s", cfg.Input.Path)
	}
	if cfg.Report.Path == "" {
		cfg.Report.Path = DefaultReportPath
		logrus.Infof("report.path not set, defaulting to %s", cfg.Report.Path)
	}
	if cfg.Symbols.Strategy == "" {
		cfg.Symbols.Strategy = StrategyOnChain
	}
	cfg.Symbols.Strategy = strings.ToLower(cfg.Symbols.Strategy)

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.CoinGecko.RequestTimeoutMillis <= 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
		logrus.Infof("coingecko.requestTimeoutMillis not set, defaulting to %d ms", cfg.CoinGecko.RequestTimeoutMillis)
	}
	if cfg.CoinGecko.CacheTTLMinutes <= 0 {
		cfg.CoinGecko.CacheTTLMinutes = 60
	}

	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
		logrus.Infof("performance.rpcCallTimeoutSeconds not set, defaulting to %d", cfg.Performance.RPCCallTimeoutSeconds)
	}
	if cfg.Performance.ConnectionTimeoutSeconds <= 0 {
		cfg.Performance.ConnectionTimeoutSeconds = 10
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 120
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "balance-reporter"
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Input.Path) == "" {
		return &entity.ConfigurationError{Field: "input.path", Reason: "input file path is empty"}
	}

	netDef, err := networkdefinition.Resolve(cfg.Network.Identifier, networkdefinition.Overrides{
		Name:                cfg.Network.Name,
		ChainID:             cfg.Network.ChainID,
		NativeSymbol:        cfg.Network.NativeSymbol,
		RPCURL:              cfg.Network.RPCURL,
		FallbackRPCURLs:     cfg.Network.FallbackRPCURLs,
		CoinGeckoPlatformID: cfg.Network.CoinGeckoPlatformID,
	})
	if err != nil {
		return err
	}
	cfg.ResolvedNetwork = netDef
	if cfg.Network.RPCURL == "" {
		logrus.Warnf("No RPC URL configured, using public endpoint %s for %s", netDef.PrimaryRPCURL, netDef.Name)
	}

	switch cfg.Symbols.Strategy {
	case StrategyOnChain:
	case StrategyMetadata:
		if netDef.CoinGeckoPlatformID == "" {
			return &entity.ConfigurationError{Field: "network.coinGeckoPlatformId", Reason: "metadata symbol strategy requires a CoinGecko platform id"}
		}
	default:
		return &entity.ConfigurationError{Field: "symbols.strategy", Reason: fmt.Sprintf("unknown strategy %q (want %s or %s)", cfg.Symbols.Strategy, StrategyOnChain, StrategyMetadata)}
	}
	return nil
}

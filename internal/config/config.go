package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"aequiswap/internal/model"
)

// ErrChainNotConfigured distinguishes infrastructure misconfiguration from a
// genuine lack of liquidity.
var ErrChainNotConfigured = errors.New("chain not configured")

// DexConfig describes one routable DEX deployment on a chain.
type DexConfig struct {
	ID       string   `mapstructure:"id"`
	Version  string   `mapstructure:"version"` // "v2" or "v3"
	Factory  string   `mapstructure:"factory"`
	Router   string   `mapstructure:"router"`
	Quoter   string   `mapstructure:"quoter"`
	FeeTiers []uint32 `mapstructure:"fee-tiers"`
}

// HopVersion returns the dex's AMM family.
func (d DexConfig) HopVersion() model.HopVersion {
	if strings.EqualFold(d.Version, "v3") {
		return model.HopV3
	}
	return model.HopV2
}

// ChainConfig describes a routable chain: its RPC endpoint, on-chain
// collaborators, and DEX descriptors.
type ChainConfig struct {
	Key           string      `mapstructure:"key"`
	ChainID       uint64      `mapstructure:"chain-id"`
	RPCURL        string      `mapstructure:"rpc"`
	Lens          string      `mapstructure:"lens"`
	Executor      string      `mapstructure:"executor"`
	WrappedNative string      `mapstructure:"wrapped-native"`
	Intermediates []string    `mapstructure:"intermediates"`
	Dexes         []DexConfig `mapstructure:"dexes"`
}

// RouterFor resolves the concrete router for a (dexID, version) hop.
func (c ChainConfig) RouterFor(dexID string, version model.HopVersion) (DexConfig, bool) {
	for _, dex := range c.Dexes {
		if strings.EqualFold(dex.ID, dexID) && dex.HopVersion() == version {
			return dex, true
		}
	}
	return DexConfig{}, false
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Listen             string
	LogLevel           string
	Chains             []ChainConfig
	SlippageDefaultBps int
	SlippageMaxBps     int
	InterhopBufferBps  int
	DeadlineSeconds    int
	QuoteTTLSeconds    int
	TokenCacheTTL      time.Duration
	MinV2Reserve       *big.Int
	MinV3Liquidity     *big.Int
	PGDSN              string
	HistoryPath        string
}

// Chain looks up a chain descriptor by key.
func (c Config) Chain(key string) (ChainConfig, error) {
	for _, chain := range c.Chains {
		if strings.EqualFold(chain.Key, key) {
			return chain, nil
		}
	}
	return ChainConfig{}, fmt.Errorf("%w: %s", ErrChainNotConfigured, key)
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AEQUISWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen", ":8080")
	v.SetDefault("log-level", "info")
	v.SetDefault("slippage-default-bps", 50)
	v.SetDefault("slippage-max-bps", 1000)
	v.SetDefault("interhop-buffer-bps", 3)
	v.SetDefault("deadline-seconds", 180)
	v.SetDefault("quote-ttl-seconds", 15)
	v.SetDefault("token-cache-ttl", 5*time.Minute)
	v.SetDefault("min-v2-reserve", "1000000000000")
	v.SetDefault("min-v3-liquidity", "0")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var chains []ChainConfig
	if err := v.UnmarshalKey("chains", &chains); err != nil {
		return Config{}, fmt.Errorf("decode chains: %w", err)
	}

	minV2, err := parseBig(v.GetString("min-v2-reserve"))
	if err != nil {
		return Config{}, fmt.Errorf("min-v2-reserve: %w", err)
	}
	minV3, err := parseBig(v.GetString("min-v3-liquidity"))
	if err != nil {
		return Config{}, fmt.Errorf("min-v3-liquidity: %w", err)
	}

	cfg := Config{
		Listen:             v.GetString("listen"),
		LogLevel:           v.GetString("log-level"),
		Chains:             chains,
		SlippageDefaultBps: v.GetInt("slippage-default-bps"),
		SlippageMaxBps:     v.GetInt("slippage-max-bps"),
		InterhopBufferBps:  v.GetInt("interhop-buffer-bps"),
		DeadlineSeconds:    v.GetInt("deadline-seconds"),
		QuoteTTLSeconds:    v.GetInt("quote-ttl-seconds"),
		TokenCacheTTL:      v.GetDuration("token-cache-ttl"),
		MinV2Reserve:       minV2,
		MinV3Liquidity:     minV3,
		PGDSN:              v.GetString("pg-dsn"),
		HistoryPath:        v.GetString("history-path"),
	}

	return cfg, nil
}

func parseBig(value string) (*big.Int, error) {
	if value == "" {
		return new(big.Int), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", value)
	}
	return parsed, nil
}

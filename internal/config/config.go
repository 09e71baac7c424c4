package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL         string
	ChainID        uint64
	Port           string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheTTL       time.Duration
	CallTimeout    time.Duration
	MaxConcurrency int
	MaxHops        int
	DeadlineOffset time.Duration
	Slippage       decimal.Decimal
	TokensFile     string
	LogLevel       string
	From           string
	PrivateKey     string
}

// Load merges config file, environment variables, and flags into Config.
// Environment variables use the DEXROUTER_ prefix, e.g. DEXROUTER_CHAIN_ID.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DEXROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain-id", uint64(1))
	v.SetDefault("port", "8080")
	v.SetDefault("redis-db", 0)
	v.SetDefault("cache-ttl", 300*time.Second)
	v.SetDefault("call-timeout", 5*time.Second)
	v.SetDefault("max-concurrency", 10)
	v.SetDefault("max-hops", 2)
	v.SetDefault("deadline-offset", 1800*time.Second)
	v.SetDefault("slippage", "0.005")
	v.SetDefault("log-level", "info")

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

	slippage, err := entities.ParseSlippage(v.GetString("slippage"))
	if err != nil {
		return Config{}, fmt.Errorf("slippage: %w", err)
	}

	cfg := Config{
		RPCURL:         v.GetString("rpc"),
		ChainID:        v.GetUint64("chain-id"),
		Port:           v.GetString("port"),
		RedisAddr:      v.GetString("redis-addr"),
		RedisPassword:  v.GetString("redis-password"),
		RedisDB:        v.GetInt("redis-db"),
		CacheTTL:       v.GetDuration("cache-ttl"),
		CallTimeout:    v.GetDuration("call-timeout"),
		MaxConcurrency: v.GetInt("max-concurrency"),
		MaxHops:        v.GetInt("max-hops"),
		DeadlineOffset: v.GetDuration("deadline-offset"),
		Slippage:       slippage,
		TokensFile:     v.GetString("tokens-file"),
		LogLevel:       v.GetString("log-level"),
		From:           v.GetString("from"),
		PrivateKey:     v.GetString("private-key"),
	}

	return cfg, cfg.Validate()
}

// Validate checks values that have no sensible fallback.
func (c Config) Validate() error {
	if _, err := Chain(c.ChainID); err != nil {
		return err
	}
	if c.CacheTTL <= 0 {
		return entities.NewValidationError("config", "cache-ttl must be positive, got %s", c.CacheTTL)
	}
	if c.CallTimeout <= 0 {
		return entities.NewValidationError("config", "call-timeout must be positive, got %s", c.CallTimeout)
	}
	if c.MaxConcurrency < 1 {
		return entities.NewValidationError("config", "max-concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if c.MaxHops < 1 || c.MaxHops > entities.MaxHopsCeiling {
		return entities.NewValidationError("config", "max-hops must be between 1 and %d, got %d", entities.MaxHopsCeiling, c.MaxHops)
	}
	if c.DeadlineOffset <= 0 {
		return entities.NewValidationError("config", "deadline-offset must be positive, got %s", c.DeadlineOffset)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Snapshot           string
	Out                string
	SolverEndpoint     string
	SolverAddress      string
	WETH               string
	RankBySurplusAfter time.Time
	RPCURL             string
	PostgresDSN        string
	Results            string
	MaxRetries         int
	RetryBackoff       time.Duration
	Timeout            time.Duration
	LogLevel           string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DRIVER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("out", "./data/auction.json")
	v.SetDefault("results", "./data/rounds.jsonl")
	v.SetDefault("weth", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("timeout", 15*time.Second)
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

	cfg := Config{
		Snapshot:       v.GetString("snapshot"),
		Out:            v.GetString("out"),
		SolverEndpoint: v.GetString("solver-endpoint"),
		SolverAddress:  v.GetString("solver-address"),
		WETH:           v.GetString("weth"),
		RPCURL:         v.GetString("rpc"),
		PostgresDSN:    v.GetString("pg-dsn"),
		Results:        v.GetString("results"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		Timeout:        v.GetDuration("timeout"),
		LogLevel:       v.GetString("log-level"),
	}

	if raw := v.GetString("rank-by-surplus-after"); raw != "" {
		cutoff, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse rank-by-surplus-after: %w", err)
		}
		cfg.RankBySurplusAfter = cutoff
	}

	return cfg, nil
}

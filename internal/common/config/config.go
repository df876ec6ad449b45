// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

// GatewayConfig holds settings for the upstream LLM gateway.
type GatewayConfig struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	Timeout             int    `mapstructure:"timeout"` // milliseconds
	MaxOutputTokens     int    `mapstructure:"max_output_tokens"`
	ContinuationBudget  int    `mapstructure:"continuation_budget"` // tokens for the single follow-up
}

// GetTimeout returns the gateway call timeout as a duration.
func (g GatewayConfig) GetTimeout() time.Duration {
	return time.Duration(g.Timeout) * time.Millisecond
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig controls the analysis result cache.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	TTL     int  `mapstructure:"ttl"` // minutes
}

// GetTTL returns the cache entry lifetime as a duration.
func (c CacheConfig) GetTTL() time.Duration {
	return time.Duration(c.TTL) * time.Minute
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func validateConfig(cfg *Config) error {
	if cfg.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	if cfg.Gateway.Model == "" {
		return fmt.Errorf("gateway.model is required")
	}
	if cfg.Cache.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when cache is enabled")
	}
	return nil
}

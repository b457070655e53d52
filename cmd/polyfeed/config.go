package main

import (
	"fmt"
	"os"

	configtypes "polyfeed/internal/config"

	"go.yaml.in/yaml/v4"
)

type config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
		PoolSize int    `yaml:"pool_size"`
		SSLMode  string `yaml:"ssl_mode"`
	} `yaml:"database"`
	Gamma struct {
		URL             string  `yaml:"url"`
		RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	} `yaml:"gamma"`
	Data struct {
		URL             string  `yaml:"url"`
		RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	} `yaml:"data"`
	Realtime struct {
		URL          string               `yaml:"url"`
		PingInterval configtypes.Duration `yaml:"ping_interval"`
		Auth         configtypes.APICreds `yaml:"auth"`
	} `yaml:"realtime"`
	PriceFeed struct {
		URL     string   `yaml:"url"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"price_feed"`
	Collector struct {
		TagSlug          string               `yaml:"tag_slug"`
		MarketLimit      int                  `yaml:"market_limit"`
		BookDepth        int                  `yaml:"book_depth"`
		SnapshotInterval configtypes.Duration `yaml:"snapshot_interval"`
	} `yaml:"collector"`
}

func readConfig(configPath string) (*config, error) {
	rawConfig, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't read file %s: %w", configPath, err)
	}

	cfg := &config{}
	if err = yaml.Unmarshal(rawConfig, cfg); err != nil {
		return nil, fmt.Errorf("couldn't parse config: %w", err)
	}

	err = validateConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't validate config: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *config) error {
	// Database
	if cfg.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if cfg.Database.Password == "" {
		return fmt.Errorf("database.password is required")
	}
	if cfg.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if cfg.Database.PoolSize <= 0 {
		return fmt.Errorf("database.pool_size must be greater than 0")
	}
	if cfg.Database.SSLMode == "" {
		return fmt.Errorf("database.ssl_mode is required")
	}

	// Collector
	if cfg.Collector.BookDepth < 0 {
		return fmt.Errorf("collector.book_depth must not be negative")
	}
	if cfg.Collector.SnapshotInterval.Duration() < 0 {
		return fmt.Errorf("collector.snapshot_interval must not be negative")
	}

	return nil
}

// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type SolanaConfig struct {
	RPCURL          string        `yaml:"rpc_url"`
	TreasuryWallet  string        `yaml:"treasury_wallet"`
	Commitment      string        `yaml:"commitment"` // processed|confirmed|finalized
	ConfirmTimeout  time.Duration `yaml:"confirm_timeout"`
	ConfirmInterval time.Duration `yaml:"confirm_interval"`
}

type PricingConfig struct {
	Endpoint string `yaml:"endpoint"` // price API URL
}

type AuthConfig struct {
	HMACSecret string `yaml:"hmac_secret"`
}

type WorkersConfig struct {
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	ReconcileStale    time.Duration `yaml:"reconcile_stale"`
	ExpiryInterval    time.Duration `yaml:"expiry_interval"`
}

type RateLimitConfig struct {
	PaymentsPerMinute int `yaml:"payments_per_minute"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Solana    SolanaConfig    `yaml:"solana"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Auth      AuthConfig      `yaml:"auth"`
	Workers   WorkersConfig   `yaml:"workers"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(configPath string, dev bool) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Solana.Commitment == "" {
		cfg.Solana.Commitment = "confirmed"
	}
	if cfg.Solana.ConfirmTimeout <= 0 {
		cfg.Solana.ConfirmTimeout = 90 * time.Second
	}
	if cfg.Solana.ConfirmInterval <= 0 {
		cfg.Solana.ConfirmInterval = 2 * time.Second
	}
	if cfg.Pricing.Endpoint == "" {
		cfg.Pricing.Endpoint = "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"
	}
	if cfg.Workers.ReconcileInterval <= 0 {
		cfg.Workers.ReconcileInterval = time.Minute
	}
	if cfg.Workers.ReconcileStale <= 0 {
		cfg.Workers.ReconcileStale = 10 * time.Minute
	}
	if cfg.Workers.ExpiryInterval <= 0 {
		cfg.Workers.ExpiryInterval = time.Hour
	}
	if cfg.RateLimit.PaymentsPerMinute <= 0 {
		cfg.RateLimit.PaymentsPerMinute = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Solana.RPCURL == "" {
		return nil, errors.New("solana.rpc_url is required")
	}
	if cfg.Solana.TreasuryWallet == "" {
		return nil, errors.New("solana.treasury_wallet is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}

package config

import (
    "fmt"
    "time"

    "github.com/kelseyhightower/envconfig"
)

type RateLimitConfig struct {
    Enabled        bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
    Capacity       int           `envconfig:"RATE_LIMIT_CAPACITY" default:"60"`
    RefillTokens   int           `envconfig:"RATE_LIMIT_REFILL_TOKENS" default:"1"`
    RefillInterval time.Duration `envconfig:"RATE_LIMIT_REFILL_INTERVAL" default:"1s"`
    TTL            time.Duration `envconfig:"RATE_LIMIT_TTL" default:"10m"`
    KeyStrategy    string        `envconfig:"RATE_LIMIT_KEY_STRATEGY" default:"ip_user_route"`
    Prefix         string        `envconfig:"RATE_LIMIT_PREFIX" default:"rl"`
    Debug          bool          `envconfig:"RATE_LIMIT_DEBUG" default:"false"`
}

func LoadRateLimitConfig() (RateLimitConfig, error) {
    var cfg RateLimitConfig
    if err := envconfig.Process("", &cfg); err != nil {
        return RateLimitConfig{}, fmt.Errorf("load rate limit config: %w", err)
    }
    return cfg.normalize(), nil
}

// normalize clamps values the Lua bucket cannot work with.
func (c RateLimitConfig) normalize() RateLimitConfig {
    if c.Capacity < 1 { c.Capacity = 1 }
    if c.RefillTokens < 1 { c.RefillTokens = 1 }
    if c.RefillInterval <= 0 { c.RefillInterval = time.Second }
    minTTL := 5 * c.RefillInterval
    if c.TTL < minTTL { c.TTL = minTTL }
    return c
}

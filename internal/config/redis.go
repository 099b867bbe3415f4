package config

// Redis backs HTTP response caching and distributed rate limiting.  If the
// server cannot be reached at startup the constructor returns nil and callers
// run with both features disabled.

import (
    "context"
    "crypto/tls"
    "fmt"
    "time"

    "github.com/kelseyhightower/envconfig"
    "github.com/redis/go-redis/v9"
)

// RedisConfig carries connection settings.  Addr is used when Host/Port are
// not both set.
type RedisConfig struct {
    Host     string `envconfig:"REDIS_HOST"`
    Port     string `envconfig:"REDIS_PORT"`
    Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
    Password string `envconfig:"REDIS_PASSWORD"`
    DB       int    `envconfig:"REDIS_DB" default:"0"`
    TLS      bool   `envconfig:"REDIS_TLS" default:"false"`
}

func LoadRedisConfig() (RedisConfig, error) {
    var cfg RedisConfig
    if err := envconfig.Process("", &cfg); err != nil {
        return RedisConfig{}, fmt.Errorf("load redis config: %w", err)
    }
    if cfg.Host != "" && cfg.Port != "" {
        cfg.Addr = cfg.Host + ":" + cfg.Port
    }
    return cfg, nil
}

// NewRedisClient dials Redis and pings it with a short timeout.  The
// returned client is nil if the server is unreachable.
func NewRedisClient(cfg RedisConfig) *redis.Client {
    var tlsConf *tls.Config
    if cfg.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      cfg.Addr,
        Password:  cfg.Password,
        DB:        cfg.DB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}

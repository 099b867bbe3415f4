package config // package config loads application configuration from environment variables

import (
    "fmt"

    "github.com/joho/godotenv"               // optional .env file for local runs
    "github.com/kelseyhightower/envconfig"   // struct tags -> env vars
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; required ones fail Load when unset.
type Config struct {
    Env            string `envconfig:"APP_ENV" default:"dev"`
    Port           string `envconfig:"APP_PORT" default:"8080"`
    DBUser         string `envconfig:"DB_USER" required:"true"`
    DBPass         string `envconfig:"DB_PASS"` // empty allowed
    DBHost         string `envconfig:"DB_HOST" default:"127.0.0.1"`
    DBPort         string `envconfig:"DB_PORT" default:"3306"`
    DBName         string `envconfig:"DB_NAME" required:"true"`
    JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
    AccessTTLMin   int    `envconfig:"ACCESS_TOKEN_TTL_MIN" default:"15"`
    RefreshTTLDays int    `envconfig:"REFRESH_TOKEN_TTL_DAYS" default:"7"`
    BcryptCost     int    `envconfig:"BCRYPT_COST" default:"10"`

    // AdminNotifyUserID receives booking requests for slots that carry no
    // creating administrator.
    AdminNotifyUserID uint64 `envconfig:"ADMIN_NOTIFY_USER_ID" default:"1"`

    // Bootstrap administrator, created on start when both are set.
    AdminEmail    string `envconfig:"ADMIN_EMAIL"`
    AdminPassword string `envconfig:"ADMIN_PASSWORD"`

    // OTLPEndpoint enables tracing when set (host:port of an OTLP gRPC collector).
    OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
    ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"tv-ad-booking"`
}

// LoadDotEnv reads a .env file into the process environment when one exists.
// A missing file is not an error.
func LoadDotEnv(paths ...string) {
    _ = godotenv.Load(paths...)
}

// Load reads configuration values from environment variables.
func Load() (Config, error) {
    var cfg Config
    if err := envconfig.Process("", &cfg); err != nil {
        return Config{}, fmt.Errorf("load config: %w", err)
    }
    if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
        return Config{}, fmt.Errorf("load config: BCRYPT_COST out of range: %d", cfg.BcryptCost)
    }
    return cfg, nil
}

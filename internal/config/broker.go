package config

import (
    "fmt"

    "github.com/kelseyhightower/envconfig"
)

// BrokerConfig controls the RabbitMQ event channel.  An empty URL disables
// both the publisher and the audit consumer.
type BrokerConfig struct {
    URL         string `envconfig:"RABBITMQ_URL"`
    Queue       string `envconfig:"BOOKING_EVENTS_QUEUE" default:"booking.events"`
    AuditLogDir string `envconfig:"BOOKING_AUDIT_DIR" default:"logs"`
    Consume     bool   `envconfig:"BOOKING_AUDIT_CONSUMER" default:"true"`
}

func LoadBrokerConfig() (BrokerConfig, error) {
    var cfg BrokerConfig
    if err := envconfig.Process("", &cfg); err != nil {
        return BrokerConfig{}, fmt.Errorf("load broker config: %w", err)
    }
    return cfg, nil
}

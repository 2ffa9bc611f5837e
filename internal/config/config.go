package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Log       LogConfig
	Auth      AuthConfig
	Shop      ShopConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
type DBConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        int    `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"storefront"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// URL returns the plain PostgreSQL connection URL (no pool parameters).
func (c DBConfig) URL() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, sslMode)
}

// DSN returns the pgxpool connection string, including pool sizing when set.
func (c DBConfig) DSN() string {
	dsn := c.URL()
	if c.MaxConns > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", c.MaxConns)
	}
	if c.MinConns > 0 {
		dsn += fmt.Sprintf("&pool_min_conns=%d", c.MinConns)
	}
	return dsn
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// AuthConfig holds token verification settings.
type AuthConfig struct {
	JWTSecret string `envconfig:"AUTH_JWT_SECRET" default:"change-this-in-production"`
}

// ShopConfig holds storefront pricing policy.
type ShopConfig struct {
	BaseShippingFee int64 `envconfig:"SHOP_BASE_SHIPPING_FEE" default:"1000"`
}

// KafkaConfig holds event publishing settings. No brokers disables publishing.
type KafkaConfig struct {
	Brokers    []string `envconfig:"KAFKA_BROKERS"`
	OrderTopic string   `envconfig:"KAFKA_ORDER_TOPIC" default:"order.placed"`
}

// Enabled reports whether at least one broker is configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// TelemetryConfig holds OpenTelemetry settings. An empty OTLP endpoint disables trace export.
type TelemetryConfig struct {
	ServiceName    string `envconfig:"OTEL_SERVICE_NAME" default:"storefront"`
	ServiceVersion string `envconfig:"OTEL_SERVICE_VERSION" default:"dev"`
	OTLPEndpoint   string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Shop.BaseShippingFee < 0 {
		return nil, fmt.Errorf("SHOP_BASE_SHIPPING_FEE must not be negative, got %d", cfg.Shop.BaseShippingFee)
	}
	return &cfg, nil
}

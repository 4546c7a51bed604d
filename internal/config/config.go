package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_PORT"` specify the environment variable name and
// `default:""` provides a fallback when the variable is unset. The SMTP and
// Postgres blocks are optional: their features are enabled only when a host
// is configured, so the service stays usable with no backing infrastructure.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	HttpServer ServerConfig
	Catalog    CatalogConfig
	Inquiry    InquiryConfig
	SMTP       SMTPConfig
	Postgres   PostgresConfig
}

// Development reports whether the service runs in a non-production
// environment, which enables the inquiry log fallback.
func (c *Config) Development() bool {
	return c.AppEnv != "production"
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// CatalogConfig selects the catalog source document. An empty path means
// the fixture embedded in the binary.
type CatalogConfig struct {
	Path string `envconfig:"CATALOG_PATH"`
}

// InquiryConfig configures the remote inquiry backend. The default endpoint
// is a documented placeholder; requests against it fail, which in
// development degrades to logging the inquiry instead of delivering it.
type InquiryConfig struct {
	EndpointBaseURL  string        `envconfig:"INQUIRY_API_URL" default:"https://your-backend-api.com/api"`
	SalesRecipient   string        `envconfig:"INQUIRY_SALES_RECIPIENT" default:"export@indianharvest.com"`
	SupportRecipient string        `envconfig:"INQUIRY_SUPPORT_RECIPIENT" default:"support@indianharvest.com"`
	Timeout          time.Duration `envconfig:"INQUIRY_TIMEOUT" default:"10s"`
}

// SMTPConfig holds the optional direct-mail settings for inquiry
// notifications.
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM" default:"noreply@indianharvest.com"`
}

// Enabled reports whether direct SMTP notification is configured.
func (s *SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// PostgresConfig holds the optional database settings for inquiry
// persistence.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
}

// Enabled reports whether inquiry persistence is configured.
func (pc *PostgresConfig) Enabled() bool {
	return pc.Host != ""
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

var cfg Config

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	return &cfg, nil
}

// Get returns the loaded configuration.
// Panics if Load() has not been called successfully.
func Get() *Config {
	if cfg.Inquiry.EndpointBaseURL == "" {
		log.Fatal("Configuration has not been loaded. Call config.Load() first.")
	}
	return &cfg
}

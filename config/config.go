// Package config loads linkbot configuration from the environment
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the bot
type Config struct {
	Telegram  TelegramConfig
	Gate      GateConfig
	Admin     AdminConfig
	Audit     AuditConfig
	Resolver  ResolverConfig
	Delivery  DeliveryConfig
	Broadcast BroadcastConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
	Logging   LoggingConfig
	Service   ServiceConfig
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string
	// Workers bounds the number of updates handled concurrently
	Workers int
}

// GateConfig holds the required-channel settings
type GateConfig struct {
	// Channel is a channel username (with or without @) or a numeric chat id
	Channel    string
	InviteLink string
}

// AdminConfig identifies the single administrator
type AdminConfig struct {
	UserID int64
}

// AuditConfig holds the optional audit channel
type AuditConfig struct {
	Channel string
}

// ResolverConfig holds the external resolution service settings
type ResolverConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DeliveryConfig holds ephemeral reply settings
type DeliveryConfig struct {
	DeleteAfter time.Duration
	Persist     bool
}

// BroadcastConfig holds broadcast fan-out settings
type BroadcastConfig struct {
	Workers int
	Rate    float64
}

// DatabaseConfig holds registry storage configuration
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration for the audit event stream
type KafkaConfig struct {
	Enabled    bool
	Brokers    []string
	AuditTopic string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config    *Config
	Telegram  *TelegramConfig
	Gate      *GateConfig
	Admin     *AdminConfig
	Audit     *AuditConfig
	Resolver  *ResolverConfig
	Delivery  *DeliveryConfig
	Broadcast *BroadcastConfig
	Database  *DatabaseConfig
	Kafka     *KafkaConfig
	Logging   *LoggingConfig
	Service   *ServiceConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:    cfg,
		Telegram:  &cfg.Telegram,
		Gate:      &cfg.Gate,
		Admin:     &cfg.Admin,
		Audit:     &cfg.Audit,
		Resolver:  &cfg.Resolver,
		Delivery:  &cfg.Delivery,
		Broadcast: &cfg.Broadcast,
		Database:  &cfg.Database,
		Kafka:     &cfg.Kafka,
		Logging:   &cfg.Logging,
		Service:   &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			Workers:  getEnvInt("BOT_WORKERS", 32),
		},
		Gate: GateConfig{
			Channel:    getEnv("FORCE_SUB_CHANNEL", ""),
			InviteLink: getEnv("REQUIRED_CHANNEL_INVITE_LINK", ""),
		},
		Admin: AdminConfig{
			UserID: getEnvInt64("ADMIN_ID", 0),
		},
		Audit: AuditConfig{
			Channel: getEnv("AUDIT_CHANNEL", ""),
		},
		Resolver: ResolverConfig{
			BaseURL: getEnv("RESOLVER_API_URL", "https://teraboxdownloder.rishuapi.workers.dev/"),
			Timeout: getEnvDuration("RESOLVER_TIMEOUT", 30*time.Second),
		},
		Delivery: DeliveryConfig{
			DeleteAfter: time.Duration(getEnvInt("DELETE_AFTER_MINUTES", 10)) * time.Minute,
			Persist:     getEnvBool("DELETION_PERSIST", true),
		},
		Broadcast: BroadcastConfig{
			Workers: getEnvInt("BROADCAST_WORKERS", 8),
			Rate:    getEnvFloat("BROADCAST_RATE", 25),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
			Path:     getEnv("DATABASE_PATH", "linkbot.db"),
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			User:     getEnv("DATABASE_USER", "linkbot"),
			Password: getEnv("DATABASE_PASSWORD", "linkbot"),
			Name:     getEnv("DATABASE_NAME", "linkbot"),
			SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Enabled:    getEnvBool("KAFKA_ENABLED", false),
			Brokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9093"), ","),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "linkbot.audit"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "linkbot"),
			Port: getEnv("SERVICE_PORT", "8081"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.Gate.Channel == "" {
		return fmt.Errorf("FORCE_SUB_CHANNEL is required")
	}

	if c.Delivery.DeleteAfter <= 0 {
		return fmt.Errorf("DELETE_AFTER_MINUTES must be positive")
	}

	if c.Resolver.BaseURL == "" {
		return fmt.Errorf("RESOLVER_API_URL is required")
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Brokers[0] == "") {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}

	return nil
}

// DSN returns the postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or plain seconds ("45")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

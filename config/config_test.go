package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")
	t.Setenv("FORCE_SUB_CHANNEL", "linkbot_news")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.Delivery.DeleteAfter)
	assert.True(t, cfg.Delivery.Persist)
	assert.Equal(t, 30*time.Second, cfg.Resolver.Timeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, int64(0), cfg.Admin.UserID)
	assert.Empty(t, cfg.Audit.Channel)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 32, cfg.Telegram.Workers)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_ID", "424242")
	t.Setenv("AUDIT_CHANNEL", "-1001234567890")
	t.Setenv("DELETE_AFTER_MINUTES", "3")
	t.Setenv("RESOLVER_TIMEOUT", "45")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("BROADCAST_RATE", "12.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(424242), cfg.Admin.UserID)
	assert.Equal(t, "-1001234567890", cfg.Audit.Channel)
	assert.Equal(t, 3*time.Minute, cfg.Delivery.DeleteAfter)
	assert.Equal(t, 45*time.Second, cfg.Resolver.Timeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.InDelta(t, 12.5, cfg.Broadcast.Rate, 0.0001)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Telegram: TelegramConfig{BotToken: "token"},
			Gate:     GateConfig{Channel: "chan"},
			Resolver: ResolverConfig{BaseURL: "https://resolver.example/"},
			Delivery: DeliveryConfig{DeleteAfter: time.Minute},
			Database: DatabaseConfig{Driver: "sqlite"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "no token", mutate: func(c *Config) { c.Telegram.BotToken = "" }, wantErr: "TELEGRAM_BOT_TOKEN"},
		{name: "no channel", mutate: func(c *Config) { c.Gate.Channel = "" }, wantErr: "FORCE_SUB_CHANNEL"},
		{name: "zero delay", mutate: func(c *Config) { c.Delivery.DeleteAfter = 0 }, wantErr: "DELETE_AFTER_MINUTES"},
		{name: "bad driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "DATABASE_DRIVER"},
		{
			name:    "kafka without brokers",
			mutate:  func(c *Config) { c.Kafka = KafkaConfig{Enabled: true, Brokers: []string{""}} },
			wantErr: "KAFKA_BROKERS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}

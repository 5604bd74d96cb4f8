package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: "8080", Host: "localhost"},
		Database: DatabaseConfig{URL: "postgres://localhost/auction", Driver: DriverPostgres},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		Auction: AuctionConfig{
			BidMaxRetries:     3,
			PaymentMethod:     "card",
			SchedulerInterval: time.Second,
		},
		Webhook: WebhookConfig{DedupeTTL: time.Hour, ProcessingTTL: time.Minute, DedupeCacheSize: 16},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "memory driver needs no url", mutate: func(c *Config) {
			c.Database = DatabaseConfig{Driver: DriverMemory}
		}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "server port"},
		{name: "postgres without url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: "database URL"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "sqlite" }, wantErr: "unsupported storage driver"},
		{name: "missing redis", mutate: func(c *Config) { c.Redis.Addr = "" }, wantErr: "Redis address"},
		{name: "stripe without webhook secret", mutate: func(c *Config) { c.Stripe.SecretKey = "sk_test_1" }, wantErr: "webhook secret"},
		{name: "stripe fully configured", mutate: func(c *Config) {
			c.Stripe = StripeConfig{SecretKey: "sk_test_1", WebhookSecret: "whsec_1"}
		}},
		{name: "zero retries", mutate: func(c *Config) { c.Auction.BidMaxRetries = 0 }, wantErr: "bid max retries"},
		{name: "missing payment method", mutate: func(c *Config) { c.Auction.PaymentMethod = "" }, wantErr: "payment method"},
		{name: "zero interval", mutate: func(c *Config) { c.Auction.SchedulerInterval = 0 }, wantErr: "scheduler interval"},
		{name: "zero processing ttl", mutate: func(c *Config) { c.Webhook.ProcessingTTL = 0 }, wantErr: "processing ttl"},
		{name: "processing ttl above dedupe ttl", mutate: func(c *Config) { c.Webhook.ProcessingTTL = 2 * time.Hour }, wantErr: "processing ttl"},
		{name: "empty dedupe cache", mutate: func(c *Config) { c.Webhook.DedupeCacheSize = 0 }, wantErr: "dedupe cache size"},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv(Port, "9090")
	t.Setenv(StorageDriver, "MEMORY")
	t.Setenv(BidMaxRetries, "7")
	t.Setenv(SchedulerInterval, "250ms")
	t.Setenv(StripeSecretKey, "sk_test_1")
	t.Setenv(StripeWebhookSecret, "whsec_1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, DriverMemory, cfg.Database.Driver)
	require.Equal(t, 7, cfg.Auction.BidMaxRetries)
	require.Equal(t, 250*time.Millisecond, cfg.Auction.SchedulerInterval)
	require.True(t, cfg.Stripe.Enabled())

	// Defaults fill the rest
	require.Equal(t, "card", cfg.Auction.PaymentMethod)
	require.Equal(t, 72*time.Hour, cfg.Webhook.DedupeTTL)
	require.Equal(t, 5*time.Minute, cfg.Webhook.ProcessingTTL)
	require.Equal(t, 4096, cfg.Webhook.DedupeCacheSize)
	require.NoError(t, cfg.Validate())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, int32(100), cfg.Ledger.StartingBalance)
	assert.Equal(t, 3, cfg.Settlement.MaxRetries)
	assert.Equal(t, "swaps", cfg.Kafka.SwapsTopic)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Hour, cfg.Cache.ItemTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STARTING_BALANCE", "250")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SETTLEMENT_RETRY_BACKOFF", "200ms")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int32(250), cfg.Ledger.StartingBalance)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 200*time.Millisecond, cfg.Settlement.RetryBackoff)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("STARTING_BALANCE", "-5")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "STARTING_BALANCE")
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "core_safety", cfg.Engine.Bundle)
	assert.Equal(t, 8, cfg.Engine.BatchConcurrency)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CURAFRAME_ADDR", ":9090")
	t.Setenv("CURAFRAME_BUNDLE", "cns_drug")
	t.Setenv("CURAFRAME_HISTORY_LIMIT", "50")
	t.Setenv("CURAFRAME_KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("CURAFRAME_REDIS_READ_TIMEOUT", "250ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "cns_drug", cfg.Engine.Bundle)
	assert.Equal(t, 50, cfg.Engine.HistoryLimit)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.ReadTimeout)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad integer", key: "CURAFRAME_HISTORY_LIMIT", val: "lots"},
		{name: "bad duration", key: "CURAFRAME_SHUTDOWN_TIMEOUT", val: "10"},
		{name: "negative history", key: "CURAFRAME_HISTORY_LIMIT", val: "-1"},
		{name: "zero concurrency", key: "CURAFRAME_BATCH_CONCURRENCY", val: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

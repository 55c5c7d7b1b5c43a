package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curaframe/internal/platform/config"
)

func TestOpenWithoutURL(t *testing.T) {
	client, err := Open(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open(context.Background(), config.RedisConfig{URL: "://not-a-url"})
	assert.ErrorContains(t, err, "parse redis URL")
}

func TestOptions(t *testing.T) {
	opts, err := Options(config.RedisConfig{
		URL:         "redis://localhost:6379/2",
		PoolSize:    20,
		ReadTimeout: 250 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 250*time.Millisecond, opts.ReadTimeout)
	assert.Zero(t, opts.MinIdleConns, "unset fields keep the client default")
}

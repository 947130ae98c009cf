package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"olympus.io/loot-of-olympus/internal/config"
)

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cli, err := NewClient(context.Background(), &config.DBCredential{Address: mr.Host(), Port: mr.Port()})
	require.NoError(t, err)
	defer cli.Close()
	require.NoError(t, cli.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr, port := mr.Host(), mr.Port()
	mr.Close()
	_, err := NewClient(context.Background(), &config.DBCredential{Address: addr, Port: port})
	assert.Error(t, err)
}

func TestNewSubmitLimiter_PerMinute(t *testing.T) {
	l := NewSubmitLimiter(nil, 5)
	assert.Equal(t, 5, l.limit.Rate)
	assert.Equal(t, 5, l.limit.Burst)
	assert.Equal(t, time.Minute, l.limit.Period)
}

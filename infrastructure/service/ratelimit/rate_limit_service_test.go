package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimitService_Disabled(t *testing.T) {
	svc, err := NewRateLimitService(RateLimitConfig{Enabled: false}, logrus.New())
	require.NoError(t, err)

	ctx := context.Background()
	allowed, err := svc.CheckLimit(ctx, "login:ip:127.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, svc.Increment(ctx, "k", time.Minute))
	require.NoError(t, svc.Block(ctx, "k", time.Minute, "test"))

	blocked, err := svc.IsBlocked(ctx, "k")
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.NoError(t, svc.Reset(ctx, "k"))
}

func TestNewRateLimitService_BadURL(t *testing.T) {
	_, err := NewRateLimitService(RateLimitConfig{Enabled: true, RedisURL: "://bad"}, logrus.New())
	assert.Error(t, err)
}

func TestBlockedKey(t *testing.T) {
	assert.Equal(t, "blocked:login:ip:1.2.3.4", blockedKey("login:ip:1.2.3.4"))
}

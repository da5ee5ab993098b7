package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_DisabledAllowsEverything(t *testing.T) {
	tests := map[string]*ratelimit.Limiter{
		"nil limiter":  nil,
		"nil client":   ratelimit.New(nil, ratelimit.Rule{Window: time.Minute, MaxRequests: 1}),
		"no max":       ratelimit.New(ratelimit.NewRedisClient("127.0.0.1:1", "", 0), ratelimit.Rule{Window: time.Minute}),
		"short window": ratelimit.New(ratelimit.NewRedisClient("127.0.0.1:1", "", 0), ratelimit.Rule{Window: time.Millisecond, MaxRequests: 1}),
	}
	for name, l := range tests {
		t.Run(name, func(t *testing.T) {
			assert.False(t, l.Enabled())
			d, err := l.Allow(context.Background(), "courier-1")
			require.NoError(t, err)
			assert.True(t, d.Allowed)
		})
	}
}

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	assert.Nil(t, ratelimit.NewRedisClient(" ", "", 0))
}

// Package ratelimit counts requests per key in fixed Redis windows.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// Rule allows MaxRequests per Window for each key under Prefix.
type Rule struct {
	Prefix      string
	Window      time.Duration
	MaxRequests int
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

// Limiter is safe for concurrent use. A nil client disables limiting.
type Limiter struct {
	client *redis.Client
	rule   Rule
}

func New(client *redis.Client, rule Rule) *Limiter {
	return &Limiter{client: client, rule: rule}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.client != nil && l.rule.Window >= time.Second && l.rule.MaxRequests > 0
}

func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if !l.Enabled() {
		return Decision{Allowed: true}, nil
	}
	key = strings.TrimSpace(key)
	if l.rule.Prefix != "" {
		key = fmt.Sprintf("%s:%s", l.rule.Prefix, key)
	}

	window := int(l.rule.Window / time.Second)
	result, err := windowScript.Run(ctx, l.client, []string{key}, window).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	values, ok := result.([]any)
	if !ok || len(values) < 2 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected result %T", result)
	}
	count, _ := values[0].(int64)
	ttl, _ := values[1].(int64)

	if count <= int64(l.rule.MaxRequests) {
		return Decision{Allowed: true, Count: count}, nil
	}
	wait := time.Duration(ttl) * time.Second
	if wait < time.Second {
		wait = l.rule.Window
	}
	return Decision{Allowed: false, Count: count, RetryAfter: wait}, nil
}

// NewRedisClient opens a client for addr; an empty addr returns nil.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if strings.TrimSpace(addr) == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// rateLimitScript is a Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

local resetAt = now + window
return {1, resetAt}
`)

// attemptScript bumps an attempt counter and starts its window on the first
// attempt only, so later attempts do not extend the lockout. It returns the
// new count and the milliseconds left in the window.
var attemptScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// RateLimiter keeps rate limit state in Redis so every replica shares it.
// Redis failures never block traffic.
type RateLimiter struct {
	client *redis.Client
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckLimit checks if a request is allowed under the rate limit
func (rl *RateLimiter) CheckLimit(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
) (allowed bool, resetAt time.Time) {
	now := time.Now().Unix()
	fullKey := fmt.Sprintf("ratelimit:%s", key)

	result, err := rateLimitScript.Run(
		ctx,
		rl.client,
		[]string{fullKey},
		now,
		int64(window.Seconds()),
		limit,
	).Int64Slice()

	if err != nil {
		log.Warn().
			Err(err).
			Str("key", key).
			Msg("rate limit check failed, allowing request")
		return true, time.Now().Add(window)
	}

	if len(result) != 2 {
		log.Warn().Str("key", key).Msg("unexpected rate limit result, allowing request")
		return true, time.Now().Add(window)
	}

	return result[0] == 1, time.Unix(result[1], 0)
}

func failureKey(key string) string {
	return fmt.Sprintf("failures:%s", key)
}

// Attempt counts one attempt for key and returns the attempts so far in the
// window and the time until it ends. On Redis errors it reports no attempts.
func (rl *RateLimiter) Attempt(ctx context.Context, key string, window time.Duration) (int, time.Duration) {
	result, err := attemptScript.Run(ctx, rl.client, []string{failureKey(key)}, window.Milliseconds()).Int64Slice()
	if err != nil || len(result) != 2 {
		log.Warn().Err(err).Str("key", key).Msg("attempt count failed, allowing request")
		return 0, 0
	}

	ttl := time.Duration(result[1]) * time.Millisecond
	if ttl < 0 {
		ttl = 0
	}
	return int(result[0]), ttl
}

func (rl *RateLimiter) Reset(ctx context.Context, key string) {
	if err := rl.client.Del(ctx, failureKey(key)).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to reset attempts")
	}
}

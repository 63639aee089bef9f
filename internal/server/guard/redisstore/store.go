// Package redisstore keeps login rate-limit counters in Redis so that
// several server instances share one budget per client.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securepass/internal/server/guard"
	"github.com/redis/go-redis/v9"
)

// hitScript runs the fixed-window step for one key inside Redis.
//
// KEYS[1] counter hash
// ARGV[1] now (ms), ARGV[2] window (ms), ARGV[3] limit
// returns {allowed, count, window_start_ms}
var hitScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local count = tonumber(redis.call('HGET', KEYS[1], 'count'))
local start = tonumber(redis.call('HGET', KEYS[1], 'start'))

if count == nil or start == nil or now - start > window then
  count = 0
  start = now
end

local allowed = 0
if count < limit then
  count = count + 1
  allowed = 1
end

redis.call('HSET', KEYS[1], 'count', count, 'start', start)
redis.call('PEXPIRE', KEYS[1], window * 2)

return {allowed, count, start}
`)

// Store implements guard.CounterStore on a Redis client.
type Store struct {
	rdb    redis.Scripter
	prefix string
}

// New wraps rdb; keys are stored as prefix+clientKey.
func New(rdb redis.Scripter, prefix string) *Store {
	if prefix == "" {
		prefix = "securepass:ratelimit:"
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) Hit(ctx context.Context, key string, now time.Time, p guard.Policy) (guard.HitResult, error) {
	res, err := hitScript.Run(ctx, s.rdb, []string{s.prefix + key},
		now.UnixMilli(), p.Window.Milliseconds(), p.Limit).Int64Slice()
	if err != nil {
		return guard.HitResult{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return guard.HitResult{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	return guard.HitResult{
		Allowed: res[0] == 1,
		Counter: guard.Counter{
			Count:       int(res[1]),
			WindowStart: time.UnixMilli(res[2]),
		},
	}, nil
}

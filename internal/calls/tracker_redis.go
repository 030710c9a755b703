package calls

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "phoneline:active_calls:"

var startCallScript = redis.NewScript(`
-- KEYS[1] = sorted set of active calls on a line
-- ARGV[1] = call sid
-- ARGV[2] = now (unix ms)
-- ARGV[3] = ttl_ms
--
-- Returns the number of active calls after registering this one.
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', tonumber(ARGV[2]) - tonumber(ARGV[3]))
-- NX keeps the original start time on webhook retries.
redis.call('ZADD', KEYS[1], 'NX', ARGV[2], ARGV[1])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return redis.call('ZCARD', KEYS[1])
`)

var endCallScript = redis.NewScript(`
-- KEYS[1] = sorted set of active calls on a line
-- ARGV[1] = call sid
redis.call('ZREM', KEYS[1], ARGV[1])
if redis.call('ZCARD', KEYS[1]) == 0 then
  redis.call('DEL', KEYS[1])
end
return 1
`)

var countCallsScript = redis.NewScript(`
-- KEYS[1] = sorted set of active calls on a line
-- ARGV[1] = now (unix ms)
-- ARGV[2] = ttl_ms
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', tonumber(ARGV[1]) - tonumber(ARGV[2]))
return redis.call('ZCARD', KEYS[1])
`)

// RedisTracker keeps one sorted set per line, scored by call start time.
//
// Safety properties:
// - Each operation is a single atomic Lua script.
// - Key TTL and score pruning prevent leaked calls on process crash or lost callbacks.
type RedisTracker struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewRedisTracker(rdb *redis.Client, ttl time.Duration) *RedisTracker {
	if ttl <= 0 {
		ttl = DefaultCallTTL
	}
	return &RedisTracker{rdb: rdb, ttl: ttl, now: time.Now}
}

func (t *RedisTracker) Start(ctx context.Context, line, callSID string) error {
	if err := t.check(line); err != nil {
		return err
	}
	if callSID == "" {
		return ErrInvalidArgument
	}
	_, err := startCallScript.Run(ctx, t.rdb, []string{redisKeyPrefix + line}, callSID, t.now().UnixMilli(), t.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("calls: start %s: %w", callSID, err)
	}
	return nil
}

func (t *RedisTracker) End(ctx context.Context, line, callSID string) error {
	if err := t.check(line); err != nil {
		return err
	}
	if callSID == "" {
		return ErrInvalidArgument
	}
	if _, err := endCallScript.Run(ctx, t.rdb, []string{redisKeyPrefix + line}, callSID).Result(); err != nil {
		return fmt.Errorf("calls: end %s: %w", callSID, err)
	}
	return nil
}

func (t *RedisTracker) ActiveCount(ctx context.Context, line string) (int, error) {
	if err := t.check(line); err != nil {
		return 0, err
	}
	n, err := countCallsScript.Run(ctx, t.rdb, []string{redisKeyPrefix + line}, t.now().UnixMilli(), t.ttl.Milliseconds()).Int()
	if err != nil {
		return 0, fmt.Errorf("calls: count: %w", err)
	}
	return n, nil
}

func (t *RedisTracker) check(line string) error {
	if t.rdb == nil {
		return fmt.Errorf("calls: redis client is nil")
	}
	if line == "" {
		return ErrInvalidArgument
	}
	return nil
}

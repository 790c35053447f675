package runlock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"charterlens/pkg/logger"
)

const (
	defaultLockKey = "analytics:collect-lock"

	// TTL bounds the lock lifetime; a run that outlives it has either
	// crashed or hung past any useful point, and the next trigger may proceed.
	lockTTL = 30 * time.Minute

	acquireTimeout = 5 * time.Second
)

// Lock guards against overlapping pipeline runs across process instances.
type Lock interface {
	// TryAcquire attempts to take the lock without blocking.
	TryAcquire(ctx context.Context) (bool, error)

	// Release frees the lock if this instance holds it.
	Release(ctx context.Context) error
}

// RedisLock is a SETNX-based Lock. A nil redis client degrades to
// single-instance mode where the lock always succeeds.
type RedisLock struct {
	client *redis.Client
	key    string
	value  string // unique per instance so we never release someone else's lock
	held   bool
	mu     sync.Mutex
}

// NewRedisLock creates a run lock on the given key ("" uses the default).
func NewRedisLock(client *redis.Client, key string) *RedisLock {
	if key == "" {
		key = defaultLockKey
	}
	return &RedisLock{
		client: client,
		key:    key,
		value:  fmt.Sprintf("%s-%d", key, time.Now().UnixNano()),
	}
}

// TryAcquire attempts to take the lock (SET NX EX)
func (l *RedisLock) TryAcquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client == nil {
		logger.WarnCtx(ctx, "redis not configured, run lock disabled (single-instance mode)")
		l.held = true
		return true, nil
	}

	acquireCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	acquired, err := l.client.SetNX(acquireCtx, l.key, l.value, lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		logger.DebugCtx(ctx, "run lock %s already held", l.key)
		return false, nil
	}

	l.held = true
	logger.DebugCtx(ctx, "run lock %s acquired", l.key)
	return true, nil
}

// Release frees the lock. A Lua compare-and-delete ensures only the
// value we wrote is removed.
func (l *RedisLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return nil
	}
	if l.client == nil {
		l.held = false
		return nil
	}

	luaScript := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`

	result, err := l.client.Eval(ctx, luaScript, []string{l.key}, l.value).Result()
	if err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}

	l.held = false
	if result.(int64) == 0 {
		logger.WarnCtx(ctx, "run lock %s expired before release", l.key)
	}
	return nil
}

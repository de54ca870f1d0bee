package lock

import (
	"context"
	"fmt"
	"time"

	"fitcoach/internal/config"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was re-acquired by someone else is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX.
type RedisLocker struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLocker connects to Redis and verifies the connection with a ping.
func NewRedisLocker(cfg config.RedisConfig, logger *zap.Logger) (*RedisLocker, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	logger.Info("redis lock backend connected", zap.String("addr", cfg.Addr))
	return &RedisLocker{rdb: rdb, ttl: cfg.LockTTL, logger: logger}, nil
}

// Acquire implements Locker.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	release := func() {
		// The request ctx may already be cancelled; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.rdb, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}
	return release, nil
}

// Close closes the Redis connection.
func (l *RedisLocker) Close() error {
	return l.rdb.Close()
}

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects to the idempotency store. timeout bounds dialing, each
// command and the startup ping; cancelling ctx aborts the ping early.
func OpenRedis(ctx context.Context, addr string, db int, timeout time.Duration) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := r.Ping(pingCtx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return r, nil
}

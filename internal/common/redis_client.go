package common

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"infinite-experiment/clanhall/internal/logging"
)

// NewRedisClient builds a pooled client and pings it once. A failed ping is
// logged; the pool keeps reconnecting.
func NewRedisClient(addr, password string, db int) *redis.Client {
	logging.Info("initializing redis client", "addr", addr, "db", db)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logging.Error("failed to ping redis", "addr", addr, "error", err)
		return client
	}

	logging.Info("connected to redis", "addr", addr)
	return client
}

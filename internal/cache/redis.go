package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnhAnhii/veterans-verify-system/internal/logger"
)

// Options builds the client options shared by the lookup cache and the task queue.
// addr is host:port or a redis:// (rediss://) URL; a URL carries its own password and DB.
func Options(addr, password string, db int) (*redis.Options, error) {
	var opts *redis.Options
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_ADDR: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr, Password: password, DB: db}
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	return opts, nil
}

// ConnectRedis opens a client and pings it.
func ConnectRedis(addr, password string, db int, log *zap.Logger) (*redis.Client, error) {
	opts, err := Options(addr, password, db)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	logger.Named(log, "redis").Info("connected to Redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return rdb, nil
}

// DisconnectRedis closes the client. A nil client is a no-op.
func DisconnectRedis(client *redis.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	return nil
}

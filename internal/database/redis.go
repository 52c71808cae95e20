package database

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"yield-ledger/internal/config"
)

// InitRedis connects to redis when a host is configured. It returns nil when
// redis is disabled or unreachable, and callers then run without it.
func InitRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		zap.L().Warn("Redis connection failed, continuing without Redis", zap.Error(err))
		_ = rdb.Close()
		return nil
	}

	zap.L().Info("Redis connection established", zap.String("addr", cfg.Host+":"+cfg.Port))
	return rdb
}

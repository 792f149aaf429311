// Package redis は、実行間でアクセストークンを共有するための Redis 接続を提供します。
package redis

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config は Redis の接続設定を保持します。
type Config struct {
	Addr     string
	Password string
	DB       int
}

// LoadConfig は REDIS_HOST, REDIS_PORT, REDIS_PASSWORD を読み込みます。
// ホストが未設定の場合、Addr は空のままです。
func LoadConfig() Config {
	cfg := Config{Password: os.Getenv("REDIS_PASSWORD")}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		cfg.Addr = host + ":" + port
	}
	return cfg
}

// NewRedisClient は Redis に接続し、PING で疎通を確認します。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr)
	return rdb, nil
}

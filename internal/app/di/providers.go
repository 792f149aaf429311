package di

import (
	"context"
	"log/slog"
	"time"

	"stock_ingest/internal/feature/ingest/usecase"
	"stock_ingest/internal/platform/config"
	"stock_ingest/internal/platform/externalapi/dart"
	"stock_ingest/internal/platform/externalapi/kis"
	infrahttp "stock_ingest/internal/platform/http"
	"stock_ingest/internal/platform/redis"
	"stock_ingest/internal/platform/tokenstore"
	"stock_ingest/internal/shared/ratelimiter"
)

var (
	_ usecase.QuoteProvider      = (*kis.Client)(nil)
	_ usecase.DisclosureProvider = (*dart.Client)(nil)
)

// NewTokenStore returns a Redis-backed token store when Redis is configured
// and tokens have a finite TTL. Otherwise, it falls back to process memory.
// The returned func releases the Redis connection.
func NewTokenStore(ctx context.Context, s config.Settings) (tokenstore.Store, func()) {
	if s.Redis.Addr == "" {
		return tokenstore.NewMemoryStore(), func() {}
	}
	if s.KIS.TokenTTL <= 0 {
		slog.Warn("redis token store needs KIS_TOKEN_TTL, keeping tokens in memory")
		return tokenstore.NewMemoryStore(), func() {}
	}
	rdb, err := redis.NewRedisClient(ctx, s.Redis)
	if err != nil {
		slog.Warn("redis unavailable, keeping tokens in memory", "error", err)
		return tokenstore.NewMemoryStore(), func() {}
	}
	return tokenstore.NewRedisStore(rdb, "kis_token"), func() {
		if err := rdb.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}
}

// NewQuoteProvider creates the KIS client, or nil without KIS credentials.
func NewQuoteProvider(s config.Settings, tokens tokenstore.Store) usecase.QuoteProvider {
	if !s.KIS.HasCredentials() {
		return nil
	}
	httpClient := infrahttp.NewHTTPClient(s.KIS.Timeout)
	limiter := ratelimiter.NewRateLimiter(s.KIS.RateLimit, time.Second)
	return kis.NewClient(s.KIS, httpClient, tokens, limiter)
}

// NewDisclosureProvider creates the DART client, or nil without a DART key.
func NewDisclosureProvider(s config.Settings) usecase.DisclosureProvider {
	if s.DART.APIKey == "" {
		return nil
	}
	httpClient := infrahttp.NewHTTPClient(s.DART.Timeout)
	limiter := ratelimiter.NewRateLimiter(s.DART.RateLimit, time.Second)
	return dart.NewClient(s.DART, httpClient, limiter)
}

// Credentials reports which provider secrets are configured.
func Credentials(s config.Settings) usecase.Credentials {
	return usecase.Credentials{
		KISAppKey:    s.KIS.AppKey,
		KISAppSecret: s.KIS.AppSecret,
		KISAccountNo: s.KIS.AccountNo,
		DARTAPIKey:   s.DART.APIKey,
	}
}

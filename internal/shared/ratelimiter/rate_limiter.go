// Package ratelimiter は外部プロバイダーへの呼び出し頻度を制御します。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter は、interval ごとに最大 limit 回まで呼び出しを許可します。
// 1つのクライアントを共有する並行ワーカーから安全に利用できます。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // ウィンドウあたりの上限
	interval  time.Duration // どの単位でリセットするか
	count     int
	lastReset time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter は新しい RateLimiter を生成します。limit が0以下の場合は制限しません。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Wait は現在のウィンドウに空きができるまで待機します。ctx が終了した場合はそのエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil || rl.limit <= 0 || rl.interval <= 0 {
		return ctx.Err()
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count > rl.limit {
		wait := rl.interval - now.Sub(rl.lastReset)
		if wait > 0 {
			slog.Debug("rate limit reached, waiting", "limit", rl.limit, "wait", wait)
			if err := rl.sleep(ctx, wait); err != nil {
				rl.count--
				return err
			}
		}
		rl.count = 1
		rl.lastReset = rl.now()
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

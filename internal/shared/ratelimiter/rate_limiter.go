package ratelimiter

import (
	"log/slog"
	"sync"
	"time"
)

// RateLimiterInterface は、外部API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	WaitIfNeeded()
}

// RateLimiter は一定期間あたりの操作回数を制限します。
// 複数のポーリングパイプラインから共有されるため、ミューテックスで保護します。
type RateLimiter struct {
	limit     int           // interval あたりの上限
	interval  time.Duration // どの単位でリセットするか
	mu        sync.Mutex
	count     int
	lastReset time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
	}
}

// WaitIfNeeded はレートリミットの上限に達しているかを確認し、必要であれば待機します。
func (rl *RateLimiter) WaitIfNeeded() {
	rl.mu.Lock()
	now := time.Now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count <= rl.limit {
		rl.mu.Unlock()
		return
	}

	sleep := rl.interval - now.Sub(rl.lastReset)
	rl.count = 1
	rl.lastReset = now.Add(sleep)
	rl.mu.Unlock()

	if sleep > 0 {
		slog.Warn("provider rate limit reached, waiting", "limit", rl.limit, "sleep", sleep)
		time.Sleep(sleep)
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"rw-geo-api/internal/logger"
	"rw-geo-api/internal/metrics"
)

// 文档注释：令牌桶限流（每秒）
// 背景：在流量峰值时对入口进行限速；默认关闭，由配置开启。
// 约束：简化实现，不做队列排队，仅丢弃并返回 429；按秒整体补满。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

func NewTokenBucket(qps int) *TokenBucket {
	if qps <= 0 {
		qps = 1
	}
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimit：超出速率时返回 429 与统一错误信封
func RateLimit(qps int) func(http.Handler) http.Handler {
	tb := NewTokenBucket(qps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tb.Allow() {
				metrics.RateLimitedTotal.Inc()
				logger.L().Debug("rate_limited", "path", r.URL.Path, "ip", r.RemoteAddr)
				w.Header().Set("content-type", "application/json; charset=utf-8")
				w.Header().Set("retry-after", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status":  "error",
					"message": "Too many requests",
					"data":    nil,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

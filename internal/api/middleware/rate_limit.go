package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"mealmind/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 每個使用者一個令牌桶
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	rate     float64
	now      func() time.Time
}

type bucket struct {
	tokens   float64
	lastTime time.Time
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		capacity: requests,
		rate:     float64(requests) / window.Seconds(),
		now:      time.Now,
	}
}

// Allow 檢查 key 是否還有令牌
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(rl.capacity), lastTime: now}
		rl.buckets[key] = b
	}

	// 補充令牌
	elapsed := now.Sub(b.lastTime).Seconds()
	b.lastTime = now
	b.tokens = min(float64(rl.capacity), b.tokens+elapsed*rl.rate)

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// RateLimit 限流中間件，以使用者為單位，沒有使用者時用 IP
func RateLimit(limiter *RateLimiter, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID := UserID(c); userID != 0 {
			key = "user:" + strconv.FormatUint(uint64(userID), 10)
		}

		if !limiter.Allow(key) {
			common.LogInfo("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrTooManyRequests.ToResponse(false))
			return
		}

		c.Next()
	}
}

package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"mealmind/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deduplicator 短時間內相同的寫入請求只處理一次
type Deduplicator struct {
	mu       sync.Mutex
	requests map[string]time.Time
	window   time.Duration
	now      func() time.Time
}

// NewDeduplicator 創建去重器
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &Deduplicator{
		requests: make(map[string]time.Time),
		window:   window,
		now:      time.Now,
	}
}

// seen 記錄指紋，窗口內已出現過時回傳 true
func (d *Deduplicator) seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now

	// 順便清掉過期指紋
	if len(d.requests) > 1024 {
		for k, t := range d.requests {
			if now.Sub(t) > 10*d.window {
				delete(d.requests, k)
			}
		}
	}
	return false
}

// Deduplication 請求去重中間件，只處理 POST
func Deduplication(d *Deduplicator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		fingerprint := c.Request.Method + ":" + c.Request.URL.Path +
			":" + strconv.FormatUint(uint64(UserID(c)), 10)
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogWarn("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}
			hash := sha256.Sum256(body)
			fingerprint += ":" + hex.EncodeToString(hash[:])
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		if d.seen(fingerprint) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "重複的請求",
			})
			return
		}

		c.Next()
	}
}

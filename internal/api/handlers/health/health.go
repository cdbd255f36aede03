package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"mealmind/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Check 單一依賴的就緒檢查
type Check func(ctx context.Context) error

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Upstream  map[string]string      `json:"upstream,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version  string
	checks   map[string]Check
	upstream map[string]func() string
}

// NewHandler 創建健康檢查處理器
func NewHandler(version string) *Handler {
	return &Handler{
		version:  version,
		checks:   make(map[string]Check),
		upstream: make(map[string]func() string),
	}
}

// AddCheck 註冊就緒檢查，失敗時 /ready 回 503
func (h *Handler) AddCheck(name string, check Check) {
	h.checks[name] = check
}

// AddUpstream 註冊外部服務狀態，只顯示不影響就緒
func (h *Handler) AddUpstream(name string, state func() string) {
	h.upstream[name] = state
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	upstream := make(map[string]string, len(h.upstream))
	for name, state := range h.upstream {
		upstream[name] = state()
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":  m.Alloc,
				"sys":    m.Sys,
				"num_gc": m.NumGC,
			},
		},
		Upstream: upstream,
	})
}

// ReadinessCheck 就緒檢查
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := make(map[string]string)
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		common.LogWarn("就緒檢查失敗", zap.Any("failed", failed))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"failed": failed,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

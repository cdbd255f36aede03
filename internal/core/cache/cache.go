package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"mealmind/internal/infrastructure/config"
	"mealmind/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrMiss 快取未命中或已過期
	ErrMiss = errors.New("cache miss")
	// ErrFull 記憶體快取已滿
	ErrFull = errors.New("cache is full")
)

// Store 外部回應快取
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set ttl <= 0 時使用後端預設的存活時間
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// New 依設定建立快取後端，停用時回傳永遠未命中的實作
func New(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return Nop{}, nil
	}

	switch cfg.Cache.Backend {
	case "redis":
		return NewService(cfg.Cache, cfg.Redis)
	case "", "memory":
		return NewManager(cfg.Cache), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// Key 產生快取鍵，namespace 保持可讀，其餘部分做雜湊
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return fmt.Sprintf("%s:%s", namespace, hex.EncodeToString(hash[:]))
}

// Nop 停用快取時使用
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Close() error { return nil }

// logMiss 除錯用
func logMiss(backend, key string) {
	common.LogDebug("快取未命中",
		zap.String("backend", backend),
		zap.String("鍵", key),
	)
}

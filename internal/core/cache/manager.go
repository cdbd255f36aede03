package cache

import (
	"context"
	"sync"
	"time"

	"mealmind/internal/infrastructure/config"
	"mealmind/internal/pkg/common"

	"go.uber.org/zap"
)

// Manager 記憶體快取，TTL 到期後淘汰，滿了走 LRU
type Manager struct {
	cfg   config.CacheConfig
	mu    sync.Mutex
	store map[string]cacheEntry
	stats Stats
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

// cacheEntry 緩存條目
type cacheEntry struct {
	value       []byte
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// Stats 緩存統計
type Stats struct {
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Errors    int64 `json:"errors"`
}

// NewManager 創建記憶體快取並啟動清理協程
func NewManager(cfg config.CacheConfig) *Manager {
	m := newManager(cfg, time.Now)
	if cfg.CleanupInterval > 0 {
		go m.startCleanup(cfg.CleanupInterval)
	}

	common.LogInfo("快取管理員已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)
	return m
}

func newManager(cfg config.CacheConfig, now func() time.Time) *Manager {
	return &Manager{
		cfg:   cfg,
		store: make(map[string]cacheEntry),
		now:   now,
		done:  make(chan struct{}),
	}
}

// Get 獲取緩存值
func (m *Manager) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.store[key]
	if !ok {
		m.stats.Misses++
		logMiss("memory", key)
		return nil, ErrMiss
	}

	now := m.now()
	if now.After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.Evictions++
		m.stats.Misses++
		return nil, ErrMiss
	}

	entry.lastAccess = now
	entry.accessCount++
	m.store[key] = entry
	m.stats.Hits++
	return entry.value, nil
}

// Set 設置緩存值
func (m *Manager) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && len(m.store) >= m.cfg.MaxSize {
		// 先清過期項目，仍超過上限時做 LRU
		if evicted := m.cleanup(); evicted > 0 {
			common.LogDebug("快取清理執行", zap.Int("清理數量", evicted))
		}
		if len(m.store) >= m.cfg.MaxSize {
			m.evictLRU()
		}
		if len(m.store) >= m.cfg.MaxSize {
			m.stats.Errors++
			common.LogWarn("快取已滿", zap.Int("目前容量", len(m.store)))
			return ErrFull
		}
	}

	if ttl <= 0 {
		ttl = m.cfg.TTL
	}
	now := m.now()
	m.store[key] = cacheEntry{
		value:      value,
		expiresAt:  now.Add(ttl),
		lastAccess: now,
	}
	return nil
}

// startCleanup 定期清理過期項目直到 Close
func (m *Manager) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期的緩存，呼叫者需持有鎖
func (m *Manager) cleanup() int {
	now := m.now()
	count := 0
	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.Evictions++
		}
	}

	if count > 0 {
		common.LogDebug("Cleaned up expired cache entries",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.Evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// evictLRU 淘汰存取次數最少、最久未用的項目
func (m *Manager) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestCount ||
			(entry.accessCount == lowestCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.Evictions++
		common.LogDebug("快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// Stats 獲取緩存統計信息
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats
	s.Size = len(m.store)
	s.MaxSize = m.cfg.MaxSize
	return s
}

// Close 停止清理協程並清空快取
func (m *Manager) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]cacheEntry)
	common.LogInfo("快取管理員已關閉",
		zap.Int64("命中次數", m.stats.Hits),
		zap.Int64("未命中次數", m.stats.Misses),
		zap.Int64("淘汰次數", m.stats.Evictions),
	)
	return nil
}

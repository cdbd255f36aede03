package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealmind/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "mealmind:"

// Service Redis 快取
type Service struct {
	client *redis.Client
	ttl    time.Duration
}

// NewService 建立 Redis 快取並測試連線
func NewService(cfg config.CacheConfig, rcfg config.RedisConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     rcfg.Addr,
		Password: rcfg.Password,
		DB:       rcfg.DB,
	})

	// 測試連接
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newServiceWithClient(client, cfg.TTL), nil
}

func newServiceWithClient(client *redis.Client, ttl time.Duration) *Service {
	return &Service{client: client, ttl: ttl}
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logMiss("redis", key)
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}
	return data, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	if err := s.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *Service) Close() error {
	return s.client.Close()
}

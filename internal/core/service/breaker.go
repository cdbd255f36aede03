package service

import (
	"errors"

	"mealmind/internal/infrastructure/config"
	"mealmind/internal/pkg/common"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const defaultFailureThreshold = 5

// Breaker 包住外部呼叫的斷路器，開路時直接失敗不等待逾時
type Breaker struct {
	cb   *gobreaker.CircuitBreaker[[]byte]
	name string
}

// NewBreaker 創建斷路器，連續失敗達門檻後開路
func NewBreaker(name string, cfg config.BreakerConfig) *Breaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = defaultFailureThreshold
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			common.LogWarn("斷路器狀態變更",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Breaker{cb: cb, name: name}
}

// Execute 透過斷路器執行
func (b *Breaker) Execute(fn func() ([]byte, error)) ([]byte, error) {
	body, err := b.cb.Execute(fn)
	if err != nil && (errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)) {
		common.LogDebug("斷路器拒絕請求", zap.String("name", b.name), zap.Error(err))
	}
	return body, err
}

// State 目前狀態
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Open 是否開路中
func (b *Breaker) Open() bool {
	return b.cb.State() == gobreaker.StateOpen
}

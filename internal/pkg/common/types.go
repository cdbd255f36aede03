package common

import (
	"strconv"
	"strings"
)

// 請求標頭與 context 鍵
const (
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"

	ContextKeyUserID = "user_id"
)

// ParseUserID 解析使用者 ID，空字串時使用 fallback
func ParseUserID(raw string, fallback uint) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidUser.Wrap(NewValidationError("user id must be a positive integer"))
	}
	return uint(id), nil
}

// ParseID 解析路徑上的數字 ID
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidRequest.Wrap(NewValidationError("id must be a positive integer"))
	}
	return uint(id), nil
}

// ListResponse 清單回應
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse nil 轉成空陣列
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

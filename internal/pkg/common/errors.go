package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 讓 errors.Is / errors.As 能看到原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Wrap 以預定義錯誤為範本包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// ToResponse 轉成 API 響應，debug 時附上原始錯誤
func (e *CustomError) ToResponse(debug bool) ErrorResponse {
	resp := ErrorResponse{Code: e.Code, Message: e.Message}
	if debug && e.Err != nil {
		resp.Details = e.Err.Error()
	}
	return resp
}

// AsCustomError 取出 CustomError，其他錯誤一律視為內部錯誤
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return ErrInternalError.Wrap(err)
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// 預定義錯誤代碼
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	ErrCodeInternalError  = "INTERNAL_ERROR"  // 500
	ErrCodeGatewayTimeout = "GATEWAY_TIMEOUT" // 504
)

// 預定義錯誤
var (
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	ErrInternalError  = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrGatewayTimeout = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrDishNotFound     = NewError("DISH_NOT_FOUND", "菜色不存在", http.StatusNotFound, nil)
	ErrFeedItemNotFound = NewError("FEED_ITEM_NOT_FOUND", "探索項目不存在", http.StatusNotFound, nil)
	ErrInvalidUser      = NewError("INVALID_USER", "無效的使用者", http.StatusBadRequest, nil)
)

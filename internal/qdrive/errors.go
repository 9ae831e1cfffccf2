package qdrive

import (
	"errors"
	"fmt"
)

type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: code=%d, message=%s", e.Code, e.Message)
}

func NewAPIError(code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

const (
	ErrCodeSuccess            = 0
	ErrCodeInvalidParams      = 400
	ErrCodeUnauthorized       = 401
	ErrCodeForbidden          = 403
	ErrCodeNotFound           = 404
	ErrCodeConflict           = 409
	ErrCodePreconditionFailed = 412
	ErrCodeRateLimit          = 429
	ErrCodeInternalError      = 500
	ErrCodeServiceUnavailable = 503
)

// 各操作返回的错误都带有上下文包装，判定时沿错误链展开
func IsTokenExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == ErrCodeUnauthorized
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == ErrCodeNotFound
}

func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == ErrCodeRateLimit
}

// IsProcessing 资源仍在生成中（202），不算失败，稍后可再试
func IsProcessing(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == 202
}

// IsFileLocked 文件被锁定时服务端返回409
func IsFileLocked(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == ErrCodeConflict
}

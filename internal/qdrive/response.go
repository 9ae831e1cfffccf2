package qdrive

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type Classification int

const (
	ClassSuccess Classification = iota
	ClassProcessing
	ClassError
)

// Classify 202优先于2xx判定
func Classify(statusCode int) Classification {
	switch {
	case statusCode == http.StatusAccepted:
		return ClassProcessing
	case statusCode >= 200 && statusCode < 300:
		return ClassSuccess
	default:
		return ClassError
	}
}

// ResponseEnvelope 一次API响应。Raw请求成功时Stream有效，其余情况Body有效。
type ResponseEnvelope struct {
	StatusCode int
	Class      Classification
	Header     http.Header
	Body       []byte
	Stream     io.ReadCloser
}

func (e *ResponseEnvelope) IsSuccess() bool {
	return e.Class == ClassSuccess
}

func (e *ResponseEnvelope) IsProcessing() bool {
	return e.Class == ClassProcessing
}

// Close 释放未消费的流
func (e *ResponseEnvelope) Close() {
	if e.Stream != nil {
		e.Stream.Close()
	}
}

// apiError 从错误响应中提取业务错误，解不出body时退回HTTP状态
func (e *ResponseEnvelope) apiError() *APIError {
	if len(e.Body) > 0 {
		result := &RespBase[json.RawMessage]{}
		if err := json.Unmarshal(e.Body, result); err == nil && result.Message != "" {
			code := result.Code
			if code == 0 {
				code = e.StatusCode
			}
			return NewAPIError(code, result.Message)
		}
	}
	return NewAPIError(e.StatusCode, http.StatusText(e.StatusCode))
}

// decodeData 按RespBase[T]解包响应体并检查业务错误码
func decodeData[T any](e *ResponseEnvelope, what string) (*T, error) {
	if !e.IsSuccess() {
		return nil, fmt.Errorf("%s failed with status %d: %w", what, e.StatusCode, e.apiError())
	}

	result := &RespBase[T]{}
	if err := json.Unmarshal(e.Body, result); err != nil {
		return nil, fmt.Errorf("unmarshal %s response failed: %w", what, err)
	}

	if result.Code != 0 {
		return nil, fmt.Errorf("%s failed: %w", what, NewAPIError(result.Code, result.Message))
	}

	return &result.Data, nil
}

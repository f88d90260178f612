package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResponseBody 上游返回成功但没有可读取的响应体
	ErrNoResponseBody = errors.New("no response body")
	// ErrEmptyResponse 流正常结束但没有任何文本
	ErrEmptyResponse = errors.New("empty response from upstream")
	// ErrHistoryDisabled 未配置生成记录库
	ErrHistoryDisabled = errors.New("generation history is not enabled")
)

// ValidationError 请求缺少必填字段
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamError 上游返回非 2xx
type UpstreamError struct {
	Status  int
	Message string // 上游错误体中的 message 字段，可能为空
	Body    []byte
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream status %d", e.Status)
}

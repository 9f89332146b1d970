package client

import (
	"fmt"
)

// 响应体截断长度，报错时只带片段，避免日志被大报文刷爆
const maxBodySnippet = 512

// ==================== 错误类型 ====================

// TransportError 网络层失败（不可达、超时、TLS）
type TransportError struct {
	Platform string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("[%s] 请求 %s 网络失败: %v", e.Platform, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteAPIError 平台明确拒绝：非 2xx 状态码，或业务包络 code != 0
type RemoteAPIError struct {
	Platform   string
	Endpoint   string
	StatusCode int    // HTTP 状态码，包络错误时为 200
	Code       string // 平台业务错误码
	Message    string // 平台错误信息或截断的响应体
}

func (e *RemoteAPIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s 平台返回错误 code=%s: %s", e.Platform, e.Endpoint, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s 平台返回 HTTP %d: %s", e.Platform, e.Endpoint, e.StatusCode, e.Message)
}

// MalformedResponseError 2xx 但响应不是合法 JSON / 缺少预期结构
type MalformedResponseError struct {
	Platform string
	Endpoint string
	Snippet  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("[%s] %s 响应不是合法 JSON: %s", e.Platform, e.Endpoint, e.Snippet)
}

// Snippet 截断响应体
func Snippet(body []byte) string {
	if len(body) > maxBodySnippet {
		return string(body[:maxBodySnippet]) + "..."
	}
	return string(body)
}

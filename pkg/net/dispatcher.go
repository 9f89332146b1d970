package net

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Dispatcher 网络调度器 (通用组件)
// 每个平台复用一个带连接池的 Client，避免每次请求重建 TLS 连接
type Dispatcher interface {
	// Send 发送 HTTP 请求
	// platform: 平台标识，作为 Client 缓存键
	// req: 标准的 http.Request 对象
	Send(ctx context.Context, platform string, req *http.Request) (*http.Response, error)
}

// httpDispatcher 是 Dispatcher 接口的具体实现
// 注意：它是私有的，外部只能通过 NewDispatcher 获取接口
type httpDispatcher struct {
	clientCache sync.Map
	timeout     time.Duration
}

var _ Dispatcher = (*httpDispatcher)(nil)

func NewDispatcher() Dispatcher {
	return &httpDispatcher{
		timeout: 30 * time.Second,
	}
}

// Send 发送 HTTP 请求
// 这里不做自动重试：单页失败由上层记录游标后在下一轮调度续跑
func (d *httpDispatcher) Send(ctx context.Context, platform string, req *http.Request) (*http.Response, error) {
	client := d.getClient(platform)
	return client.Do(req.WithContext(ctx))
}

// getClient 内部复用逻辑
func (d *httpDispatcher) getClient(platform string) *http.Client {
	if val, ok := d.clientCache.Load(platform); ok {
		return val.(*http.Client)
	}

	// 缓存未命中，创建新 Client
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: d.timeout,
	}

	// 存入缓存 (LoadOrStore 防止并发重复创建)
	actual, _ := d.clientCache.LoadOrStore(platform, client)
	return actual.(*http.Client)
}

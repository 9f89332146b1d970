package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"omnisync_v1_202608/pkg/net"
)

// ==================== Client 签名 HTTP 客户端 ====================

// Client 平台 API 客户端
// 只负责：序列化、签名、发送、解析；不做重试，重试策略归调度层
type Client struct {
	platform string
	baseURL  string
	signer   Signer
	sender   net.Dispatcher
}

// New 创建平台客户端
func New(platform, baseURL string, signer Signer, sender net.Dispatcher) *Client {
	return &Client{
		platform: platform,
		baseURL:  baseURL,
		signer:   signer,
		sender:   sender,
	}
}

// Platform 平台标识
func (c *Client) Platform() string { return c.platform }

// ==================== 调用入口 ====================

// Call POST 一个 JSON 体并返回解析后的原始 JSON
// 关键保证：签名用的字节 == 发出去的字节（只序列化一次）
func (c *Client) Call(ctx context.Context, endpoint string, body interface{}, cred Credential) (json.RawMessage, error) {
	return c.CallBase(ctx, c.baseURL, endpoint, body, cred)
}

// CallBase 同 Call，但允许按店铺覆盖网关地址
func (c *Client) CallBase(ctx context.Context, base, endpoint string, body interface{}, cred Credential) (json.RawMessage, error) {
	// 标准库 Marshal 输出紧凑 JSON，无多余空白，天然是签名要的规范串
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &MalformedResponseError{Platform: c.platform, Endpoint: endpoint, Snippet: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Platform: c.platform, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(ctx, req, payload, endpoint, cred)
}

// Get 发送带 query 参数的 GET 请求（Lazada/TikTok 风格接口）
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, cred Credential) (json.RawMessage, error) {
	return c.GetBase(ctx, c.baseURL, endpoint, params, cred)
}

// GetBase 同 Get，允许覆盖网关地址
func (c *Client) GetBase(ctx context.Context, base, endpoint string, params url.Values, cred Credential) (json.RawMessage, error) {
	u := base + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{Platform: c.platform, Endpoint: endpoint, Err: err}
	}

	return c.do(ctx, req, nil, endpoint, cred)
}

// ==================== 内部实现 ====================

func (c *Client) do(ctx context.Context, req *http.Request, body []byte, endpoint string, cred Credential) (json.RawMessage, error) {
	ts := time.Now().UnixMilli()
	if err := c.signer.Sign(req, body, cred, ts); err != nil {
		return nil, &TransportError{Platform: c.platform, Endpoint: endpoint, Err: err}
	}

	resp, err := c.sender.Send(ctx, c.platform, req)
	if err != nil {
		return nil, &TransportError{Platform: c.platform, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Platform: c.platform, Endpoint: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteAPIError{
			Platform:   c.platform,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    Snippet(raw),
		}
	}

	if !json.Valid(raw) {
		return nil, &MalformedResponseError{Platform: c.platform, Endpoint: endpoint, Snippet: Snippet(raw)}
	}

	return json.RawMessage(raw), nil
}

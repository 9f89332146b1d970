package client

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"omnisync_v1_202608/pkg/net"
)

// ==================== 测试辅助 ====================

func newTestClient(platform, base string, signer Signer) *Client {
	return New(platform, base, signer, net.NewDispatcher())
}

// ==================== 签名字节一致性 ====================

// 服务端用收到的原始请求体重算签名，必须与 sign 头一致
// 验证“签名的字节 == 发出去的字节”这一硬性保证
func TestClient_Call_SignedBytesMatchWire(t *testing.T) {
	cred := Credential{AppKey: "K1", AppSecret: "S1"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		source := "appkey=K1&appsecret=S1&data=" + string(raw) + "&ts=" + r.Header.Get("ts")
		sum := md5.Sum([]byte(source))
		want := strings.ToUpper(hex.EncodeToString(sum[:]))

		if got := r.Header.Get("sign"); got != want {
			t.Errorf("服务端重算签名不一致: got %s want %s", got, want)
		}
		w.Write([]byte(`{"code":0,"data":{}}`))
	}))
	defer srv.Close()

	c := newTestClient("jst", srv.URL, JSTSigner{})
	body := map[string]interface{}{"PageIndex": 1, "PageSize": 50}
	if _, err := c.Call(context.Background(), "/open/orders/query", body, cred); err != nil {
		t.Fatalf("调用失败: %v", err)
	}
}

// ==================== 错误分类 ====================

func TestClient_Call_RemoteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := newTestClient("jst", srv.URL, JSTSigner{})
	_, err := c.Call(context.Background(), "/x", map[string]string{}, Credential{})

	var remoteErr *RemoteAPIError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("期望 RemoteAPIError，实际 %T: %v", err, err)
	}
	if remoteErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", remoteErr.StatusCode)
	}
	if !strings.Contains(remoteErr.Message, "upstream down") {
		t.Errorf("错误应携带响应体片段: %s", remoteErr.Message)
	}
}

func TestClient_Call_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>login required</html>"))
	}))
	defer srv.Close()

	c := newTestClient("pancake", srv.URL, PancakeSigner{})
	_, err := c.Get(context.Background(), "/orders", nil, Credential{AccessToken: "k"})

	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("期望 MalformedResponseError，实际 %T: %v", err, err)
	}
}

func TestClient_Call_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 直接关掉，模拟网络不可达

	c := newTestClient("jst", srv.URL, JSTSigner{})
	_, err := c.Call(context.Background(), "/x", map[string]string{}, Credential{})

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("期望 TransportError，实际 %T: %v", err, err)
	}
}

// ==================== 响应体截断 ====================

func TestSnippet_Truncates(t *testing.T) {
	long := strings.Repeat("a", 2000)
	got := Snippet([]byte(long))
	if len(got) > maxBodySnippet+3 {
		t.Errorf("截断后长度 %d 超出上限", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("截断应以 ... 结尾")
	}
}

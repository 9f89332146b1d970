package client

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"testing"
)

// ==================== JST 签名 ====================

func TestJSTSigner_SignatureSource(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "https://open.example.com/open/orders/query", nil)
	body := []byte(`{"Code":"abc"}`)
	cred := Credential{AppKey: "K1", AppSecret: "S1"}

	if err := (JSTSigner{}).Sign(req, body, cred, 1700000000000); err != nil {
		t.Fatalf("签名失败: %v", err)
	}

	// 源串必须逐字节等于 appkey=K1&appsecret=S1&data={"Code":"abc"}&ts=1700000000000
	source := `appkey=K1&appsecret=S1&data={"Code":"abc"}&ts=1700000000000`
	sum := md5.Sum([]byte(source))
	want := strings.ToUpper(hex.EncodeToString(sum[:]))

	if got := req.Header.Get("sign"); got != want {
		t.Errorf("sign = %s, want %s", got, want)
	}
	if got := req.Header.Get("ts"); got != "1700000000000" {
		t.Errorf("ts = %s, want 1700000000000", got)
	}
	if got := req.Header.Get("appkey"); got != "K1" {
		t.Errorf("appkey = %s, want K1", got)
	}
}

func TestJSTSigner_WithTokenAndCompany(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "https://open.example.com/open/orders/query", nil)
	body := []byte(`{}`)
	cred := Credential{AppKey: "K1", AppSecret: "S1", AccessToken: "T1", CompanyID: "C1"}

	if err := (JSTSigner{}).Sign(req, body, cred, 1700000000000); err != nil {
		t.Fatalf("签名失败: %v", err)
	}

	source := `appkey=K1&appsecret=S1&data={}&accesstoken=T1&companyid=C1&ts=1700000000000`
	sum := md5.Sum([]byte(source))
	want := strings.ToUpper(hex.EncodeToString(sum[:]))

	if got := req.Header.Get("sign"); got != want {
		t.Errorf("sign = %s, want %s", got, want)
	}
	if got := req.Header.Get("accesstoken"); got != "T1" {
		t.Errorf("accesstoken = %s, want T1", got)
	}
	if got := req.Header.Get("companyid"); got != "C1" {
		t.Errorf("companyid = %s, want C1", got)
	}
}

// ==================== Lazada 签名 ====================

func TestLazadaSigner_SortedParams(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://api.lazada.test/category/tree/get?language_code=vi_VN", nil)
	cred := Credential{AppKey: "AK", AppSecret: "SECRET", AccessToken: "TOKEN"}

	if err := (LazadaSigner{}).Sign(req, nil, cred, 1700000000000); err != nil {
		t.Fatalf("签名失败: %v", err)
	}

	q := req.URL.Query()
	if q.Get("app_key") != "AK" || q.Get("sign_method") != "sha256" {
		t.Fatalf("公共参数缺失: %v", q)
	}

	// 按 key 字典序拼 path + k + v，不含 sign 自身
	source := req.URL.Path +
		"access_token" + "TOKEN" +
		"app_key" + "AK" +
		"language_code" + "vi_VN" +
		"sign_method" + "sha256" +
		"timestamp" + "1700000000000"
	mac := hmac.New(sha256.New, []byte("SECRET"))
	mac.Write([]byte(source))
	want := strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	if got := q.Get("sign"); got != want {
		t.Errorf("sign = %s, want %s", got, want)
	}
}

// ==================== TikTok / Pancake ====================

func TestTikTokSigner_TokenHeader(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://open-api.tiktok.test/api/logistics/get_warehouse_list", nil)
	cred := Credential{AppKey: "AK", AccessToken: "ACT", ShopID: "7001"}

	if err := (TikTokSigner{}).Sign(req, nil, cred, 1700000000000); err != nil {
		t.Fatalf("签名失败: %v", err)
	}

	if got := req.Header.Get("x-tts-access-token"); got != "ACT" {
		t.Errorf("token header = %s, want ACT", got)
	}
	q := req.URL.Query()
	if q.Get("timestamp") != "1700000000" {
		t.Errorf("timestamp = %s, want 秒级 1700000000", q.Get("timestamp"))
	}
	if q.Get("shop_id") != "7001" {
		t.Errorf("shop_id = %s, want 7001", q.Get("shop_id"))
	}
}

func TestTikTokSigner_MissingToken(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://open-api.tiktok.test/x", nil)
	if err := (TikTokSigner{}).Sign(req, nil, Credential{AppKey: "AK"}, 0); err == nil {
		t.Error("缺 token 应该报错")
	}
}

func TestPancakeSigner_APIKeyParam(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://pos.pancake.test/shops/1/orders", nil)
	if err := (PancakeSigner{}).Sign(req, nil, Credential{AccessToken: "PK"}, 0); err != nil {
		t.Fatalf("签名失败: %v", err)
	}
	if got := req.URL.Query().Get("api_key"); got != "PK" {
		t.Errorf("api_key = %s, want PK", got)
	}
}

package client

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// ==================== 凭证 ====================

// Credential 一次调用所需的全部凭证
type Credential struct {
	AppKey      string
	AppSecret   string
	AccessToken string
	CompanyID   string // 聚水潭公司编号，其他平台为空
	ShopID      string // 平台侧店铺 ID
}

// ==================== Signer 能力接口 ====================

// Signer 各平台签名方案的统一入口
// body 是即将发送的精确字节（POST 为序列化后的 JSON，GET 为 nil）
// 签名必须基于这份字节计算，重新序列化会有字节漂移风险
type Signer interface {
	Sign(req *http.Request, body []byte, cred Credential, ts int64) error
}

// ==================== JSTSigner 聚水潭 ====================

// JSTSigner 聚水潭签名：拼 key=value 段后取大写 MD5
// 源串顺序固定：appkey, appsecret, data, [accesstoken], [companyid], ts
type JSTSigner struct{}

func (JSTSigner) Sign(req *http.Request, body []byte, cred Credential, ts int64) error {
	segments := []string{
		"appkey=" + cred.AppKey,
		"appsecret=" + cred.AppSecret,
		"data=" + string(body),
	}
	if cred.AccessToken != "" {
		segments = append(segments, "accesstoken="+cred.AccessToken)
	}
	if cred.CompanyID != "" {
		segments = append(segments, "companyid="+cred.CompanyID)
	}
	segments = append(segments, "ts="+strconv.FormatInt(ts, 10))

	sum := md5.Sum([]byte(strings.Join(segments, "&")))
	sign := strings.ToUpper(hex.EncodeToString(sum[:]))

	req.Header.Set("appkey", cred.AppKey)
	req.Header.Set("ts", strconv.FormatInt(ts, 10))
	req.Header.Set("sign", sign)
	if cred.AccessToken != "" {
		req.Header.Set("accesstoken", cred.AccessToken)
	}
	if cred.CompanyID != "" {
		req.Header.Set("companyid", cred.CompanyID)
	}
	return nil
}

// ==================== LazadaSigner ====================

// LazadaSigner Lazada 签名：公共参数进 query，按 key 排序拼接
// path + k1v1k2v2...，HMAC-SHA256(appSecret) 大写十六进制
type LazadaSigner struct{}

func (LazadaSigner) Sign(req *http.Request, body []byte, cred Credential, ts int64) error {
	q := req.URL.Query()
	q.Set("app_key", cred.AppKey)
	q.Set("timestamp", strconv.FormatInt(ts, 10))
	q.Set("sign_method", "sha256")
	if cred.AccessToken != "" {
		q.Set("access_token", cred.AccessToken)
	}

	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(req.URL.Path)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(q.Get(k))
	}

	mac := hmac.New(sha256.New, []byte(cred.AppSecret))
	mac.Write([]byte(sb.String()))
	q.Set("sign", strings.ToUpper(hex.EncodeToString(mac.Sum(nil))))

	req.URL.RawQuery = q.Encode()
	return nil
}

// ==================== TikTokSigner ====================

// TikTokSigner TikTok Shop：access token 走请求头，app_key/时间戳走 query
type TikTokSigner struct{}

func (TikTokSigner) Sign(req *http.Request, body []byte, cred Credential, ts int64) error {
	if cred.AccessToken == "" {
		return fmt.Errorf("tiktok 请求缺少 access token")
	}
	q := req.URL.Query()
	q.Set("app_key", cred.AppKey)
	// TikTok 时间戳用秒
	q.Set("timestamp", strconv.FormatInt(ts/1000, 10))
	if cred.ShopID != "" {
		q.Set("shop_id", cred.ShopID)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("x-tts-access-token", cred.AccessToken)
	return nil
}

// ==================== PancakeSigner ====================

// PancakeSigner Pancake：店铺 api_key 直接挂 query 参数
type PancakeSigner struct{}

func (PancakeSigner) Sign(req *http.Request, body []byte, cred Credential, ts int64) error {
	if cred.AccessToken == "" {
		return fmt.Errorf("pancake 请求缺少 api_key")
	}
	q := req.URL.Query()
	q.Set("api_key", cred.AccessToken)
	req.URL.RawQuery = q.Encode()
	return nil
}

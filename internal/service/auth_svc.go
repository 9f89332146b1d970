package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/pkg/utils"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

// 业务常量
const (
	// state 有效期，覆盖完整授权流程绰绰有余
	stateTTL = 10 * time.Minute

	pkceCachePrefix = "pkce:"
)

// oauthEndpoints 平台 OAuth 端点
type oauthEndpoints struct {
	AuthURL  string
	TokenURL string
}

func defaultEndpoints() map[string]oauthEndpoints {
	return map[string]oauthEndpoints{
		model.PlatformTikTok: {
			AuthURL:  "https://services.tiktokshop.com/open/authorize",
			TokenURL: "https://auth.tiktok-shops.com/api/v2/token/get",
		},
		model.PlatformLazada: {
			AuthURL:  "https://auth.lazada.com/oauth/authorize",
			TokenURL: "https://auth.lazada.com/rest/auth/token/create",
		},
	}
}

// AuthService OAuth 授权与 Token 刷新
type AuthService struct {
	shopRepo    repository.ShopRepository
	endpoints   map[string]oauthEndpoints
	stateSecret []byte
	callbackURL string
	http        *resty.Client
}

// NewAuthService 工厂方法
// callbackURL 必须与平台开放后台填写的完全一致
func NewAuthService(shopRepo repository.ShopRepository, stateSecret, callbackURL string) *AuthService {
	return &AuthService{
		shopRepo:    shopRepo,
		endpoints:   defaultEndpoints(),
		stateSecret: []byte(stateSecret),
		callbackURL: callbackURL,
		http:        resty.New().SetTimeout(15 * time.Second),
	}
}

// stateClaims 授权 state 的签名载荷
// state 带签名和有效期，回调时校验不过直接拒绝，防跨账号注入 token
type stateClaims struct {
	ShopID int64  `json:"shop_id"`
	Nonce  string `json:"nonce"`
	jwt.RegisteredClaims
}

// ==================== 授权链接 ====================

// GenerateLoginURL 生成平台授权链接
func (s *AuthService) GenerateLoginURL(ctx context.Context, shopID int64) (string, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return "", fmt.Errorf("店铺不存在: %w", err)
	}
	if !shop.UsesOAuth() {
		return "", fmt.Errorf("平台 %s 使用固定凭证，无需授权", shop.Platform)
	}
	ep, ok := s.endpoints[shop.Platform]
	if !ok {
		return "", fmt.Errorf("平台 %s 未配置授权端点", shop.Platform)
	}

	// PKCE 参数
	verifier, err := utils.GenerateRandomString(48)
	if err != nil {
		return "", err
	}
	challenge := utils.GenerateCodeChallenge(verifier)
	nonce, err := utils.GenerateRandomString(16)
	if err != nil {
		return "", err
	}

	state, err := s.signState(shop.ID, nonce)
	if err != nil {
		return "", err
	}

	// verifier 留在服务端，回调时按 nonce 取出并作废
	utils.SetCache(pkceCachePrefix+nonce, verifier)

	authURL := fmt.Sprintf(
		"%s?response_type=code&client_id=%s&redirect_uri=%s&state=%s&code_challenge=%s&code_challenge_method=S256",
		ep.AuthURL, shop.AppKey, s.callbackURL, state, challenge,
	)
	return authURL, nil
}

func (s *AuthService) signState(shopID int64, nonce string) (string, error) {
	now := time.Now()
	claims := stateClaims{
		ShopID: shopID,
		Nonce:  nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.stateSecret)
}

func (s *AuthService) parseState(state string) (*stateClaims, error) {
	token, err := jwt.ParseWithClaims(state, &stateClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", t.Header["alg"])
		}
		return s.stateSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("state 校验失败: %w", err)
	}
	claims, ok := token.Claims.(*stateClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("state 无效")
	}
	return claims, nil
}

// ==================== 回调换 Token ====================

// HandleCallback 处理平台回调，授权码换 Token
func (s *AuthService) HandleCallback(ctx context.Context, code, state string) (*model.Shop, error) {
	claims, err := s.parseState(state)
	if err != nil {
		return nil, err
	}

	// nonce 用完即焚，同一个 state 不允许换两次 Token
	verifier, exists := utils.GetCache(pkceCachePrefix + claims.Nonce)
	if !exists {
		return nil, fmt.Errorf("授权超时或 state 已使用，请重新发起")
	}
	utils.DeleteCache(pkceCachePrefix + claims.Nonce)

	shop, err := s.shopRepo.GetByID(ctx, claims.ShopID)
	if err != nil {
		log.Printf("[Auth] 回调携带的店铺 %d 不存在: %v", claims.ShopID, err)
		return nil, err
	}

	access, refresh, expiresAt, err := s.exchangeCode(ctx, shop, code, verifier)
	if err != nil {
		return nil, fmt.Errorf("换取 Token 失败: %w", err)
	}

	if err := s.shopRepo.UpdateToken(ctx, shop.ID, access, refresh, expiresAt); err != nil {
		return nil, fmt.Errorf("Token 入库失败: %w", err)
	}
	if err := s.shopRepo.UpdateFields(ctx, shop.ID, map[string]interface{}{"status": model.ShopStatusActive}); err != nil {
		return nil, err
	}

	shop.AccessToken = access
	shop.RefreshToken = refresh
	shop.TokenExpiresAt = expiresAt
	shop.TokenStatus = model.TokenStatusValid
	shop.Status = model.ShopStatusActive
	return shop, nil
}

func (s *AuthService) exchangeCode(ctx context.Context, shop *model.Shop, code, verifier string) (string, string, time.Time, error) {
	form := map[string]string{
		"grant_type":    "authorization_code",
		"code":          code,
		"code_verifier": verifier,
		"redirect_uri":  s.callbackURL,
	}
	switch shop.Platform {
	case model.PlatformTikTok:
		form["app_key"] = shop.AppKey
		form["app_secret"] = shop.AppSecret
	default:
		form["client_id"] = shop.AppKey
		form["client_secret"] = shop.AppSecret
	}
	return s.postTokenForm(ctx, shop, form)
}

// ==================== Token 刷新 ====================

// RefreshAccessToken 刷新临期 Token，原地覆盖凭证
// 平台明确拒绝（4xx）时标记店铺需重新授权，网络错误不动状态
func (s *AuthService) RefreshAccessToken(ctx context.Context, shop *model.Shop) error {
	if !shop.UsesOAuth() {
		// 聚水潭/Pancake 是固定凭证，没有刷新一说
		return nil
	}
	if shop.RefreshToken == "" {
		return fmt.Errorf("店铺 %d 缺少 refresh token", shop.ID)
	}

	form := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": shop.RefreshToken,
	}
	switch shop.Platform {
	case model.PlatformTikTok:
		form["app_key"] = shop.AppKey
		form["app_secret"] = shop.AppSecret
	default:
		form["client_id"] = shop.AppKey
		form["client_secret"] = shop.AppSecret
	}

	access, refresh, expiresAt, err := s.postTokenForm(ctx, shop, form)
	if err != nil {
		return err
	}
	return s.shopRepo.UpdateToken(ctx, shop.ID, access, refresh, expiresAt)
}

// postTokenForm 调平台 Token 端点并按各家包络解析
func (s *AuthService) postTokenForm(ctx context.Context, shop *model.Shop, form map[string]string) (string, string, time.Time, error) {
	ep, ok := s.endpoints[shop.Platform]
	if !ok {
		return "", "", time.Time{}, fmt.Errorf("平台 %s 未配置 Token 端点", shop.Platform)
	}

	resp, err := s.http.R().SetContext(ctx).SetFormData(form).Post(ep.TokenURL)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("token 请求网络失败: %w", err)
	}

	// 只有平台明确拒绝才标记失效，网络抖动不能把店铺打成待授权
	if resp.StatusCode() >= 400 && resp.StatusCode() < 500 {
		if uerr := s.shopRepo.UpdateTokenStatus(ctx, shop.ID, model.TokenStatusInvalid); uerr != nil {
			log.Printf("[Auth] 标记店铺 %d token 失效出错: %v", shop.ID, uerr)
		}
		return "", "", time.Time{}, fmt.Errorf("平台拒绝 token 请求: HTTP %d", resp.StatusCode())
	}
	if resp.StatusCode() != 200 {
		return "", "", time.Time{}, fmt.Errorf("token 端点返回 HTTP %d", resp.StatusCode())
	}

	return parseTokenResp(shop.Platform, resp.Body())
}

// parseTokenResp TikTok 包络带 code/data 且过期时间是绝对秒，Lazada 平铺且是相对秒
func parseTokenResp(platform string, body []byte) (string, string, time.Time, error) {
	switch platform {
	case model.PlatformTikTok:
		var tr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Data    struct {
				AccessToken         string `json:"access_token"`
				RefreshToken        string `json:"refresh_token"`
				AccessTokenExpireIn int64  `json:"access_token_expire_in"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &tr); err != nil {
			return "", "", time.Time{}, fmt.Errorf("token 响应解析失败: %w", err)
		}
		if tr.Code != 0 {
			return "", "", time.Time{}, fmt.Errorf("平台返回错误 code=%d: %s", tr.Code, tr.Message)
		}
		return tr.Data.AccessToken, tr.Data.RefreshToken, time.Unix(tr.Data.AccessTokenExpireIn, 0), nil

	default:
		var tr struct {
			Code         string `json:"code"`
			Message      string `json:"message"`
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
			ExpiresIn    int    `json:"expires_in"`
		}
		if err := json.Unmarshal(body, &tr); err != nil {
			return "", "", time.Time{}, fmt.Errorf("token 响应解析失败: %w", err)
		}
		if tr.Code != "" && tr.Code != "0" {
			return "", "", time.Time{}, fmt.Errorf("平台返回错误 code=%s: %s", tr.Code, tr.Message)
		}
		return tr.AccessToken, tr.RefreshToken, time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second), nil
	}
}

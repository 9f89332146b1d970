package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthTest(t *testing.T) (repository.ShopRepository, *AuthService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Shop{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	repo := repository.NewShopRepository(db)
	svc := NewAuthService(repo, "test-state-secret", "https://erp.example.com/api/auth/callback")
	return repo, svc
}

func seedOAuthShop(t *testing.T, repo repository.ShopRepository, platform string) *model.Shop {
	shop := &model.Shop{
		Platform:       platform,
		PlatformShopID: "9001",
		AppKey:         "ak",
		AppSecret:      "as",
		RefreshToken:   "old-refresh",
		Status:         model.ShopStatusActive,
	}
	if err := repo.Create(context.Background(), shop); err != nil {
		t.Fatalf("预置店铺失败: %v", err)
	}
	return shop
}

func stateFromURL(t *testing.T, loginURL string) string {
	u, err := url.Parse(loginURL)
	if err != nil {
		t.Fatalf("授权链接不合法: %v", err)
	}
	return u.Query().Get("state")
}

func TestAuthService_CallbackRoundTrip(t *testing.T) {
	repo, svc := setupAuthTest(t)
	shop := seedOAuthShop(t, repo, model.PlatformLazada)

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("表单解析失败: %v", err)
		}
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "auth-code-1", r.PostForm.Get("code"))
		assert.NotEmpty(t, r.PostForm.Get("code_verifier"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":          "0",
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"expires_in":    3600,
		})
	}))
	defer tokenSrv.Close()
	svc.endpoints[model.PlatformLazada] = oauthEndpoints{
		AuthURL:  "https://auth.lazada.com/oauth/authorize",
		TokenURL: tokenSrv.URL,
	}

	loginURL, err := svc.GenerateLoginURL(context.Background(), shop.ID)
	if err != nil {
		t.Fatalf("生成授权链接失败: %v", err)
	}
	assert.True(t, strings.HasPrefix(loginURL, "https://auth.lazada.com/oauth/authorize?"))
	assert.Contains(t, loginURL, "code_challenge_method=S256")

	state := stateFromURL(t, loginURL)
	updated, err := svc.HandleCallback(context.Background(), "auth-code-1", state)
	if err != nil {
		t.Fatalf("回调处理失败: %v", err)
	}
	assert.Equal(t, "new-access", updated.AccessToken)

	stored, _ := repo.GetByID(context.Background(), shop.ID)
	assert.Equal(t, "new-access", stored.AccessToken)
	assert.Equal(t, "new-refresh", stored.RefreshToken)
	assert.Equal(t, model.TokenStatusValid, stored.TokenStatus)
	assert.True(t, stored.TokenExpiresAt.After(time.Now().Add(30*time.Minute)))

	// 同一个 state 不能换两次 Token
	_, err = svc.HandleCallback(context.Background(), "auth-code-1", state)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "已使用")
}

func TestAuthService_RejectsForgedState(t *testing.T) {
	repo, svc := setupAuthTest(t)
	seedOAuthShop(t, repo, model.PlatformTikTok)

	_, err := svc.HandleCallback(context.Background(), "code", "not-a-jwt")
	assert.Error(t, err)

	// 换把密钥签出来的 state 一样要拒绝
	other := NewAuthService(repo, "attacker-secret", "https://erp.example.com/api/auth/callback")
	forged, err := other.signState(1, "nonce")
	if err != nil {
		t.Fatalf("构造伪 state 失败: %v", err)
	}
	_, err = svc.HandleCallback(context.Background(), "code", forged)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "state")
}

func TestAuthService_LoginURLRequiresOAuthPlatform(t *testing.T) {
	repo, svc := setupAuthTest(t)
	shop := seedOAuthShop(t, repo, model.PlatformJST)

	_, err := svc.GenerateLoginURL(context.Background(), shop.ID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "固定凭证")
}

func TestAuthService_RefreshMarksInvalidOnDenial(t *testing.T) {
	repo, svc := setupAuthTest(t)
	shop := seedOAuthShop(t, repo, model.PlatformTikTok)

	denied := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer denied.Close()
	svc.endpoints[model.PlatformTikTok] = oauthEndpoints{TokenURL: denied.URL}

	err := svc.RefreshAccessToken(context.Background(), shop)
	assert.Error(t, err)

	stored, _ := repo.GetByID(context.Background(), shop.ID)
	assert.Equal(t, model.TokenStatusInvalid, stored.TokenStatus)
}

func TestAuthService_RefreshTikTokEnvelope(t *testing.T) {
	repo, svc := setupAuthTest(t)
	shop := seedOAuthShop(t, repo, model.PlatformTikTok)

	expireAt := time.Now().Add(6 * time.Hour).Unix()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    0,
			"message": "success",
			"data": map[string]interface{}{
				"access_token":           "tt-access",
				"refresh_token":          "tt-refresh",
				"access_token_expire_in": expireAt,
			},
		})
	}))
	defer tokenSrv.Close()
	svc.endpoints[model.PlatformTikTok] = oauthEndpoints{TokenURL: tokenSrv.URL}

	if err := svc.RefreshAccessToken(context.Background(), shop); err != nil {
		t.Fatalf("刷新失败: %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), shop.ID)
	assert.Equal(t, "tt-access", stored.AccessToken)
	assert.Equal(t, "tt-refresh", stored.RefreshToken)
	assert.Equal(t, expireAt, stored.TokenExpiresAt.Unix())
}

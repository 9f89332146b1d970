package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试辅助 ====================

func setupCtlDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Shop{}, &model.SyncState{}, &model.Order{}, &model.OrderItem{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

func setupShopCtlRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	shopSvc := service.NewShopService(repository.NewShopRepository(db))
	ctl := NewShopController(shopSvc)

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/shops", ctl.Create)
		api.GET("/shops", ctl.List)
		api.GET("/shops/:id", ctl.Get)
		api.PUT("/shops/:id", ctl.UpdateConfig)
		api.DELETE("/shops/:id", ctl.Delete)
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("编码请求体失败: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 测试用例 ====================

func TestShopController_CreateAndGet(t *testing.T) {
	db := setupCtlDB(t)
	r := setupShopCtlRouter(db)

	w := doJSON(t, r, http.MethodPost, "/api/shops", gin.H{
		"platform":         model.PlatformJST,
		"platform_shop_id": "10086",
		"shop_name":        "测试账套",
		"app_key":          "k1",
		"app_secret":       "s1",
		"company_id":       "c1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// 固定凭证平台带 key 直接激活
	var shop model.Shop
	if err := db.First(&shop, "platform_shop_id = ?", "10086").Error; err != nil {
		t.Fatalf("查询店铺失败: %v", err)
	}
	assert.Equal(t, model.ShopStatusActive, shop.Status)
	assert.Equal(t, model.TokenStatusValid, shop.TokenStatus)

	// 重复接入被拒
	w = doJSON(t, r, http.MethodPost, "/api/shops", gin.H{
		"platform":         model.PlatformJST,
		"platform_shop_id": "10086",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 未知平台被拒
	w = doJSON(t, r, http.MethodPost, "/api/shops", gin.H{
		"platform":         "shopee",
		"platform_shop_id": "1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/shops/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "测试账套")
}

func TestShopController_UpdateConfigWhitelist(t *testing.T) {
	db := setupCtlDB(t)
	r := setupShopCtlRouter(db)

	doJSON(t, r, http.MethodPost, "/api/shops", gin.H{
		"platform":         model.PlatformPancake,
		"platform_shop_id": "9001",
		"app_key":          "pk",
	})

	// 允许的配置项
	w := doJSON(t, r, http.MethodPut, "/api/shops/1", gin.H{"page_size": 30, "sync_delay": 800})
	assert.Equal(t, http.StatusOK, w.Code)

	var shop model.Shop
	db.First(&shop, 1)
	assert.Equal(t, 30, shop.PageSize)
	assert.Equal(t, 800, shop.SyncDelay)

	// 白名单外字段被拒
	w = doJSON(t, r, http.MethodPut, "/api/shops/1", gin.H{"platform": "tiktok"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShopController_ListAndDelete(t *testing.T) {
	db := setupCtlDB(t)
	r := setupShopCtlRouter(db)

	doJSON(t, r, http.MethodPost, "/api/shops", gin.H{
		"platform": model.PlatformJST, "platform_shop_id": "a1", "app_key": "k",
	})
	doJSON(t, r, http.MethodPost, "/api/shops", gin.H{
		"platform": model.PlatformTikTok, "platform_shop_id": "b2",
	})

	w := doJSON(t, r, http.MethodGet, "/api/shops?platform=jst", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	assert.Equal(t, int64(1), resp.Total)

	w = doJSON(t, r, http.MethodDelete, "/api/shops/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&model.Shop{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

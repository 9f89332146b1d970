package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupOrderCtlRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	ctl := NewOrderController(repository.NewOrderRepository(db))

	r := gin.New()
	api := r.Group("/api")
	{
		api.GET("/orders", ctl.List)
		api.GET("/orders/:id", ctl.Detail)
	}
	return r
}

func seedCtlOrder(t *testing.T, db *gorm.DB, platform, extID, buyer string, orderedAt time.Time) *model.Order {
	order := &model.Order{
		Platform:        platform,
		ShopID:          1,
		ExternalOrderID: extID,
		BuyerName:       buyer,
		Status:          model.OrderStatusPending,
		TotalAmount:     1000,
		Currency:        "CNY",
		OrderedAt:       &orderedAt,
		Items: []model.OrderItem{
			{SKU: "SKU-" + extID, Title: "测试商品", Quantity: 1, PriceAmount: 1000},
		},
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("预置订单失败: %v", err)
	}
	return order
}

func TestOrderController_ListFilters(t *testing.T) {
	db := setupCtlDB(t)
	r := setupOrderCtlRouter(db)

	seedCtlOrder(t, db, model.PlatformJST, "J1", "张三", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	seedCtlOrder(t, db, model.PlatformJST, "J2", "李四", time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC))
	seedCtlOrder(t, db, model.PlatformPancake, "P1", "王五", time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC))

	w := doJSON(t, r, http.MethodGet, "/api/orders?platform=jst", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total int64 `json:"total"`
		Data  []model.Order
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	assert.Equal(t, int64(2), resp.Total)

	// 日期窗口只命中 8月10日 的单
	w = doJSON(t, r, http.MethodGet, "/api/orders?platform=jst&start_date=2026-08-05&end_date=2026-08-10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, "J2", resp.Data[0].ExternalOrderID)
}

func TestOrderController_DetailWithItems(t *testing.T) {
	db := setupCtlDB(t)
	r := setupOrderCtlRouter(db)

	order := seedCtlOrder(t, db, model.PlatformJST, "J100", "赵六", time.Now())

	w := doJSON(t, r, http.MethodGet, "/api/orders/"+strconv.FormatInt(order.ID, 10), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SKU-J100")

	w = doJSON(t, r, http.MethodGet, "/api/orders/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package connector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"omnisync_v1_202608/internal/client"
	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/pkg/net"

	"github.com/stretchr/testify/assert"
)

func pancakeOrderPayload(id float64, buyer string) map[string]interface{} {
	return map[string]interface{}{
		"id":                id,
		"bill_full_name":    buyer,
		"bill_phone_number": "0901234567",
		"status_name":       "new",
		"total_price":       float64(150000),
		"shipping_fee":      float64(20000),
		"inserted_at":       "2026-08-10T09:15:00.123456",
		"updated_at":        "2026-08-11T10:00:00",
		"items": []interface{}{
			map[string]interface{}{
				"id":       float64(77001),
				"quantity": float64(2),
				"variation_info": map[string]interface{}{
					"display_id":   "VAR-1",
					"name":         "Áo thun đen size M",
					"retail_price": float64(65000),
				},
			},
		},
	}
}

func TestPancake_SyncOrders_EndToEnd(t *testing.T) {
	var pagesServed []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") == "" {
			t.Errorf("请求缺少 api_key")
		}
		if r.URL.Path != "/shops/9001/orders" {
			t.Errorf("未预期的请求路径: %s", r.URL.Path)
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page_number"))
		pagesServed = append(pagesServed, page)

		var data []map[string]interface{}
		switch page {
		case 1:
			data = []map[string]interface{}{
				pancakeOrderPayload(501, "Trần Thị B"),
				pancakeOrderPayload(502, "Lê Văn C"),
			}
		case 2:
			data = []map[string]interface{}{pancakeOrderPayload(503, "Phạm Văn D")}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"data":        data,
			"total_pages": 2,
		})
	}))
	defer srv.Close()

	db := setupConnDB(t)
	conn := NewPancake(db, net.NewDispatcher(), newCursor(db), nil)
	shop := newTestShop(model.PlatformPancake, srv.URL)
	shop.PageSize = 2

	res, err := conn.SyncOrders(context.Background(), shop)
	if err != nil {
		t.Fatalf("同步失败: %v", err)
	}
	assert.Equal(t, []int{1, 2}, pagesServed)
	assert.Equal(t, 3, res.Created)
	assert.True(t, res.Completed)

	var order model.Order
	if err := db.Preload("Items").Where("external_order_id = ?", "501").First(&order).Error; err != nil {
		t.Fatalf("订单未入库: %v", err)
	}
	assert.Equal(t, "Trần Thị B", order.BuyerName)
	// 越南盾金额不放大
	assert.Equal(t, int64(150000), order.TotalAmount)
	assert.Equal(t, int64(20000), order.ShippingAmount)
	assert.Equal(t, "VND", order.Currency)
	assert.Equal(t, model.OrderStatusPending, order.Status)

	if assert.Len(t, order.Items, 1) {
		assert.Equal(t, "VAR-1", order.Items[0].SKU)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.Equal(t, int64(65000), order.Items[0].PriceAmount)
	}
}

func TestPancake_SyncOrders_SuccessFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "invalid api key",
		})
	}))
	defer srv.Close()

	db := setupConnDB(t)
	conn := NewPancake(db, net.NewDispatcher(), newCursor(db), nil)
	shop := newTestShop(model.PlatformPancake, srv.URL)

	_, err := conn.SyncOrders(context.Background(), shop)
	var apiErr *client.RemoteAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("期望 RemoteAPIError, 实际: %v", err)
	}
	assert.Contains(t, apiErr.Message, "invalid api key")
}

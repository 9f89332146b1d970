package connector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/pkg/net"

	"github.com/stretchr/testify/assert"
)

func TestTikTok_SyncCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-tts-access-token") == "" {
			t.Errorf("请求缺少 access token 头")
		}

		switch r.URL.Path {
		case "/api/logistics/get_warehouse_list":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 0, "message": "Success",
				"data": map[string]interface{}{
					"warehouse_list": []map[string]interface{}{
						{
							"warehouse_id":   "7000001",
							"warehouse_name": "主仓",
							"warehouse_type": 1,
							"is_default":     true,
							"warehouse_address": map[string]interface{}{
								"city": "Ho Chi Minh",
							},
						},
						{"warehouse_id": "7000002", "warehouse_name": "退货仓", "warehouse_type": 2},
					},
				},
			})
		case "/api/products/search":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 0, "message": "Success",
				"data": map[string]interface{}{
					"products": []map[string]interface{}{
						{
							"id": "8800001", "name": "T-Shirt", "status": "4",
							"skus": []interface{}{
								map[string]interface{}{"price": map[string]interface{}{"original_price": "9.99", "currency": "USD"}},
								map[string]interface{}{"price": map[string]interface{}{"original_price": "12.50", "currency": "USD"}},
							},
						},
					},
					"total": 1,
				},
			})
		default:
			t.Errorf("未预期的请求路径: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	db := setupConnDB(t)
	conn := NewTikTok(db, net.NewDispatcher(), newCursor(db), nil)
	shop := newTestShop(model.PlatformTikTok, srv.URL)

	results, err := conn.SyncCatalog(context.Background(), shop)
	if err != nil {
		t.Fatalf("同步失败: %v", err)
	}
	assert.Len(t, results, 2)
	assert.Equal(t, model.ResourceWarehouse, results[0].Resource)
	assert.Equal(t, 2, results[0].Created)
	assert.Equal(t, model.ResourceProduct, results[1].Resource)
	assert.Equal(t, 1, results[1].Created)

	var wh model.Warehouse
	db.Where("external_id = ?", "7000001").First(&wh)
	assert.Equal(t, "主仓", wh.Name)
	assert.Equal(t, "1", wh.Type)
	assert.Equal(t, "Ho Chi Minh", wh.City)
	assert.True(t, wh.IsDefault)

	var prod model.Product
	db.Where("external_id = ?", "8800001").First(&prod)
	assert.Equal(t, "T-Shirt", prod.Title)
	assert.Equal(t, 2, prod.SKUCount)
	assert.Equal(t, int64(999), prod.MinPriceAmount)
	assert.Equal(t, "USD", prod.Currency)
}

func TestLazada_SyncCatalog_FlattensTree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sign") == "" {
			t.Errorf("请求缺少签名参数")
		}

		switch r.URL.Path {
		case "/category/tree/get":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code": "0",
				"data": []map[string]interface{}{
					{
						"category_id": float64(100), "name": "服饰", "leaf": false,
						"children": []interface{}{
							map[string]interface{}{"category_id": float64(101), "name": "男装", "leaf": true},
							map[string]interface{}{"category_id": float64(102), "name": "女装", "leaf": true},
						},
					},
					{"category_id": float64(200), "name": "数码", "leaf": true},
				},
			})
		case "/rc/warehouses/get":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code": "0",
				"data": []map[string]interface{}{
					{"warehouse_code": "WH-VN-1", "name": "胡志明仓", "city": "Ho Chi Minh", "is_default": true},
				},
			})
		default:
			t.Errorf("未预期的请求路径: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	db := setupConnDB(t)
	conn := NewLazada(db, net.NewDispatcher(), newCursor(db), nil)
	shop := newTestShop(model.PlatformLazada, srv.URL)

	results, err := conn.SyncCatalog(context.Background(), shop)
	if err != nil {
		t.Fatalf("同步失败: %v", err)
	}
	assert.Len(t, results, 2)
	assert.Equal(t, 4, results[0].Created)
	assert.Equal(t, 1, results[1].Created)

	var child model.Category
	db.Where("external_id = ?", "101").First(&child)
	assert.Equal(t, "100", child.ParentExternalID)
	assert.True(t, child.IsLeaf)

	var root model.Category
	db.Where("external_id = ?", "100").First(&root)
	assert.Equal(t, "", root.ParentExternalID)
	assert.False(t, root.IsLeaf)

	var wh model.Warehouse
	db.Where("external_id = ?", "WH-VN-1").First(&wh)
	assert.Equal(t, "胡志明仓", wh.Name)
	assert.True(t, wh.IsDefault)
}

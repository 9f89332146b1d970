package connector

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"omnisync_v1_202608/internal/client"
	"omnisync_v1_202608/internal/mapper"
	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/internal/syncx"
	"omnisync_v1_202608/pkg/net"

	"gorm.io/gorm"
)

// ==================== TikTok Shop 连接器 ====================

const tiktokDefaultBase = "https://open-api.tiktokglobalshop.com"

// TikTok Shop：access token 走请求头，OAuth 授权
// 主数据 = 仓库列表 + 商品列表
type TikTok struct {
	db      *gorm.DB
	api     *client.Client
	cursor  *syncx.CursorStore
	archive PageArchiver
}

// NewTikTok 创建 TikTok 连接器
func NewTikTok(db *gorm.DB, sender net.Dispatcher, cursor *syncx.CursorStore, archive PageArchiver) *TikTok {
	return &TikTok{
		db:      db,
		api:     client.New(model.PlatformTikTok, tiktokDefaultBase, client.TikTokSigner{}, sender),
		cursor:  cursor,
		archive: archive,
	}
}

// Platform 平台标识
func (c *TikTok) Platform() string { return model.PlatformTikTok }

// ==================== 字段映射表 ====================

var tiktokWarehouseTable = mapper.Table{
	Entity: "tiktok_warehouse",
	Rules: []mapper.FieldRule{
		{VendorKey: "warehouse_id", LocalField: "ExternalID", Coerce: mapper.BigID},
		{VendorKey: "warehouse_name", LocalField: "Name", Coerce: mapper.Text},
		{VendorKey: "warehouse_type", LocalField: "Type", Coerce: mapper.Text},
		{VendorKey: "is_default", LocalField: "IsDefault", Coerce: mapper.Bool},
	},
}

var tiktokProductTable = mapper.Table{
	Entity: "tiktok_product",
	Rules: []mapper.FieldRule{
		{VendorKey: "id", LocalField: "ExternalID", Coerce: mapper.BigID},
		{VendorKey: "name", LocalField: "Title", Coerce: mapper.Text},
		{VendorKey: "status", LocalField: "ExternalStatus", Coerce: mapper.Text},
	},
}

// ==================== 包络处理 ====================

type tiktokEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *TikTok) decode(endpoint string, raw json.RawMessage) (json.RawMessage, error) {
	var env tiktokEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &client.MalformedResponseError{
			Platform: model.PlatformTikTok,
			Endpoint: endpoint,
			Snippet:  client.Snippet(raw),
		}
	}
	if env.Code != 0 {
		return nil, envelopeError(model.PlatformTikTok, endpoint, env.Code, env.Message)
	}
	return env.Data, nil
}

// ==================== 主数据同步 ====================

// SyncCatalog 仓库在前、商品在后，仓库是商品履约配置的前置数据
func (c *TikTok) SyncCatalog(ctx context.Context, shop *model.Shop) ([]SyncResult, error) {
	var results []SyncResult

	wh, err := c.syncWarehouses(ctx, shop)
	if wh != nil {
		results = append(results, *wh)
	}
	if err != nil {
		return results, err
	}

	prod, err := c.syncProducts(ctx, shop)
	if prod != nil {
		results = append(results, *prod)
	}
	return results, err
}

// syncWarehouses 仓库列表不分页，整表一次拉全
func (c *TikTok) syncWarehouses(ctx context.Context, shop *model.Shop) (*SyncResult, error) {
	start := time.Now()
	key := syncx.JobKey{Platform: model.PlatformTikTok, Resource: model.ResourceWarehouse, ShopID: shop.ID}
	runner := &syncx.Runner{Cursor: c.cursor, Delay: delayOf(shop)}

	stats, err := runner.Run(ctx, key, 1, func(ctx context.Context, page int, window *time.Time) (syncx.PageResult, error) {
		endpoint := "/api/logistics/get_warehouse_list"
		raw, err := c.api.GetBase(ctx, baseOr(shop.APIBase, tiktokDefaultBase), endpoint, url.Values{}, credFromShop(shop))
		if err != nil {
			return syncx.PageResult{}, err
		}
		data, err := c.decode(endpoint, raw)
		if err != nil {
			return syncx.PageResult{}, err
		}

		var body struct {
			WarehouseList []map[string]interface{} `json:"warehouse_list"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return syncx.PageResult{}, &client.MalformedResponseError{
				Platform: model.PlatformTikTok,
				Endpoint: endpoint,
				Snippet:  client.Snippet(data),
			}
		}

		recs := make([]model.Warehouse, 0, len(body.WarehouseList))
		for _, payload := range body.WarehouseList {
			rec := model.Warehouse{Platform: model.PlatformTikTok, ShopID: shop.ID}
			tiktokWarehouseTable.Apply(payload, &rec)
			if rec.ExternalID == "" {
				continue
			}
			// 城市埋在嵌套地址对象里，映射表只处理平铺字段
			if addr, ok := payload["warehouse_address"].(map[string]interface{}); ok {
				if city, ok := addr["city"].(string); ok {
					rec.City = city
				}
			}
			if raw, err := json.Marshal(payload); err == nil {
				rec.RawData = raw
			}
			recs = append(recs, rec)
		}

		target := repository.WarehouseTarget{Platform: model.PlatformTikTok, ShopID: shop.ID}
		res, err := syncx.UpsertBatch[model.Warehouse](ctx, c.db, target, recs)
		if err != nil {
			return syncx.PageResult{}, err
		}

		archivePage(ctx, c.archive, model.PlatformTikTok, model.ResourceWarehouse, shop.ID, page, raw)
		return syncx.PageResult{Fetched: len(recs), IsLast: true, Created: res.Created, Updated: res.Updated}, nil
	})
	return newResult(model.PlatformTikTok, model.ResourceWarehouse, shop.ID, stats, start), err
}

// syncProducts 商品列表按 page_number 翻页
func (c *TikTok) syncProducts(ctx context.Context, shop *model.Shop) (*SyncResult, error) {
	start := time.Now()
	key := syncx.JobKey{Platform: model.PlatformTikTok, Resource: model.ResourceProduct, ShopID: shop.ID}
	pageSize := pageSizeOr(shop, 50)
	runner := &syncx.Runner{Cursor: c.cursor, Delay: delayOf(shop)}

	stats, err := runner.Run(ctx, key, pageSize, func(ctx context.Context, page int, window *time.Time) (syncx.PageResult, error) {
		return c.syncProductPage(ctx, shop, page, pageSize)
	})
	return newResult(model.PlatformTikTok, model.ResourceProduct, shop.ID, stats, start), err
}

func (c *TikTok) syncProductPage(ctx context.Context, shop *model.Shop, page, pageSize int) (syncx.PageResult, error) {
	endpoint := "/api/products/search"
	body := map[string]interface{}{
		"page_number": page,
		"page_size":   pageSize,
	}
	raw, err := c.api.CallBase(ctx, baseOr(shop.APIBase, tiktokDefaultBase), endpoint, body, credFromShop(shop))
	if err != nil {
		return syncx.PageResult{}, err
	}
	data, err := c.decode(endpoint, raw)
	if err != nil {
		return syncx.PageResult{}, err
	}

	var list struct {
		Products []map[string]interface{} `json:"products"`
		Total    int                      `json:"total"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return syncx.PageResult{}, &client.MalformedResponseError{
			Platform: model.PlatformTikTok,
			Endpoint: endpoint,
			Snippet:  client.Snippet(data),
		}
	}

	recs := make([]model.Product, 0, len(list.Products))
	for _, payload := range list.Products {
		rec := model.Product{Platform: model.PlatformTikTok, ShopID: shop.ID}
		tiktokProductTable.Apply(payload, &rec)
		if rec.ExternalID == "" {
			continue
		}
		rec.SKUCount, rec.MinPriceAmount, rec.Currency = tiktokSKUSummary(payload)
		if raw, err := json.Marshal(payload); err == nil {
			rec.RawData = raw
		}
		recs = append(recs, rec)
	}

	target := repository.ProductTarget{Platform: model.PlatformTikTok, ShopID: shop.ID}
	res, err := syncx.UpsertBatch[model.Product](ctx, c.db, target, recs)
	if err != nil {
		return syncx.PageResult{}, err
	}

	archivePage(ctx, c.archive, model.PlatformTikTok, model.ResourceProduct, shop.ID, page, raw)
	return syncx.PageResult{
		Fetched: len(list.Products),
		IsLast:  page*pageSize >= list.Total,
		Created: res.Created,
		Updated: res.Updated,
	}, nil
}

// tiktokSKUSummary 从 skus 数组汇总规格数和最低报价
func tiktokSKUSummary(payload map[string]interface{}) (int, int64, string) {
	skus, _ := payload["skus"].([]interface{})
	var minPrice int64
	var currency string
	for _, s := range skus {
		sku, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		price, ok := sku["price"].(map[string]interface{})
		if !ok {
			continue
		}
		if cur, ok := price["currency"].(string); ok && currency == "" {
			currency = cur
		}
		amount, err := mapper.Cents(price["original_price"])
		if err != nil || amount == nil {
			continue
		}
		v := amount.(int64)
		if minPrice == 0 || v < minPrice {
			minPrice = v
		}
	}
	return len(skus), minPrice, currency
}

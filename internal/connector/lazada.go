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

// ==================== Lazada 连接器 ====================

const lazadaDefaultBase = "https://api.lazada.vn/rest"

// Lazada：HMAC 签名的 GET 接口，OAuth 授权
// 主数据 = 类目树 + 仓库列表，都是整表拉取不分页
type Lazada struct {
	db      *gorm.DB
	api     *client.Client
	cursor  *syncx.CursorStore
	archive PageArchiver
}

// NewLazada 创建 Lazada 连接器
func NewLazada(db *gorm.DB, sender net.Dispatcher, cursor *syncx.CursorStore, archive PageArchiver) *Lazada {
	return &Lazada{
		db:      db,
		api:     client.New(model.PlatformLazada, lazadaDefaultBase, client.LazadaSigner{}, sender),
		cursor:  cursor,
		archive: archive,
	}
}

// Platform 平台标识
func (c *Lazada) Platform() string { return model.PlatformLazada }

// ==================== 字段映射表 ====================

var lazadaCategoryTable = mapper.Table{
	Entity: "lazada_category",
	Rules: []mapper.FieldRule{
		{VendorKey: "category_id", LocalField: "ExternalID", Coerce: mapper.BigID},
		{VendorKey: "name", LocalField: "Name", Coerce: mapper.Text},
		{VendorKey: "leaf", LocalField: "IsLeaf", Coerce: mapper.Bool},
	},
}

var lazadaWarehouseTable = mapper.Table{
	Entity: "lazada_warehouse",
	Rules: []mapper.FieldRule{
		{VendorKey: "warehouse_code", LocalField: "ExternalID", Coerce: mapper.Text},
		{VendorKey: "name", LocalField: "Name", Coerce: mapper.Text},
		{VendorKey: "type", LocalField: "Type", Coerce: mapper.Text},
		{VendorKey: "city", LocalField: "City", Coerce: mapper.Text},
		{VendorKey: "is_default", LocalField: "IsDefault", Coerce: mapper.Bool},
	},
}

// ==================== 包络处理 ====================

// Lazada 的业务错误码是字符串，"0" 表示成功
type lazadaEnvelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Lazada) get(ctx context.Context, shop *model.Shop, endpoint string, params url.Values) (json.RawMessage, error) {
	raw, err := c.api.GetBase(ctx, baseOr(shop.APIBase, lazadaDefaultBase), endpoint, params, credFromShop(shop))
	if err != nil {
		return nil, err
	}

	var env lazadaEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &client.MalformedResponseError{
			Platform: model.PlatformLazada,
			Endpoint: endpoint,
			Snippet:  client.Snippet(raw),
		}
	}
	if env.Code != "0" {
		return nil, envelopeError(model.PlatformLazada, endpoint, env.Code, env.Message)
	}
	return env.Data, nil
}

// ==================== 主数据同步 ====================

// SyncCatalog 类目树 + 仓库列表
func (c *Lazada) SyncCatalog(ctx context.Context, shop *model.Shop) ([]SyncResult, error) {
	var results []SyncResult

	cat, err := c.syncCategories(ctx, shop)
	if cat != nil {
		results = append(results, *cat)
	}
	if err != nil {
		return results, err
	}

	wh, err := c.syncWarehouses(ctx, shop)
	if wh != nil {
		results = append(results, *wh)
	}
	return results, err
}

// syncCategories 类目树整棵拉回后拍平，父子关系用平台类目 ID 维系
func (c *Lazada) syncCategories(ctx context.Context, shop *model.Shop) (*SyncResult, error) {
	start := time.Now()
	key := syncx.JobKey{Platform: model.PlatformLazada, Resource: model.ResourceCategory, ShopID: shop.ID}
	runner := &syncx.Runner{Cursor: c.cursor, Delay: delayOf(shop)}

	stats, err := runner.Run(ctx, key, 1, func(ctx context.Context, page int, window *time.Time) (syncx.PageResult, error) {
		endpoint := "/category/tree/get"
		data, err := c.get(ctx, shop, endpoint, url.Values{})
		if err != nil {
			return syncx.PageResult{}, err
		}

		var tree []map[string]interface{}
		if err := json.Unmarshal(data, &tree); err != nil {
			return syncx.PageResult{}, &client.MalformedResponseError{
				Platform: model.PlatformLazada,
				Endpoint: endpoint,
				Snippet:  client.Snippet(data),
			}
		}

		var recs []model.Category
		flattenCategoryTree(tree, "", shop.ID, &recs)

		target := repository.CategoryTarget{Platform: model.PlatformLazada, ShopID: shop.ID}
		res, err := syncx.UpsertBatch[model.Category](ctx, c.db, target, recs)
		if err != nil {
			return syncx.PageResult{}, err
		}

		archivePage(ctx, c.archive, model.PlatformLazada, model.ResourceCategory, shop.ID, page, data)
		return syncx.PageResult{Fetched: len(recs), IsLast: true, Created: res.Created, Updated: res.Updated}, nil
	})
	return newResult(model.PlatformLazada, model.ResourceCategory, shop.ID, stats, start), err
}

// flattenCategoryTree 深度优先拍平类目树
func flattenCategoryTree(nodes []map[string]interface{}, parentID string, shopID int64, out *[]model.Category) {
	for _, node := range nodes {
		rec := model.Category{
			Platform:         model.PlatformLazada,
			ShopID:           shopID,
			ParentExternalID: parentID,
		}
		lazadaCategoryTable.Apply(node, &rec)
		if rec.ExternalID == "" {
			continue
		}
		*out = append(*out, rec)

		rawChildren, _ := node["children"].([]interface{})
		if len(rawChildren) == 0 {
			continue
		}
		children := make([]map[string]interface{}, 0, len(rawChildren))
		for _, rc := range rawChildren {
			if child, ok := rc.(map[string]interface{}); ok {
				children = append(children, child)
			}
		}
		flattenCategoryTree(children, rec.ExternalID, shopID, out)
	}
}

// syncWarehouses 仓库列表
func (c *Lazada) syncWarehouses(ctx context.Context, shop *model.Shop) (*SyncResult, error) {
	start := time.Now()
	key := syncx.JobKey{Platform: model.PlatformLazada, Resource: model.ResourceWarehouse, ShopID: shop.ID}
	runner := &syncx.Runner{Cursor: c.cursor, Delay: delayOf(shop)}

	stats, err := runner.Run(ctx, key, 1, func(ctx context.Context, page int, window *time.Time) (syncx.PageResult, error) {
		endpoint := "/rc/warehouses/get"
		data, err := c.get(ctx, shop, endpoint, url.Values{})
		if err != nil {
			return syncx.PageResult{}, err
		}

		var list []map[string]interface{}
		if err := json.Unmarshal(data, &list); err != nil {
			return syncx.PageResult{}, &client.MalformedResponseError{
				Platform: model.PlatformLazada,
				Endpoint: endpoint,
				Snippet:  client.Snippet(data),
			}
		}

		recs := make([]model.Warehouse, 0, len(list))
		for _, payload := range list {
			rec := model.Warehouse{Platform: model.PlatformLazada, ShopID: shop.ID}
			lazadaWarehouseTable.Apply(payload, &rec)
			if rec.ExternalID == "" {
				continue
			}
			if raw, err := json.Marshal(payload); err == nil {
				rec.RawData = raw
			}
			recs = append(recs, rec)
		}

		target := repository.WarehouseTarget{Platform: model.PlatformLazada, ShopID: shop.ID}
		res, err := syncx.UpsertBatch[model.Warehouse](ctx, c.db, target, recs)
		if err != nil {
			return syncx.PageResult{}, err
		}

		archivePage(ctx, c.archive, model.PlatformLazada, model.ResourceWarehouse, shop.ID, page, data)
		return syncx.PageResult{Fetched: len(recs), IsLast: true, Created: res.Created, Updated: res.Updated}, nil
	})
	return newResult(model.PlatformLazada, model.ResourceWarehouse, shop.ID, stats, start), err
}

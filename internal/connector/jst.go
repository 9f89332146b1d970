package connector

import (
	"context"
	"encoding/json"
	"time"

	"omnisync_v1_202608/internal/client"
	"omnisync_v1_202608/internal/mapper"
	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/internal/syncx"
	"omnisync_v1_202608/pkg/net"

	"gorm.io/gorm"
)

// ==================== 聚水潭连接器 ====================

const (
	jstDefaultBase = "https://openapi.jushuitan.com"
	// 单据详情接口单次最多传 200 个单号
	jstDetailChunk = 200
	jstTimeLayout  = "2006-01-02 15:04:05"
	// 首轮全量没有增量窗口时的回溯深度
	jstDefaultLookback = 7 * 24 * time.Hour
)

// JST 聚水潭 ERP：签名 POST 接口，page_index/page_size 翻页
// 订单走 列表发现单号 -> 分批详情 -> 订单头+明细整批落库
type JST struct {
	db      *gorm.DB
	api     *client.Client
	cursor  *syncx.CursorStore
	archive PageArchiver
}

// NewJST 创建聚水潭连接器
func NewJST(db *gorm.DB, sender net.Dispatcher, cursor *syncx.CursorStore, archive PageArchiver) *JST {
	return &JST{
		db:      db,
		api:     client.New(model.PlatformJST, jstDefaultBase, client.JSTSigner{}, sender),
		cursor:  cursor,
		archive: archive,
	}
}

// Platform 平台标识
func (c *JST) Platform() string { return model.PlatformJST }

// ==================== 字段映射表 ====================

var jstOrderTable = mapper.Table{
	Entity: "jst_order",
	Rules: []mapper.FieldRule{
		{VendorKey: "o_id", LocalField: "ExternalOrderID", Coerce: mapper.BigID},
		{VendorKey: "receiver_name", LocalField: "BuyerName", Coerce: mapper.Text},
		{VendorKey: "receiver_mobile", LocalField: "BuyerPhone", Coerce: mapper.Text},
		{VendorKey: "status", LocalField: "ExternalStatus", Coerce: mapper.Text},
		{VendorKey: "pay_amount", LocalField: "TotalAmount", Coerce: mapper.Cents},
		{VendorKey: "freight", LocalField: "ShippingAmount", Coerce: mapper.Cents},
		{VendorKey: "free_amount", LocalField: "DiscountAmount", Coerce: mapper.Cents},
		{VendorKey: "currency", LocalField: "Currency", Coerce: mapper.Text},
		{VendorKey: "labels", LocalField: "Labels", Coerce: mapper.StringSlice},
		{VendorKey: "wms_co_id", LocalField: "WarehouseCode", Coerce: mapper.Text},
		{VendorKey: "l_id", LocalField: "TrackingNumber", Coerce: mapper.Text},
		{VendorKey: "order_date", LocalField: "OrderedAt", Coerce: mapper.LocalDateTime},
		{VendorKey: "pay_date", LocalField: "PaidAt", Coerce: mapper.LocalDateTime},
		{VendorKey: "modified", LocalField: "ModifiedAt", Coerce: mapper.LocalDateTime},
	},
}

var jstOrderItemTable = mapper.Table{
	Entity: "jst_order_item",
	Rules: []mapper.FieldRule{
		{VendorKey: "oi_id", LocalField: "ExternalItemID", Coerce: mapper.BigID},
		{VendorKey: "sku_id", LocalField: "SKU", Coerce: mapper.Text},
		{VendorKey: "name", LocalField: "Title", Coerce: mapper.Text},
		{VendorKey: "qty", LocalField: "Quantity", Coerce: mapper.Int},
		{VendorKey: "amount", LocalField: "PriceAmount", Coerce: mapper.Cents},
		{VendorKey: "currency", LocalField: "Currency", Coerce: mapper.Text},
	},
}

var jstInventoryTable = mapper.Table{
	Entity: "jst_inventory",
	Rules: []mapper.FieldRule{
		{VendorKey: "sku_id", LocalField: "SKU", Coerce: mapper.Text},
		{VendorKey: "name", LocalField: "Name", Coerce: mapper.Text},
		{VendorKey: "qty", LocalField: "Quantity", Coerce: mapper.Int},
		{VendorKey: "sellable_qty", LocalField: "Sellable", Coerce: mapper.Int},
		{VendorKey: "purchase_qty", LocalField: "Purchasing", Coerce: mapper.Int},
		{VendorKey: "wms_co_id", LocalField: "WarehouseCode", Coerce: mapper.Text},
	},
}

// jstLocalStatus 平台状态归一到本地状态
func jstLocalStatus(external string) string {
	switch external {
	case "WaitConfirm", "WaitFConfirm", "WaitPay":
		return model.OrderStatusPending
	case "Delivering", "Sent":
		return model.OrderStatusShipped
	case "Success":
		return model.OrderStatusDelivered
	case "Cancelled":
		return model.OrderStatusCanceled
	default:
		return model.OrderStatusProcessing
	}
}

// ==================== 包络处理 ====================

type jstEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *JST) call(ctx context.Context, shop *model.Shop, endpoint string, body interface{}) (json.RawMessage, error) {
	raw, err := c.api.CallBase(ctx, baseOr(shop.APIBase, jstDefaultBase), endpoint, body, credFromShop(shop))
	if err != nil {
		return nil, err
	}

	var env jstEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &client.MalformedResponseError{
			Platform: model.PlatformJST,
			Endpoint: endpoint,
			Snippet:  client.Snippet(raw),
		}
	}
	if env.Code != 0 {
		return nil, envelopeError(model.PlatformJST, endpoint, env.Code, env.Msg)
	}
	return env.Data, nil
}

// ==================== 订单同步 ====================

// SyncOrders 按修改时间窗口增量同步订单
func (c *JST) SyncOrders(ctx context.Context, shop *model.Shop) (*SyncResult, error) {
	start := time.Now()
	key := syncx.JobKey{Platform: model.PlatformJST, Resource: model.ResourceOrder, ShopID: shop.ID}
	pageSize := pageSizeOr(shop, 50)
	runner := &syncx.Runner{Cursor: c.cursor, Delay: delayOf(shop)}

	stats, err := runner.Run(ctx, key, pageSize, func(ctx context.Context, page int, window *time.Time) (syncx.PageResult, error) {
		return c.syncOrderPage(ctx, shop, page, pageSize, window)
	})
	return newResult(model.PlatformJST, model.ResourceOrder, shop.ID, stats, start), err
}

func (c *JST) syncOrderPage(ctx context.Context, shop *model.Shop, page, pageSize int, window *time.Time) (syncx.PageResult, error) {
	begin := time.Now().Add(-jstDefaultLookback)
	if window != nil {
		begin = *window
	}

	listReq := map[string]interface{}{
		"page_index":     page,
		"page_size":      pageSize,
		"modified_begin": begin.Format(jstTimeLayout),
		"modified_end":   time.Now().Format(jstTimeLayout),
	}
	data, err := c.call(ctx, shop, "/open/orders/modified/query", listReq)
	if err != nil {
		return syncx.PageResult{}, err
	}

	var list struct {
		Datas []struct {
			OID json.Number `json:"o_id"`
		} `json:"datas"`
		HasNext bool `json:"has_next"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return syncx.PageResult{}, &client.MalformedResponseError{
			Platform: model.PlatformJST,
			Endpoint: "/open/orders/modified/query",
			Snippet:  client.Snippet(data),
		}
	}

	// 占位单号（o_id 为空或 0）只是不拉详情
	// Fetched 仍按平台返回数上报，否则满页被过滤后会误判成短页提前收尾
	ids := make([]string, 0, len(list.Datas))
	for _, d := range list.Datas {
		if d.OID.String() != "" && d.OID.String() != "0" {
			ids = append(ids, d.OID.String())
		}
	}
	if len(ids) == 0 {
		return syncx.PageResult{Fetched: len(list.Datas), IsLast: !list.HasNext}, nil
	}

	// 详情接口有单次单号上限，超限拆块串行拉取
	var payloads []map[string]interface{}
	for _, chunk := range syncx.Chunk(ids, jstDetailChunk) {
		detail, err := c.call(ctx, shop, "/open/orders/single/query", map[string]interface{}{"o_ids": chunk})
		if err != nil {
			return syncx.PageResult{}, err
		}
		var dd struct {
			Datas []map[string]interface{} `json:"datas"`
		}
		if err := json.Unmarshal(detail, &dd); err != nil {
			return syncx.PageResult{}, &client.MalformedResponseError{
				Platform: model.PlatformJST,
				Endpoint: "/open/orders/single/query",
				Snippet:  client.Snippet(detail),
			}
		}
		payloads = append(payloads, dd.Datas...)
	}

	created, updated, err := c.upsertOrders(ctx, shop, payloads)
	if err != nil {
		return syncx.PageResult{}, err
	}

	archivePage(ctx, c.archive, model.PlatformJST, model.ResourceOrder, shop.ID, page, data)
	return syncx.PageResult{Fetched: len(list.Datas), IsLast: !list.HasNext, Created: created, Updated: updated}, nil
}

// upsertOrders 订单头 + 明细在同一事务里落库
// 明细整批删除重建，父 ID 从 upsert 结果映射取，不假设自增连续
func (c *JST) upsertOrders(ctx context.Context, shop *model.Shop, payloads []map[string]interface{}) (int, int, error) {
	now := time.Now()
	target := repository.OrderTarget{Platform: model.PlatformJST, ShopID: shop.ID}

	orders := make([]model.Order, 0, len(payloads))
	itemsByKey := make(map[string][]model.OrderItem, len(payloads))

	for _, payload := range payloads {
		order := model.Order{
			Platform: model.PlatformJST,
			ShopID:   shop.ID,
			SyncedAt: &now,
		}
		jstOrderTable.Apply(payload, &order)
		if order.ExternalOrderID == "" {
			continue
		}
		order.Status = jstLocalStatus(order.ExternalStatus)
		if raw, err := json.Marshal(payload); err == nil {
			order.RawData = raw
		}
		orders = append(orders, order)

		rawItems, _ := payload["items"].([]interface{})
		items := make([]model.OrderItem, 0, len(rawItems))
		for _, ri := range rawItems {
			vendorItem, ok := ri.(map[string]interface{})
			if !ok {
				continue
			}
			var item model.OrderItem
			jstOrderItemTable.Apply(vendorItem, &item)
			items = append(items, item)
		}
		itemsByKey[order.NaturalKey()] = items
	}

	var created, updated int
	err := c.db.Transaction(func(tx *gorm.DB) error {
		res, err := syncx.UpsertBatchTx[model.Order](ctx, tx, target, orders)
		if err != nil {
			return err
		}
		created = res.Created
		updated = res.Updated

		var parentIDs []int64
		var children []model.OrderItem
		for key, items := range itemsByKey {
			parentID, ok := res.IDs[key]
			if !ok {
				continue
			}
			parentIDs = append(parentIDs, parentID)
			for _, item := range items {
				item.OrderID = parentID
				children = append(children, item)
			}
		}
		return syncx.ReplaceChildren[model.OrderItem](ctx, tx, repository.OrderItemChild{}, parentIDs, children)
	})
	return created, updated, err
}

// ==================== 库存同步 ====================

// SyncCatalog 聚水潭的主数据同步 = SKU 库存快照
func (c *JST) SyncCatalog(ctx context.Context, shop *model.Shop) ([]SyncResult, error) {
	start := time.Now()
	key := syncx.JobKey{Platform: model.PlatformJST, Resource: model.ResourceInventory, ShopID: shop.ID}
	pageSize := pageSizeOr(shop, 50)
	runner := &syncx.Runner{Cursor: c.cursor, Delay: delayOf(shop)}

	stats, err := runner.Run(ctx, key, pageSize, func(ctx context.Context, page int, window *time.Time) (syncx.PageResult, error) {
		return c.syncInventoryPage(ctx, shop, page, pageSize, window)
	})
	return []SyncResult{*newResult(model.PlatformJST, model.ResourceInventory, shop.ID, stats, start)}, err
}

func (c *JST) syncInventoryPage(ctx context.Context, shop *model.Shop, page, pageSize int, window *time.Time) (syncx.PageResult, error) {
	begin := time.Now().Add(-jstDefaultLookback)
	if window != nil {
		begin = *window
	}

	req := map[string]interface{}{
		"page_index":     page,
		"page_size":      pageSize,
		"modified_begin": begin.Format(jstTimeLayout),
		"modified_end":   time.Now().Format(jstTimeLayout),
	}
	data, err := c.call(ctx, shop, "/open/inventory/query", req)
	if err != nil {
		return syncx.PageResult{}, err
	}

	var list struct {
		Datas   []map[string]interface{} `json:"datas"`
		HasNext bool                     `json:"has_next"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return syncx.PageResult{}, &client.MalformedResponseError{
			Platform: model.PlatformJST,
			Endpoint: "/open/inventory/query",
			Snippet:  client.Snippet(data),
		}
	}

	recs := make([]model.InventoryItem, 0, len(list.Datas))
	for _, payload := range list.Datas {
		rec := model.InventoryItem{Platform: model.PlatformJST, ShopID: shop.ID}
		jstInventoryTable.Apply(payload, &rec)
		if rec.SKU == "" {
			continue
		}
		if raw, err := json.Marshal(payload); err == nil {
			rec.RawData = raw
		}
		recs = append(recs, rec)
	}

	target := repository.InventoryTarget{Platform: model.PlatformJST, ShopID: shop.ID}
	res, err := syncx.UpsertBatch[model.InventoryItem](ctx, c.db, target, recs)
	if err != nil {
		return syncx.PageResult{}, err
	}

	archivePage(ctx, c.archive, model.PlatformJST, model.ResourceInventory, shop.ID, page, data)
	return syncx.PageResult{
		Fetched: len(list.Datas),
		IsLast:  !list.HasNext,
		Created: res.Created,
		Updated: res.Updated,
	}, nil
}

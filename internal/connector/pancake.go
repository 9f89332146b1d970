package connector

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"omnisync_v1_202608/internal/client"
	"omnisync_v1_202608/internal/mapper"
	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/internal/syncx"
	"omnisync_v1_202608/pkg/net"

	"gorm.io/gorm"
)

// ==================== Pancake 连接器 ====================

const pancakeDefaultBase = "https://pos.pages.fm/api/v1"

// Pancake POS：api_key 认证的 GET 接口，page_number/total_pages 翻页
// 订单明细内嵌在列表响应里，无需二次详情调用
type Pancake struct {
	db      *gorm.DB
	api     *client.Client
	cursor  *syncx.CursorStore
	archive PageArchiver
}

// NewPancake 创建 Pancake 连接器
func NewPancake(db *gorm.DB, sender net.Dispatcher, cursor *syncx.CursorStore, archive PageArchiver) *Pancake {
	return &Pancake{
		db:      db,
		api:     client.New(model.PlatformPancake, pancakeDefaultBase, client.PancakeSigner{}, sender),
		cursor:  cursor,
		archive: archive,
	}
}

// Platform 平台标识
func (c *Pancake) Platform() string { return model.PlatformPancake }

// ==================== 字段映射表 ====================

var pancakeOrderTable = mapper.Table{
	Entity: "pancake_order",
	Rules: []mapper.FieldRule{
		{VendorKey: "id", LocalField: "ExternalOrderID", Coerce: mapper.BigID},
		{VendorKey: "bill_full_name", LocalField: "BuyerName", Coerce: mapper.Text},
		{VendorKey: "bill_phone_number", LocalField: "BuyerPhone", Coerce: mapper.Text},
		{VendorKey: "status_name", LocalField: "ExternalStatus", Coerce: mapper.Text},
		// 越南盾无辅币，平台金额已是最小单位
		{VendorKey: "total_price", LocalField: "TotalAmount", Coerce: mapper.WholeAmount},
		{VendorKey: "shipping_fee", LocalField: "ShippingAmount", Coerce: mapper.WholeAmount},
		{VendorKey: "total_discount", LocalField: "DiscountAmount", Coerce: mapper.WholeAmount},
		{VendorKey: "tags", LocalField: "Labels", Coerce: mapper.StringSlice},
		{VendorKey: "inserted_at", LocalField: "OrderedAt", Coerce: mapper.ISOLocal},
		{VendorKey: "updated_at", LocalField: "ModifiedAt", Coerce: mapper.ISOLocal},
	},
}

var pancakeItemTable = mapper.Table{
	Entity: "pancake_order_item",
	Rules: []mapper.FieldRule{
		{VendorKey: "id", LocalField: "ExternalItemID", Coerce: mapper.BigID},
		{VendorKey: "quantity", LocalField: "Quantity", Coerce: mapper.Int},
	},
}

// variation_info 是 item 下的嵌套对象，单独一张表
var pancakeVariationTable = mapper.Table{
	Entity: "pancake_variation",
	Rules: []mapper.FieldRule{
		{VendorKey: "display_id", LocalField: "SKU", Coerce: mapper.Text},
		{VendorKey: "name", LocalField: "Title", Coerce: mapper.Text},
		{VendorKey: "retail_price", LocalField: "PriceAmount", Coerce: mapper.WholeAmount},
	},
}

// pancakeLocalStatus 平台状态归一到本地状态
func pancakeLocalStatus(external string) string {
	switch external {
	case "new", "waiting", "ordered":
		return model.OrderStatusPending
	case "shipped", "delivering":
		return model.OrderStatusShipped
	case "received", "done":
		return model.OrderStatusDelivered
	case "canceled", "returned":
		return model.OrderStatusCanceled
	default:
		return model.OrderStatusProcessing
	}
}

// ==================== 订单同步 ====================

// SyncOrders 按页同步订单，以 total_pages 判定末页
func (c *Pancake) SyncOrders(ctx context.Context, shop *model.Shop) (*SyncResult, error) {
	start := time.Now()
	key := syncx.JobKey{Platform: model.PlatformPancake, Resource: model.ResourceOrder, ShopID: shop.ID}
	pageSize := pageSizeOr(shop, 30)
	runner := &syncx.Runner{Cursor: c.cursor, Delay: delayOf(shop)}

	stats, err := runner.Run(ctx, key, pageSize, func(ctx context.Context, page int, window *time.Time) (syncx.PageResult, error) {
		return c.syncOrderPage(ctx, shop, page, pageSize, window)
	})
	return newResult(model.PlatformPancake, model.ResourceOrder, shop.ID, stats, start), err
}

func (c *Pancake) syncOrderPage(ctx context.Context, shop *model.Shop, page, pageSize int, window *time.Time) (syncx.PageResult, error) {
	endpoint := "/shops/" + shop.PlatformShopID + "/orders"

	params := url.Values{}
	params.Set("page_number", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	if window != nil {
		params.Set("updated_at_after", window.UTC().Format(time.RFC3339))
	}

	raw, err := c.api.GetBase(ctx, baseOr(shop.APIBase, pancakeDefaultBase), endpoint, params, credFromShop(shop))
	if err != nil {
		return syncx.PageResult{}, err
	}

	var env struct {
		Success    bool                     `json:"success"`
		Message    string                   `json:"message"`
		Data       []map[string]interface{} `json:"data"`
		TotalPages int                      `json:"total_pages"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return syncx.PageResult{}, &client.MalformedResponseError{
			Platform: model.PlatformPancake,
			Endpoint: endpoint,
			Snippet:  client.Snippet(raw),
		}
	}
	if !env.Success {
		return syncx.PageResult{}, envelopeError(model.PlatformPancake, endpoint, "success=false", env.Message)
	}

	created, updated, err := c.upsertOrders(ctx, shop, env.Data)
	if err != nil {
		return syncx.PageResult{}, err
	}

	archivePage(ctx, c.archive, model.PlatformPancake, model.ResourceOrder, shop.ID, page, raw)
	return syncx.PageResult{
		Fetched: len(env.Data),
		IsLast:  page >= env.TotalPages,
		Created: created,
		Updated: updated,
	}, nil
}

func (c *Pancake) upsertOrders(ctx context.Context, shop *model.Shop, payloads []map[string]interface{}) (int, int, error) {
	now := time.Now()
	target := repository.OrderTarget{Platform: model.PlatformPancake, ShopID: shop.ID}

	orders := make([]model.Order, 0, len(payloads))
	itemsByKey := make(map[string][]model.OrderItem, len(payloads))

	for _, payload := range payloads {
		order := model.Order{
			Platform: model.PlatformPancake,
			ShopID:   shop.ID,
			Currency: "VND",
			SyncedAt: &now,
		}
		pancakeOrderTable.Apply(payload, &order)
		if order.ExternalOrderID == "" {
			continue
		}
		order.Status = pancakeLocalStatus(order.ExternalStatus)
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
			item := model.OrderItem{Currency: "VND"}
			pancakeItemTable.Apply(vendorItem, &item)
			if vi, ok := vendorItem["variation_info"].(map[string]interface{}); ok {
				pancakeVariationTable.Apply(vi, &item)
			}
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

package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ==================== 订单状态常量 ====================

// OrderStatus 本地订单状态
const (
	OrderStatusPending    = "pending"    // 待处理
	OrderStatusProcessing = "processing" // 处理中
	OrderStatusShipped    = "shipped"    // 已发货
	OrderStatusDelivered  = "delivered"  // 已签收
	OrderStatusCanceled   = "canceled"   // 已取消
)

// ==================== Order 订单主表 ====================

// Order 外部订单
// 自然键 = (platform, shop_id, external_order_id)，同一店铺范围内唯一
type Order struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform string `gorm:"size:20;not null;uniqueIndex:uk_shop_order" json:"platform"`
	ShopID   int64  `gorm:"not null;uniqueIndex:uk_shop_order" json:"shop_id"`

	// 平台订单号统一转字符串存储，聚水潭/TikTok 的数字单号可能超出前端安全精度
	ExternalOrderID string `gorm:"size:64;not null;uniqueIndex:uk_shop_order" json:"external_order_id"`

	// 买家信息
	BuyerName  string `gorm:"size:255" json:"buyer_name"`
	BuyerPhone string `gorm:"size:64" json:"buyer_phone"`

	// 状态
	Status         string `gorm:"size:32;index;default:pending" json:"status"`
	ExternalStatus string `gorm:"size:64" json:"external_status"`

	// 金额，统一最小货币单位存整数
	TotalAmount    int64  `json:"total_amount"`
	ShippingAmount int64  `json:"shipping_amount"`
	DiscountAmount int64  `json:"discount_amount"`
	Currency       string `gorm:"size:8" json:"currency"`

	// 仓库/物流
	WarehouseCode  string `gorm:"size:64" json:"warehouse_code"`
	TrackingNumber string `gorm:"size:128" json:"tracking_number"`

	// 标签（聚水潭多标签、Pancake tags）
	Labels pq.StringArray `gorm:"type:text" json:"labels"`

	// 原始报文，排查字段映射问题用
	RawData datatypes.JSON `json:"-"`

	// 平台侧时间
	OrderedAt  *time.Time `json:"ordered_at"`
	PaidAt     *time.Time `json:"paid_at"`
	ModifiedAt *time.Time `gorm:"index;comment:平台侧最后修改时间，增量窗口依据" json:"modified_at"`

	// 本地
	SyncedAt  *time.Time `json:"synced_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// NaturalKey 返回店铺范围内的自然键
func (o Order) NaturalKey() string {
	return o.ExternalOrderID
}

// ==================== OrderItem 订单明细 ====================

// OrderItem 订单行，生命周期完全跟随父订单
// 重新同步父订单时整批删除重建，不做逐行 diff
type OrderItem struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64 `gorm:"index;not null" json:"order_id"`

	ExternalItemID string `gorm:"size:64" json:"external_item_id"`
	SKU            string `gorm:"size:128" json:"sku"`
	Title          string `gorm:"size:512" json:"title"`
	Quantity       int    `json:"quantity"`
	PriceAmount    int64  `json:"price_amount"`
	Currency       string `gorm:"size:8" json:"currency"`
	WarehouseCode  string `gorm:"size:64" json:"warehouse_code"`
}

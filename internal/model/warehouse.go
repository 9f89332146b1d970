package model

import (
	"gorm.io/datatypes"
)

// ==================== Warehouse 仓库 ====================

// Warehouse 平台仓库（TikTok/Lazada/聚水潭分仓）
type Warehouse struct {
	BaseModel

	Platform   string `gorm:"size:20;not null;uniqueIndex:uk_shop_wh" json:"platform"`
	ShopID     int64  `gorm:"not null;uniqueIndex:uk_shop_wh" json:"shop_id"`
	ExternalID string `gorm:"size:64;not null;uniqueIndex:uk_shop_wh" json:"external_id"`

	Name      string `gorm:"size:255" json:"name"`
	Type      string `gorm:"size:32;comment:sales/return 等平台侧仓库类型" json:"type"`
	City      string `gorm:"size:128" json:"city"`
	IsDefault bool   `gorm:"default:false" json:"is_default"`

	RawData datatypes.JSON `json:"-"`
}

// NaturalKey 店铺范围内的自然键
func (w Warehouse) NaturalKey() string {
	return w.ExternalID
}

// ==================== InventoryItem 库存快照 ====================

// InventoryItem SKU 级库存行（聚水潭库存查询）
type InventoryItem struct {
	BaseModel

	Platform string `gorm:"size:20;not null;uniqueIndex:uk_shop_sku" json:"platform"`
	ShopID   int64  `gorm:"not null;uniqueIndex:uk_shop_sku" json:"shop_id"`
	SKU      string `gorm:"size:128;not null;uniqueIndex:uk_shop_sku" json:"sku"`

	Name          string `gorm:"size:512" json:"name"`
	WarehouseCode string `gorm:"size:64" json:"warehouse_code"`
	Quantity      int    `json:"quantity"`   // 主仓实际库存
	Sellable      int    `json:"sellable"`   // 可销售数
	Purchasing    int    `json:"purchasing"` // 采购在途

	RawData datatypes.JSON `json:"-"`
}

// NaturalKey 店铺范围内的自然键
func (i InventoryItem) NaturalKey() string {
	return i.SKU
}

package model

import (
	"gorm.io/datatypes"
)

// ==================== Product 平台商品 ====================

// Product 平台侧商品（TikTok Shop 商品列表）
type Product struct {
	BaseModel

	Platform   string `gorm:"size:20;not null;uniqueIndex:uk_shop_product" json:"platform"`
	ShopID     int64  `gorm:"not null;uniqueIndex:uk_shop_product" json:"shop_id"`
	ExternalID string `gorm:"size:64;not null;uniqueIndex:uk_shop_product" json:"external_id"`

	Title          string `gorm:"size:512" json:"title"`
	ExternalStatus string `gorm:"size:32" json:"external_status"`
	SKUCount       int    `json:"sku_count"`
	// 最低报价，最小货币单位
	MinPriceAmount int64  `json:"min_price_amount"`
	Currency       string `gorm:"size:8" json:"currency"`

	RawData datatypes.JSON `json:"-"`
}

// NaturalKey 店铺范围内的自然键
func (p Product) NaturalKey() string {
	return p.ExternalID
}

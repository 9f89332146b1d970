package model

// ==================== Category 平台类目 ====================

// Category 平台类目树节点（Lazada）
// 类目是平台级数据，但仍挂在拉取它的店铺下，保持自然键 scope 一致
type Category struct {
	BaseModel

	Platform   string `gorm:"size:20;not null;uniqueIndex:uk_shop_cat" json:"platform"`
	ShopID     int64  `gorm:"not null;uniqueIndex:uk_shop_cat" json:"shop_id"`
	ExternalID string `gorm:"size:64;not null;uniqueIndex:uk_shop_cat" json:"external_id"`

	ParentExternalID string `gorm:"size:64;index" json:"parent_external_id"`
	Name             string `gorm:"size:255" json:"name"`
	IsLeaf           bool   `gorm:"default:false" json:"is_leaf"`
}

// NaturalKey 店铺范围内的自然键
func (c Category) NaturalKey() string {
	return c.ExternalID
}

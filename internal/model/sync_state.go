package model

import (
	"time"
)

// ==================== SyncState 同步游标 ====================

// Resource 同步资源类型
const (
	ResourceOrder     = "order"
	ResourceInventory = "inventory"
	ResourceWarehouse = "warehouse"
	ResourceCategory  = "category"
	ResourceProduct   = "product"
)

// SyncState 每个同步任务一行游标记录
// 任务 = (平台, 资源, 店铺) 三元组，替代散落的 K/V 配置项
// 游标只在整页落库成功后推进，崩溃后重跑当前页而不是跳页
type SyncState struct {
	BaseModel

	Platform string `gorm:"size:20;not null;uniqueIndex:uk_sync_job" json:"platform"`
	Resource string `gorm:"size:32;not null;uniqueIndex:uk_sync_job" json:"resource"`
	ShopID   int64  `gorm:"not null;uniqueIndex:uk_sync_job" json:"shop_id"`

	// 翻页游标，从 1 开始；整轮跑完重置回 1
	PageCursor int `gorm:"default:1" json:"page_cursor"`

	// 增量窗口起点（按修改时间拉取的资源使用）
	WindowStart *time.Time `json:"window_start"`

	LastRunAt *time.Time `json:"last_run_at"`
	LastError string     `gorm:"type:text" json:"last_error"`
}

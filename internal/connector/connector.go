package connector

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"omnisync_v1_202608/internal/client"
	"omnisync_v1_202608/internal/mapper"
	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/syncx"
)

// ==================== 连接器公共定义 ====================

// SyncResult 一次同步运行的结果汇总
type SyncResult struct {
	Platform  string        `json:"platform"`
	Resource  string        `json:"resource"`
	ShopID    int64         `json:"shop_id"`
	Pages     int           `json:"pages"`
	Fetched   int           `json:"fetched"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Completed bool          `json:"completed"`
	Duration  time.Duration `json:"duration"`
}

// OrderSyncer 支持订单同步的平台
type OrderSyncer interface {
	Platform() string
	SyncOrders(ctx context.Context, shop *model.Shop) (*SyncResult, error)
}

// CatalogSyncer 支持主数据同步的平台（仓库/类目/商品/库存）
type CatalogSyncer interface {
	Platform() string
	SyncCatalog(ctx context.Context, shop *model.Shop) ([]SyncResult, error)
}

// PageArchiver 原始报文归档，排查字段映射问题的最后手段
// 允许为 nil，归档失败只记日志不影响同步
type PageArchiver interface {
	SavePage(ctx context.Context, platform, resource string, shopID int64, page int, payload []byte) error
}

// ==================== Registry 平台注册表 ====================

// Registry 按平台标识查找连接器
type Registry struct {
	orders   map[string]OrderSyncer
	catalogs map[string]CatalogSyncer
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		orders:   map[string]OrderSyncer{},
		catalogs: map[string]CatalogSyncer{},
	}
}

// RegisterOrders 注册订单同步能力
func (r *Registry) RegisterOrders(s OrderSyncer) {
	r.orders[s.Platform()] = s
}

// RegisterCatalog 注册主数据同步能力
func (r *Registry) RegisterCatalog(s CatalogSyncer) {
	r.catalogs[s.Platform()] = s
}

// Orders 取平台的订单同步器
func (r *Registry) Orders(platform string) (OrderSyncer, bool) {
	s, ok := r.orders[platform]
	return s, ok
}

// Catalog 取平台的主数据同步器
func (r *Registry) Catalog(platform string) (CatalogSyncer, bool) {
	s, ok := r.catalogs[platform]
	return s, ok
}

// ==================== 启动期映射校验 ====================

// ValidateMappings 启动时校验所有平台映射表的字段完整性
// 字段改名后忘改映射表属于配置错误，必须在启动时拦下而不是静默丢数据
func ValidateMappings() error {
	checks := []struct {
		table  mapper.Table
		target interface{}
	}{
		{jstOrderTable, &model.Order{}},
		{jstOrderItemTable, &model.OrderItem{}},
		{jstInventoryTable, &model.InventoryItem{}},
		{pancakeOrderTable, &model.Order{}},
		{pancakeItemTable, &model.OrderItem{}},
		{pancakeVariationTable, &model.OrderItem{}},
		{tiktokWarehouseTable, &model.Warehouse{}},
		{tiktokProductTable, &model.Product{}},
		{lazadaCategoryTable, &model.Category{}},
		{lazadaWarehouseTable, &model.Warehouse{}},
	}
	for _, c := range checks {
		if err := c.table.Validate(c.target); err != nil {
			return fmt.Errorf("映射表校验失败: %w", err)
		}
	}
	return nil
}

// ==================== 公共辅助 ====================

func credFromShop(shop *model.Shop) client.Credential {
	return client.Credential{
		AppKey:      shop.AppKey,
		AppSecret:   shop.AppSecret,
		AccessToken: shop.AccessToken,
		CompanyID:   shop.CompanyID,
		ShopID:      shop.PlatformShopID,
	}
}

func baseOr(override, def string) string {
	if override != "" {
		return override
	}
	return def
}

func pageSizeOr(shop *model.Shop, def int) int {
	if shop.PageSize > 0 {
		return shop.PageSize
	}
	return def
}

func delayOf(shop *model.Shop) time.Duration {
	if shop.SyncDelay <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(shop.SyncDelay) * time.Millisecond
}

func newResult(platform, resource string, shopID int64, stats *syncx.RunStats, start time.Time) *SyncResult {
	res := &SyncResult{
		Platform: platform,
		Resource: resource,
		ShopID:   shopID,
		Duration: time.Since(start),
	}
	if stats != nil {
		res.Pages = stats.Pages
		res.Fetched = stats.Fetched
		res.Created = stats.Created
		res.Updated = stats.Updated
		res.Completed = stats.Completed
	}
	return res
}

// archivePage 尽力而为的报文归档
func archivePage(ctx context.Context, a PageArchiver, platform, resource string, shopID int64, page int, payload []byte) {
	if a == nil || len(payload) == 0 {
		return
	}
	if err := a.SavePage(ctx, platform, resource, shopID, page, payload); err != nil {
		log.Printf("[Archive] %s/%s shop=%d page=%d 归档失败: %v", platform, resource, shopID, page, err)
	}
}

// envelopeError 业务包络报错转统一错误类型
func envelopeError(platform, endpoint string, code interface{}, msg string) error {
	var codeStr string
	switch c := code.(type) {
	case string:
		codeStr = c
	case int:
		codeStr = strconv.Itoa(c)
	default:
		codeStr = fmt.Sprint(c)
	}
	return &client.RemoteAPIError{
		Platform:   platform,
		Endpoint:   endpoint,
		StatusCode: 200,
		Code:       codeStr,
		Message:    msg,
	}
}

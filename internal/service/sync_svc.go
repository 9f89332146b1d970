package service

import (
	"context"
	"fmt"
	"log"

	"omnisync_v1_202608/internal/connector"
	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
)

// ==================== 同步门面 ====================

// SyncService 手动触发与定时任务共用的同步入口
// 平台差异收在 connector.Registry 后面，这里只管店铺状态和调度语义
type SyncService struct {
	shopRepo  repository.ShopRepository
	stateRepo repository.SyncStateRepository
	registry  *connector.Registry
}

// NewSyncService 创建同步服务
func NewSyncService(shopRepo repository.ShopRepository, stateRepo repository.SyncStateRepository, registry *connector.Registry) *SyncService {
	return &SyncService{
		shopRepo:  shopRepo,
		stateRepo: stateRepo,
		registry:  registry,
	}
}

// SyncShopOrders 同步单店订单
func (s *SyncService) SyncShopOrders(ctx context.Context, shopID int64) (*connector.SyncResult, error) {
	shop, err := s.loadActiveShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	conn, ok := s.registry.Orders(shop.Platform)
	if !ok {
		return nil, fmt.Errorf("平台 %s 不支持订单同步", shop.Platform)
	}

	res, err := conn.SyncOrders(ctx, shop)
	if err != nil {
		log.Printf("[Sync] 店铺 %d (%s) 订单同步失败: %v", shop.ID, shop.Platform, err)
		return res, err
	}

	if err := s.shopRepo.TouchSynced(ctx, shop.ID); err != nil {
		log.Printf("[Sync] 更新店铺 %d 同步时间失败: %v", shop.ID, err)
	}
	log.Printf("[Sync] 店铺 %d (%s) 订单同步完成: %d 页 新建 %d 更新 %d 耗时 %v",
		shop.ID, shop.Platform, res.Pages, res.Created, res.Updated, res.Duration)
	return res, nil
}

// SyncShopCatalog 同步单店主数据（仓库/类目/商品/库存）
func (s *SyncService) SyncShopCatalog(ctx context.Context, shopID int64) ([]connector.SyncResult, error) {
	shop, err := s.loadActiveShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	conn, ok := s.registry.Catalog(shop.Platform)
	if !ok {
		return nil, fmt.Errorf("平台 %s 不支持主数据同步", shop.Platform)
	}

	results, err := conn.SyncCatalog(ctx, shop)
	if err != nil {
		log.Printf("[Sync] 店铺 %d (%s) 主数据同步失败: %v", shop.ID, shop.Platform, err)
		return results, err
	}

	if err := s.shopRepo.TouchSynced(ctx, shop.ID); err != nil {
		log.Printf("[Sync] 更新店铺 %d 同步时间失败: %v", shop.ID, err)
	}
	return results, nil
}

// ListStates 查店铺各资源的游标状态
func (s *SyncService) ListStates(ctx context.Context, shopID int64) ([]model.SyncState, error) {
	if shopID > 0 {
		return s.stateRepo.ListByShop(ctx, shopID)
	}
	return s.stateRepo.List(ctx)
}

func (s *SyncService) loadActiveShop(ctx context.Context, shopID int64) (*model.Shop, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("店铺不存在: %w", err)
	}
	if shop.Status != model.ShopStatusActive {
		return nil, fmt.Errorf("店铺 %d 未激活，先完成授权", shopID)
	}
	return shop, nil
}

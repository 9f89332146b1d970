package service

import (
	"context"
	"fmt"

	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
)

// ==================== 店铺管理 ====================

var validPlatforms = map[string]bool{
	model.PlatformJST:     true,
	model.PlatformPancake: true,
	model.PlatformTikTok:  true,
	model.PlatformLazada:  true,
}

// ShopService 店铺档案管理
type ShopService struct {
	shopRepo repository.ShopRepository
}

// NewShopService 创建店铺服务
func NewShopService(shopRepo repository.ShopRepository) *ShopService {
	return &ShopService{shopRepo: shopRepo}
}

// Create 新建店铺接入
// 固定凭证平台（聚水潭/Pancake）带 key 即视为可用，OAuth 平台等回调激活
func (s *ShopService) Create(ctx context.Context, shop *model.Shop) error {
	if !validPlatforms[shop.Platform] {
		return fmt.Errorf("不支持的平台: %s", shop.Platform)
	}
	if shop.PlatformShopID == "" {
		return fmt.Errorf("缺少平台店铺 ID")
	}
	if existing, err := s.shopRepo.GetByPlatformShopID(ctx, shop.Platform, shop.PlatformShopID); err == nil && existing != nil {
		return fmt.Errorf("店铺已存在: %s/%s", shop.Platform, shop.PlatformShopID)
	}

	if !shop.UsesOAuth() && shop.AppKey != "" {
		shop.Status = model.ShopStatusActive
		shop.TokenStatus = model.TokenStatusValid
	}
	return s.shopRepo.Create(ctx, shop)
}

// Get 按 ID 查店铺
func (s *ShopService) Get(ctx context.Context, id int64) (*model.Shop, error) {
	return s.shopRepo.GetByID(ctx, id)
}

// List 带过滤的分页列表
func (s *ShopService) List(ctx context.Context, filter repository.ShopFilter) ([]model.Shop, int64, error) {
	return s.shopRepo.List(ctx, filter)
}

// UpdateConfig 更新同步配置项
func (s *ShopService) UpdateConfig(ctx context.Context, id int64, fields map[string]interface{}) error {
	allowed := map[string]bool{
		"shop_name": true, "page_size": true, "api_base": true,
		"sync_delay": true, "status": true, "app_key": true,
		"app_secret": true, "company_id": true, "access_token": true,
	}
	for k := range fields {
		if !allowed[k] {
			return fmt.Errorf("字段 %s 不允许修改", k)
		}
	}
	return s.shopRepo.UpdateFields(ctx, id, fields)
}

// Delete 删除店铺（软删除）
func (s *ShopService) Delete(ctx context.Context, id int64) error {
	return s.shopRepo.Delete(ctx, id)
}

package repository

import (
	"context"
	"time"

	"omnisync_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// ShopFilter 店铺过滤条件
type ShopFilter struct {
	Platform string
	Status   *int
	Keyword  string
	Page     int
	PageSize int
}

// ==================== ShopRepository 店铺仓库 ====================

// ShopRepository 店铺仓库接口
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByPlatformShopID(ctx context.Context, platform, platformShopID string) (*model.Shop, error)
	List(ctx context.Context, filter ShopFilter) ([]model.Shop, int64, error)
	ListActive(ctx context.Context, platform string) ([]model.Shop, error)
	Update(ctx context.Context, shop *model.Shop) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// Token 相关
	UpdateToken(ctx context.Context, id int64, access, refresh string, expiresAt time.Time) error
	UpdateTokenStatus(ctx context.Context, id int64, status string) error
	FindExpiringShops(ctx context.Context, threshold time.Duration) ([]model.Shop, error)

	// 同步相关
	TouchSynced(ctx context.Context, id int64) error
}

// ==================== 实现 ====================

type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓库
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepository) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).First(&shop, id).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) GetByPlatformShopID(ctx context.Context, platform, platformShopID string) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).
		Where("platform = ? AND platform_shop_id = ?", platform, platformShopID).
		First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) List(ctx context.Context, filter ShopFilter) ([]model.Shop, int64, error) {
	var shops []model.Shop
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Shop{})

	if filter.Platform != "" {
		db = db.Where("platform = ?", filter.Platform)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		db = db.Where("shop_name LIKE ? OR platform_shop_id LIKE ?", keyword, keyword)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.Order("id ASC").Limit(filter.PageSize).Offset(offset).Find(&shops).Error
	return shops, total, err
}

func (r *shopRepository) ListActive(ctx context.Context, platform string) ([]model.Shop, error) {
	var shops []model.Shop
	db := r.db.WithContext(ctx).Where("status = ?", model.ShopStatusActive)
	if platform != "" {
		db = db.Where("platform = ?", platform)
	}
	err := db.Find(&shops).Error
	return shops, err
}

func (r *shopRepository) Update(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Save(shop).Error
}

func (r *shopRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Updates(fields).Error
}

func (r *shopRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Shop{}, id).Error
}

func (r *shopRepository) UpdateToken(ctx context.Context, id int64, access, refresh string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Updates(map[string]interface{}{
		"access_token":     access,
		"refresh_token":    refresh,
		"token_expires_at": expiresAt,
		"token_status":     model.TokenStatusValid,
	}).Error
}

func (r *shopRepository) UpdateTokenStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Update("token_status", status).Error
}

// FindExpiringShops 查出 token 即将到期、需要刷新的店铺
// threshold: 到期前多久算“即将到期”
func (r *shopRepository) FindExpiringShops(ctx context.Context, threshold time.Duration) ([]model.Shop, error) {
	var shops []model.Shop
	deadline := time.Now().Add(threshold)
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ShopStatusActive).
		Where("refresh_token <> ''").
		Where("token_expires_at < ?", deadline).
		Find(&shops).Error
	return shops, err
}

func (r *shopRepository) TouchSynced(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Update("synced_at", &now).Error
}

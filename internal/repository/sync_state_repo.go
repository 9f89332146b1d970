package repository

import (
	"context"
	"errors"

	"omnisync_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== SyncStateRepository 同步游标仓库 ====================

// SyncStateRepository 每个 (平台, 资源, 店铺) 任务一行游标
type SyncStateRepository interface {
	GetOrCreate(ctx context.Context, platform, resource string, shopID int64) (*model.SyncState, error)
	Save(ctx context.Context, st *model.SyncState) error
	ListByShop(ctx context.Context, shopID int64) ([]model.SyncState, error)
	List(ctx context.Context) ([]model.SyncState, error)
}

type syncStateRepository struct {
	db *gorm.DB
}

// NewSyncStateRepository 创建游标仓库
func NewSyncStateRepository(db *gorm.DB) SyncStateRepository {
	return &syncStateRepository{db: db}
}

func (r *syncStateRepository) GetOrCreate(ctx context.Context, platform, resource string, shopID int64) (*model.SyncState, error) {
	var st model.SyncState
	err := r.db.WithContext(ctx).
		Where("platform = ? AND resource = ? AND shop_id = ?", platform, resource, shopID).
		First(&st).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		st = model.SyncState{
			Platform:   platform,
			Resource:   resource,
			ShopID:     shopID,
			PageCursor: 1,
		}
		if err := r.db.WithContext(ctx).Create(&st).Error; err != nil {
			return nil, err
		}
		return &st, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *syncStateRepository) Save(ctx context.Context, st *model.SyncState) error {
	return r.db.WithContext(ctx).Save(st).Error
}

func (r *syncStateRepository) ListByShop(ctx context.Context, shopID int64) ([]model.SyncState, error) {
	var states []model.SyncState
	err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).Find(&states).Error
	return states, err
}

func (r *syncStateRepository) List(ctx context.Context) ([]model.SyncState, error) {
	var states []model.SyncState
	err := r.db.WithContext(ctx).Order("platform, resource, shop_id").Find(&states).Error
	return states, err
}

package repository

import (
	"context"

	"omnisync_v1_202608/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 同步写入目标，供 syncx 批量 upsert 引擎使用
// 每个目标绑定 (平台, 店铺) 作用域，自然键查找都限定在该范围内

const insertBatchSize = 100

// ==================== OrderTarget ====================

// OrderTarget 订单批量写入目标
type OrderTarget struct {
	Platform string
	ShopID   int64
}

// LookupIDs 一次 IN 查询把已有记录的 自然键 -> 内部 ID 拿全
// 避免逐条 First 的 N 次往返
func (t OrderTarget) LookupIDs(ctx context.Context, tx *gorm.DB, keys []string) (map[string]int64, error) {
	var rows []struct {
		ID              int64
		ExternalOrderID string
	}
	err := tx.WithContext(ctx).Model(&model.Order{}).
		Where("platform = ? AND shop_id = ?", t.Platform, t.ShopID).
		Where("external_order_id IN ?", keys).
		Select("id", "external_order_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(rows))
	for _, row := range rows {
		m[row.ExternalOrderID] = row.ID
	}
	return m, nil
}

// InsertBatch 新记录一次性批量入库，返回 自然键 -> 新 ID
// 明细由子表目标整批重建，这里跳过关联写入
func (t OrderTarget) InsertBatch(ctx context.Context, tx *gorm.DB, recs []model.Order) (map[string]int64, error) {
	if len(recs) == 0 {
		return map[string]int64{}, nil
	}
	if err := tx.WithContext(ctx).Omit(clause.Associations).CreateInBatches(&recs, insertBatchSize).Error; err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(recs))
	for i := range recs {
		m[recs[i].NaturalKey()] = recs[i].ID
	}
	return m, nil
}

// UpdateOne 已存在记录按内部 ID 整行覆盖，保留建档时间
func (t OrderTarget) UpdateOne(ctx context.Context, tx *gorm.DB, id int64, rec model.Order) error {
	rec.ID = id
	return tx.WithContext(ctx).Omit("created_at", clause.Associations).Save(&rec).Error
}

// ==================== OrderItemChild 订单明细 ====================

// OrderItemChild 订单明细的整批重建目标
type OrderItemChild struct{}

// DeleteByParents 所有被触达父单的旧明细用一条 IN 删除清掉
// 逐父删除在 200 单一批时会把全量重同步从秒级拖到分钟级
func (OrderItemChild) DeleteByParents(ctx context.Context, tx *gorm.DB, parentIDs []int64) error {
	if len(parentIDs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Where("order_id IN ?", parentIDs).Delete(&model.OrderItem{}).Error
}

// InsertChildren 新明细批量入库
func (OrderItemChild) InsertChildren(ctx context.Context, tx *gorm.DB, children []model.OrderItem) error {
	if len(children) == 0 {
		return nil
	}
	return tx.WithContext(ctx).CreateInBatches(&children, insertBatchSize).Error
}

// ==================== WarehouseTarget ====================

// WarehouseTarget 仓库批量写入目标
type WarehouseTarget struct {
	Platform string
	ShopID   int64
}

func (t WarehouseTarget) LookupIDs(ctx context.Context, tx *gorm.DB, keys []string) (map[string]int64, error) {
	var rows []struct {
		ID         int64
		ExternalID string
	}
	err := tx.WithContext(ctx).Model(&model.Warehouse{}).
		Where("platform = ? AND shop_id = ?", t.Platform, t.ShopID).
		Where("external_id IN ?", keys).
		Select("id", "external_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(rows))
	for _, row := range rows {
		m[row.ExternalID] = row.ID
	}
	return m, nil
}

func (t WarehouseTarget) InsertBatch(ctx context.Context, tx *gorm.DB, recs []model.Warehouse) (map[string]int64, error) {
	if len(recs) == 0 {
		return map[string]int64{}, nil
	}
	if err := tx.WithContext(ctx).CreateInBatches(&recs, insertBatchSize).Error; err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(recs))
	for i := range recs {
		m[recs[i].NaturalKey()] = recs[i].ID
	}
	return m, nil
}

func (t WarehouseTarget) UpdateOne(ctx context.Context, tx *gorm.DB, id int64, rec model.Warehouse) error {
	rec.ID = id
	return tx.WithContext(ctx).Omit("created_at").Save(&rec).Error
}

// ==================== CategoryTarget ====================

// CategoryTarget 类目批量写入目标
type CategoryTarget struct {
	Platform string
	ShopID   int64
}

func (t CategoryTarget) LookupIDs(ctx context.Context, tx *gorm.DB, keys []string) (map[string]int64, error) {
	var rows []struct {
		ID         int64
		ExternalID string
	}
	err := tx.WithContext(ctx).Model(&model.Category{}).
		Where("platform = ? AND shop_id = ?", t.Platform, t.ShopID).
		Where("external_id IN ?", keys).
		Select("id", "external_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(rows))
	for _, row := range rows {
		m[row.ExternalID] = row.ID
	}
	return m, nil
}

func (t CategoryTarget) InsertBatch(ctx context.Context, tx *gorm.DB, recs []model.Category) (map[string]int64, error) {
	if len(recs) == 0 {
		return map[string]int64{}, nil
	}
	if err := tx.WithContext(ctx).CreateInBatches(&recs, insertBatchSize).Error; err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(recs))
	for i := range recs {
		m[recs[i].NaturalKey()] = recs[i].ID
	}
	return m, nil
}

func (t CategoryTarget) UpdateOne(ctx context.Context, tx *gorm.DB, id int64, rec model.Category) error {
	rec.ID = id
	return tx.WithContext(ctx).Omit("created_at").Save(&rec).Error
}

// ==================== ProductTarget ====================

// ProductTarget 商品批量写入目标
type ProductTarget struct {
	Platform string
	ShopID   int64
}

func (t ProductTarget) LookupIDs(ctx context.Context, tx *gorm.DB, keys []string) (map[string]int64, error) {
	var rows []struct {
		ID         int64
		ExternalID string
	}
	err := tx.WithContext(ctx).Model(&model.Product{}).
		Where("platform = ? AND shop_id = ?", t.Platform, t.ShopID).
		Where("external_id IN ?", keys).
		Select("id", "external_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(rows))
	for _, row := range rows {
		m[row.ExternalID] = row.ID
	}
	return m, nil
}

func (t ProductTarget) InsertBatch(ctx context.Context, tx *gorm.DB, recs []model.Product) (map[string]int64, error) {
	if len(recs) == 0 {
		return map[string]int64{}, nil
	}
	if err := tx.WithContext(ctx).CreateInBatches(&recs, insertBatchSize).Error; err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(recs))
	for i := range recs {
		m[recs[i].NaturalKey()] = recs[i].ID
	}
	return m, nil
}

func (t ProductTarget) UpdateOne(ctx context.Context, tx *gorm.DB, id int64, rec model.Product) error {
	rec.ID = id
	return tx.WithContext(ctx).Omit("created_at").Save(&rec).Error
}

// ==================== InventoryTarget ====================

// InventoryTarget 库存快照批量写入目标
type InventoryTarget struct {
	Platform string
	ShopID   int64
}

func (t InventoryTarget) LookupIDs(ctx context.Context, tx *gorm.DB, keys []string) (map[string]int64, error) {
	var rows []struct {
		ID  int64
		SKU string
	}
	err := tx.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("platform = ? AND shop_id = ?", t.Platform, t.ShopID).
		Where("sku IN ?", keys).
		Select("id", "sku").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(rows))
	for _, row := range rows {
		m[row.SKU] = row.ID
	}
	return m, nil
}

func (t InventoryTarget) InsertBatch(ctx context.Context, tx *gorm.DB, recs []model.InventoryItem) (map[string]int64, error) {
	if len(recs) == 0 {
		return map[string]int64{}, nil
	}
	if err := tx.WithContext(ctx).CreateInBatches(&recs, insertBatchSize).Error; err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(recs))
	for i := range recs {
		m[recs[i].NaturalKey()] = recs[i].ID
	}
	return m, nil
}

func (t InventoryTarget) UpdateOne(ctx context.Context, tx *gorm.DB, id int64, rec model.InventoryItem) error {
	rec.ID = id
	return tx.WithContext(ctx).Omit("created_at").Save(&rec).Error
}

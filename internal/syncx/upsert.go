package syncx

import (
	"context"

	"gorm.io/gorm"
)

// ==================== 批量 Upsert 引擎 ====================

// Keyed 可按自然键去重的记录
type Keyed interface {
	NaturalKey() string
}

// Target 实体的批量写入目标，由 repository 层实现
type Target[T Keyed] interface {
	// LookupIDs 查出已存在记录的 自然键 -> 内部 ID
	LookupIDs(ctx context.Context, tx *gorm.DB, keys []string) (map[string]int64, error)
	// InsertBatch 批量插入新记录，返回 自然键 -> 新 ID
	InsertBatch(ctx context.Context, tx *gorm.DB, recs []T) (map[string]int64, error)
	// UpdateOne 按内部 ID 覆盖已存在记录
	UpdateOne(ctx context.Context, tx *gorm.DB, id int64, rec T) error
}

// ChildTarget 父子关系里子表的整批重建目标
type ChildTarget[C any] interface {
	DeleteByParents(ctx context.Context, tx *gorm.DB, parentIDs []int64) error
	InsertChildren(ctx context.Context, tx *gorm.DB, children []C) error
}

// BatchResult 一页的落库结果
type BatchResult struct {
	Created int
	Updated int
	Skipped int
	// IDs 本页所有记录（新旧都有）的 自然键 -> 内部 ID，用于挂子表
	IDs map[string]int64
}

// UpsertBatch 整页记录在单个事务里按自然键写库
// 新记录批量插入，已有记录逐条覆盖，任何一步失败整页回滚
func UpsertBatch[T Keyed](ctx context.Context, db *gorm.DB, target Target[T], recs []T) (*BatchResult, error) {
	var res *BatchResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		res, txErr = UpsertBatchTx(ctx, tx, target, recs)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpsertBatchTx 同 UpsertBatch，但挂在调用方已开的事务里
// 需要在同一事务内追加子表重建时用这个入口
func UpsertBatchTx[T Keyed](ctx context.Context, tx *gorm.DB, target Target[T], recs []T) (*BatchResult, error) {
	res := &BatchResult{IDs: map[string]int64{}}

	deduped, skipped := dedupLastWins(recs)
	res.Skipped = skipped
	if len(deduped) == 0 {
		return res, nil
	}

	keys := make([]string, 0, len(deduped))
	for _, rec := range deduped {
		keys = append(keys, rec.NaturalKey())
	}

	existing, err := target.LookupIDs(ctx, tx, keys)
	if err != nil {
		return nil, err
	}

	var inserts []T
	for _, rec := range deduped {
		id, ok := existing[rec.NaturalKey()]
		if !ok {
			inserts = append(inserts, rec)
			continue
		}
		if err := target.UpdateOne(ctx, tx, id, rec); err != nil {
			return nil, err
		}
		res.Updated++
		res.IDs[rec.NaturalKey()] = id
	}

	created, err := target.InsertBatch(ctx, tx, inserts)
	if err != nil {
		return nil, err
	}
	res.Created = len(inserts)
	for k, id := range created {
		res.IDs[k] = id
	}
	return res, nil
}

// ReplaceChildren 被触达父记录的子表整批重建
// 先一条 IN 删光旧子记录再批量插入新的，孤儿不残留
func ReplaceChildren[C any](ctx context.Context, tx *gorm.DB, target ChildTarget[C], parentIDs []int64, children []C) error {
	if err := target.DeleteByParents(ctx, tx, parentIDs); err != nil {
		return err
	}
	return target.InsertChildren(ctx, tx, children)
}

// dedupLastWins 同一页内重复自然键保留最后一条，空键跳过
// 后写覆盖先写的值，位置留在首次出现处
func dedupLastWins[T Keyed](recs []T) ([]T, int) {
	skipped := 0
	index := make(map[string]int, len(recs))
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		key := rec.NaturalKey()
		if key == "" {
			skipped++
			continue
		}
		if i, ok := index[key]; ok {
			out[i] = rec
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out, skipped
}

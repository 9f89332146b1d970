package syncx

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ==================== 翻页执行器 ====================

// 单轮兜底上限，防止平台 isLast 永远为 false 时无限翻页
const defaultMaxPages = 1000

// PageResult 单页拉取落库的结果
type PageResult struct {
	// Fetched 平台本页返回的记录数（去重前）
	Fetched int
	// IsLast 平台显式标记的末页信号
	IsLast bool
	// Created / Updated 落库计数，汇总进 RunStats
	Created int
	Updated int
}

// PageFunc 拉取并落库一页，page 从 1 开始
// window 是增量窗口起点，全量资源可忽略
type PageFunc func(ctx context.Context, page int, window *time.Time) (PageResult, error)

// RunStats 一轮同步的汇总
type RunStats struct {
	Pages     int
	Fetched   int
	Created   int
	Updated   int
	Completed bool
}

// Runner 驱动一个同步任务从持久化游标处继续翻页
// 每页成功才推进游标；失败停在原页，下次重跑
type Runner struct {
	Cursor *CursorStore
	// Delay 页间停顿，平滑对平台的请求压力
	Delay time.Duration
	// MaxPages 单轮页数上限，0 取默认值
	MaxPages int
}

// Run 执行一轮同步
// 末页判定：平台标记 IsLast，或本页记录数不足 pageSize
func (r *Runner) Run(ctx context.Context, key JobKey, pageSize int, fn PageFunc) (*RunStats, error) {
	stats := &RunStats{}
	startedAt := time.Now()

	st, err := r.Cursor.Get(ctx, key)
	if err != nil {
		return stats, fmt.Errorf("加载游标失败: %w", err)
	}

	maxPages := r.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	for i := 0; i < maxPages; i++ {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		page := st.PageCursor
		res, err := fn(ctx, page, st.WindowStart)
		if err != nil {
			if failErr := r.Cursor.Fail(ctx, st, err); failErr != nil {
				log.Printf("[Sync] 记录失败状态出错 %s/%s shop=%d: %v", key.Platform, key.Resource, key.ShopID, failErr)
			}
			return stats, fmt.Errorf("第 %d 页同步失败: %w", page, err)
		}

		stats.Pages++
		stats.Fetched += res.Fetched
		stats.Created += res.Created
		stats.Updated += res.Updated

		if res.IsLast || res.Fetched < pageSize {
			if err := r.Cursor.Reset(ctx, st, &startedAt); err != nil {
				return stats, fmt.Errorf("重置游标失败: %w", err)
			}
			stats.Completed = true
			return stats, nil
		}

		if err := r.Cursor.Advance(ctx, st); err != nil {
			return stats, fmt.Errorf("推进游标失败: %w", err)
		}

		if r.Delay > 0 {
			time.Sleep(r.Delay)
		}
	}

	// 翻到上限还没见到末页，游标留在原位，下一轮接着跑
	log.Printf("[Sync] %s/%s shop=%d 单轮达到 %d 页上限，留待下轮续跑", key.Platform, key.Resource, key.ShopID, maxPages)
	return stats, nil
}

// Chunk 把切片按固定大小切块，末块允许不满
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

package syncx

import (
	"context"
	"time"

	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
)

// ==================== 游标管理 ====================

// JobKey 同步任务标识，(平台, 资源, 店铺) 三元组
type JobKey struct {
	Platform string
	Resource string
	ShopID   int64
}

// CursorStore 持久化翻页游标
// 游标只在整页落库成功后推进，失败的页下次从原位重跑
type CursorStore struct {
	states repository.SyncStateRepository
}

// NewCursorStore 创建游标管理器
func NewCursorStore(states repository.SyncStateRepository) *CursorStore {
	return &CursorStore{states: states}
}

// Get 取出任务游标，不存在则以第 1 页初始化
func (c *CursorStore) Get(ctx context.Context, key JobKey) (*model.SyncState, error) {
	return c.states.GetOrCreate(ctx, key.Platform, key.Resource, key.ShopID)
}

// Advance 页成功，游标 +1
func (c *CursorStore) Advance(ctx context.Context, st *model.SyncState) error {
	now := time.Now()
	st.PageCursor++
	st.LastRunAt = &now
	st.LastError = ""
	return c.states.Save(ctx, st)
}

// Reset 整轮跑完，游标回到第 1 页并推进增量窗口
// window 传 nil 表示保持原窗口不动
func (c *CursorStore) Reset(ctx context.Context, st *model.SyncState, window *time.Time) error {
	now := time.Now()
	st.PageCursor = 1
	st.LastRunAt = &now
	st.LastError = ""
	if window != nil {
		st.WindowStart = window
	}
	return c.states.Save(ctx, st)
}

// Fail 记录失败原因，游标原地不动
func (c *CursorStore) Fail(ctx context.Context, st *model.SyncState, cause error) error {
	now := time.Now()
	st.LastRunAt = &now
	st.LastError = truncateError(cause.Error())
	return c.states.Save(ctx, st)
}

const maxErrorLen = 1000

func truncateError(s string) string {
	if len(s) > maxErrorLen {
		return s[:maxErrorLen]
	}
	return s
}

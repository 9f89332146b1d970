package syncx

import (
	"context"
	"errors"
	"testing"
	"time"

	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"

	"github.com/stretchr/testify/assert"
)

func newTestRunner(t *testing.T) (*Runner, repository.SyncStateRepository) {
	db := setupSyncDB(t)
	states := repository.NewSyncStateRepository(db)
	return &Runner{Cursor: NewCursorStore(states)}, states
}

// 末页（记录数不足 pageSize）后游标归位，窗口前推
func TestRunner_ResetOnShortPage(t *testing.T) {
	r, states := newTestRunner(t)
	ctx := context.Background()
	key := JobKey{Platform: model.PlatformJST, Resource: model.ResourceOrder, ShopID: 1}

	// 5 条数据按每页 2 条翻：2, 2, 1
	var pagesSeen []int
	fn := func(ctx context.Context, page int, window *time.Time) (PageResult, error) {
		pagesSeen = append(pagesSeen, page)
		fetched := 2
		if page == 3 {
			fetched = 1
		}
		return PageResult{Fetched: fetched, Created: fetched}, nil
	}

	stats, err := r.Run(ctx, key, 2, fn)
	if err != nil {
		t.Fatalf("运行失败: %v", err)
	}

	assert.Equal(t, []int{1, 2, 3}, pagesSeen)
	assert.Equal(t, 5, stats.Fetched)
	assert.Equal(t, 5, stats.Created)
	assert.True(t, stats.Completed)

	st, err := states.GetOrCreate(ctx, key.Platform, key.Resource, key.ShopID)
	if err != nil {
		t.Fatalf("读取游标失败: %v", err)
	}
	assert.Equal(t, 1, st.PageCursor)
	assert.NotNil(t, st.WindowStart)
	assert.Equal(t, "", st.LastError)
}

// 平台显式 isLast 时即使整页也收尾
func TestRunner_ResetOnIsLast(t *testing.T) {
	r, states := newTestRunner(t)
	ctx := context.Background()
	key := JobKey{Platform: model.PlatformPancake, Resource: model.ResourceOrder, ShopID: 2}

	fn := func(ctx context.Context, page int, window *time.Time) (PageResult, error) {
		return PageResult{Fetched: 2, IsLast: page == 2}, nil
	}

	stats, err := r.Run(ctx, key, 2, fn)
	if err != nil {
		t.Fatalf("运行失败: %v", err)
	}
	assert.Equal(t, 2, stats.Pages)
	assert.True(t, stats.Completed)

	st, _ := states.GetOrCreate(ctx, key.Platform, key.Resource, key.ShopID)
	assert.Equal(t, 1, st.PageCursor)
}

// 中途失败游标停在失败页，下一轮从原位续跑
func TestRunner_HaltWithoutAdvanceOnError(t *testing.T) {
	r, states := newTestRunner(t)
	ctx := context.Background()
	key := JobKey{Platform: model.PlatformJST, Resource: model.ResourceOrder, ShopID: 3}

	boom := errors.New("平台接口超时")
	broken := func(ctx context.Context, page int, window *time.Time) (PageResult, error) {
		if page == 2 {
			return PageResult{}, boom
		}
		return PageResult{Fetched: 2}, nil
	}

	stats, err := r.Run(ctx, key, 2, broken)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, stats.Pages)

	st, _ := states.GetOrCreate(ctx, key.Platform, key.Resource, key.ShopID)
	assert.Equal(t, 2, st.PageCursor)
	assert.Contains(t, st.LastError, "超时")

	// 修复后从第 2 页续跑，不重复第 1 页
	var resumed []int
	fixed := func(ctx context.Context, page int, window *time.Time) (PageResult, error) {
		resumed = append(resumed, page)
		return PageResult{Fetched: 1}, nil
	}
	if _, err := r.Run(ctx, key, 2, fixed); err != nil {
		t.Fatalf("续跑失败: %v", err)
	}
	assert.Equal(t, []int{2}, resumed)
}

// 页数兜底上限防止坏的末页信号导致无限翻页
func TestRunner_MaxPagesGuard(t *testing.T) {
	r, states := newTestRunner(t)
	r.MaxPages = 3
	ctx := context.Background()
	key := JobKey{Platform: model.PlatformTikTok, Resource: model.ResourceWarehouse, ShopID: 4}

	fn := func(ctx context.Context, page int, window *time.Time) (PageResult, error) {
		return PageResult{Fetched: 2}, nil
	}

	stats, err := r.Run(ctx, key, 2, fn)
	if err != nil {
		t.Fatalf("运行失败: %v", err)
	}
	assert.Equal(t, 3, stats.Pages)
	assert.False(t, stats.Completed)

	// 游标停在第 4 页等下一轮
	st, _ := states.GetOrCreate(ctx, key.Platform, key.Resource, key.ShopID)
	assert.Equal(t, 4, st.PageCursor)
}

func TestChunk_Sizes(t *testing.T) {
	ids := make([]string, 450)
	for i := range ids {
		ids[i] = "id"
	}

	chunks := Chunk(ids, 200)
	if len(chunks) != 3 {
		t.Fatalf("期望 3 块, 实际 %d", len(chunks))
	}
	assert.Len(t, chunks[0], 200)
	assert.Len(t, chunks[1], 200)
	assert.Len(t, chunks[2], 50)

	assert.Nil(t, Chunk([]string{}, 200))
	assert.Len(t, Chunk([]string{"a"}, 200), 1)
}

package task

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"omnisync_v1_202608/internal/connector"
	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/internal/service"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTaskDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Shop{}, &model.SyncState{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

// fakeOrderSyncer 记录并发峰值的假连接器
type fakeOrderSyncer struct {
	mu    sync.Mutex
	cur   int
	peak  int
	calls int
}

func (f *fakeOrderSyncer) Platform() string { return model.PlatformJST }

func (f *fakeOrderSyncer) SyncOrders(ctx context.Context, shop *model.Shop) (*connector.SyncResult, error) {
	f.mu.Lock()
	f.cur++
	if f.cur > f.peak {
		f.peak = f.cur
	}
	f.calls++
	f.mu.Unlock()

	time.Sleep(30 * time.Millisecond)

	f.mu.Lock()
	f.cur--
	f.mu.Unlock()
	return &connector.SyncResult{Platform: model.PlatformJST, Resource: model.ResourceOrder, ShopID: shop.ID, Created: 1}, nil
}

// 全店铺扇出必须压在并发上限以内
func TestOrderSyncTask_BoundedConcurrency(t *testing.T) {
	db := setupTaskDB(t)
	shopRepo := repository.NewShopRepository(db)
	stateRepo := repository.NewSyncStateRepository(db)

	for i := 0; i < 6; i++ {
		shop := &model.Shop{
			Platform:       model.PlatformJST,
			PlatformShopID: fmt.Sprintf("shop-%d", i),
			AppKey:         "k",
			Status:         model.ShopStatusActive,
		}
		if err := shopRepo.Create(context.Background(), shop); err != nil {
			t.Fatalf("预置店铺失败: %v", err)
		}
	}

	fake := &fakeOrderSyncer{}
	registry := connector.NewRegistry()
	registry.RegisterOrders(fake)

	syncService := service.NewSyncService(shopRepo, stateRepo, registry)
	task := NewOrderSyncTask(shopRepo, syncService)
	task.SetConcurrency(2, time.Millisecond)

	task.SyncAllShops(context.Background())

	assert.Equal(t, 6, fake.calls)
	assert.LessOrEqual(t, fake.peak, 2)
}

func TestTaskManager_TriggerAndStatus(t *testing.T) {
	db := setupTaskDB(t)
	shopRepo := repository.NewShopRepository(db)
	stateRepo := repository.NewSyncStateRepository(db)

	shop := &model.Shop{
		Platform:       model.PlatformJST,
		PlatformShopID: "s1",
		AppKey:         "k",
		Status:         model.ShopStatusActive,
	}
	if err := shopRepo.Create(context.Background(), shop); err != nil {
		t.Fatalf("预置店铺失败: %v", err)
	}

	fake := &fakeOrderSyncer{}
	registry := connector.NewRegistry()
	registry.RegisterOrders(fake)
	syncService := service.NewSyncService(shopRepo, stateRepo, registry)

	tm := NewTaskManager(&TaskManagerDeps{
		ShopRepo:    shopRepo,
		SyncService: syncService,
	}, &TaskManagerConfig{OrderEnabled: true, OrderConcurrency: 2})

	status := tm.Status()
	assert.True(t, status["order"])
	assert.False(t, status["token"])
	assert.False(t, status["catalog"])

	res, err := tm.TriggerOrderSync(context.Background(), shop.ID)
	if err != nil {
		t.Fatalf("手动触发失败: %v", err)
	}
	assert.Equal(t, 1, res.Created)

	// 未启用的任务拒绝触发
	disabled := NewTaskManager(&TaskManagerDeps{ShopRepo: shopRepo}, &TaskManagerConfig{})
	_, err = disabled.TriggerOrderSync(context.Background(), shop.ID)
	assert.ErrorIs(t, err, ErrTaskDisabled)
}

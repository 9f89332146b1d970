package task

import (
	"context"
	"log"
	"time"

	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/internal/service"

	"github.com/robfig/cron/v3"
)

// ==================== CatalogSyncTask 主数据同步任务 ====================

// CatalogSyncTask 仓库/类目/商品/库存等主数据同步
// 主数据变化慢，低频串行跑就够，不做店铺级并发
type CatalogSyncTask struct {
	shopRepo    repository.ShopRepository
	syncService *service.SyncService
	cron        *cron.Cron

	sleepTime time.Duration
}

// NewCatalogSyncTask 创建主数据同步任务
func NewCatalogSyncTask(shopRepo repository.ShopRepository, syncService *service.SyncService) *CatalogSyncTask {
	return &CatalogSyncTask{
		shopRepo:    shopRepo,
		syncService: syncService,
		cron:        cron.New(cron.WithSeconds()),
		sleepTime:   time.Second,
	}
}

// Start 启动定时任务
func (t *CatalogSyncTask) Start() {
	// 每小时第 5 分执行，错开整点的订单任务
	_, err := t.cron.AddFunc("0 5 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.SyncAllShops(ctx)
	})
	if err != nil {
		log.Printf("[CatalogSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[CatalogSyncTask] 已启动 (每小时)")
}

// Stop 停止任务
func (t *CatalogSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[CatalogSyncTask] 已停止")
}

// SyncAllShops 逐店同步主数据
func (t *CatalogSyncTask) SyncAllShops(ctx context.Context) {
	shops, err := t.shopRepo.ListActive(ctx, "")
	if err != nil {
		log.Printf("[CatalogSyncTask] 获取店铺列表失败: %v", err)
		return
	}

	for i := range shops {
		select {
		case <-ctx.Done():
			log.Println("[CatalogSyncTask] 任务超时停止")
			return
		default:
		}

		results, err := t.syncService.SyncShopCatalog(ctx, shops[i].ID)
		if err != nil {
			// 平台没有主数据同步能力不算异常
			continue
		}
		for _, r := range results {
			log.Printf("[CatalogSyncTask] 店铺 %d %s/%s: 新建 %d 更新 %d",
				r.ShopID, r.Platform, r.Resource, r.Created, r.Updated)
		}

		time.Sleep(t.sleepTime)
	}
}

package task

import (
	"context"
	"log"
	"sync"
	"time"

	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/internal/service"

	"github.com/robfig/cron/v3"
)

// ==================== OrderSyncTask 订单同步任务 ====================

// OrderSyncTask 全店铺订单同步定时任务
// 每店一个游标，失败的店停在原页，不影响其他店
type OrderSyncTask struct {
	shopRepo    repository.ShopRepository
	syncService *service.SyncService
	cron        *cron.Cron

	// 并发控制
	concurrencyLimit int
	sleepTime        time.Duration
}

// NewOrderSyncTask 创建订单同步任务
func NewOrderSyncTask(shopRepo repository.ShopRepository, syncService *service.SyncService) *OrderSyncTask {
	return &OrderSyncTask{
		shopRepo:         shopRepo,
		syncService:      syncService,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 8,
		sleepTime:        200 * time.Millisecond,
	}
}

// SetConcurrency 设置并发参数
func (t *OrderSyncTask) SetConcurrency(limit int, sleep time.Duration) {
	t.concurrencyLimit = limit
	t.sleepTime = sleep
}

// Start 启动定时任务
func (t *OrderSyncTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		log.Println("[OrderSyncTask] 执行首次订单同步...")
		t.SyncAllShops(ctx)
	}()

	_, err := t.cron.AddFunc("0 */10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.SyncAllShops(ctx)
	})
	if err != nil {
		log.Printf("[OrderSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[OrderSyncTask] 已启动 (每10分钟)")
}

// Stop 停止任务
func (t *OrderSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[OrderSyncTask] 已停止")
}

// SyncAllShops 并发同步所有活跃店铺的订单
func (t *OrderSyncTask) SyncAllShops(ctx context.Context) {
	shops, err := t.shopRepo.ListActive(ctx, "")
	if err != nil {
		log.Printf("[OrderSyncTask] 获取店铺列表失败: %v", err)
		return
	}
	if len(shops) == 0 {
		log.Println("[OrderSyncTask] 无活跃店铺需要同步")
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	var (
		totalCreated int
		totalUpdated int
		totalErrors  int
		mu           sync.Mutex
	)

	log.Printf("[OrderSyncTask] 开始处理 %d 个店铺，并发上限 %d", len(shops), t.concurrencyLimit)

	for i := range shops {
		select {
		case <-ctx.Done():
			log.Println("[OrderSyncTask] 任务超时停止")
			wg.Wait()
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		time.Sleep(t.sleepTime)

		go func(shopID int64, shopName string) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := t.syncService.SyncShopOrders(ctx, shopID)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				log.Printf("[OrderSyncTask] 店铺 %s(%d) 同步失败: %v", shopName, shopID, err)
				totalErrors++
				return
			}
			totalCreated += res.Created
			totalUpdated += res.Updated
		}(shops[i].ID, shops[i].ShopName)
	}

	wg.Wait()
	log.Printf("[OrderSyncTask] 本轮完成: 新建 %d 更新 %d 失败店铺 %d", totalCreated, totalUpdated, totalErrors)
}

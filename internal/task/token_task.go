package task

import (
	"context"
	"log"
	"sync"
	"time"

	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/internal/service"

	"github.com/robfig/cron/v3"
)

// ==================== TokenTask Token 保活任务 ====================

// 到期前多久算临期，提前刷新留足重试余量
const refreshThreshold = 10 * time.Minute

// TokenTask 周期扫描临期 Token 并刷新
type TokenTask struct {
	shopRepo    repository.ShopRepository
	authService *service.AuthService
	cron        *cron.Cron

	// 控制并发探测的数量，防止对平台认证端点打出波峰
	concurrencyLimit int
	sleepTime        time.Duration
}

// NewTokenTask 创建 Token 保活任务
func NewTokenTask(shopRepo repository.ShopRepository, authService *service.AuthService) *TokenTask {
	return &TokenTask{
		shopRepo:         shopRepo,
		authService:      authService,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 8,
		sleepTime:        50 * time.Millisecond,
	}
}

// Start 启动定时任务
func (t *TokenTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[TokenTask] 服务启动，执行首次 Token 检查...")
		t.refreshJob(ctx)
	}()

	_, err := t.cron.AddFunc("0 */5 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.refreshJob(ctx)
	})
	if err != nil {
		log.Fatalf("[TokenTask] 定时任务启动失败: %v", err)
	}

	t.cron.Start()
	log.Println("[TokenTask] 已启动 (每5分钟检查)")
}

// Stop 停止任务
func (t *TokenTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[TokenTask] 已停止")
}

// refreshJob 刷新所有临期店铺，信号量限流
func (t *TokenTask) refreshJob(ctx context.Context) {
	shops, err := t.shopRepo.FindExpiringShops(ctx, refreshThreshold)
	if err != nil {
		log.Printf("[TokenTask] 临期店铺查询失败: %v", err)
		return
	}
	if len(shops) == 0 {
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	log.Printf("[TokenTask] 开始刷新 %d 个店铺的 Token，并发上限 %d", len(shops), t.concurrencyLimit)

	for i := range shops {
		select {
		case <-ctx.Done():
			log.Println("[TokenTask] 任务超时停止")
			wg.Wait()
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		// 平滑波峰
		time.Sleep(t.sleepTime)

		go func(s model.Shop) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := t.authService.RefreshAccessToken(ctx, &s); err != nil {
				log.Printf("[TokenTask] 店铺 [%s] 刷新失败: %v", s.ShopName, err)
			}
		}(shops[i])
	}

	wg.Wait()
	log.Println("[TokenTask] 本轮 Token 刷新完成")
}

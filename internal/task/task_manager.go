package task

import (
	"context"
	"log"
	"time"

	"omnisync_v1_202608/internal/connector"
	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/internal/service"
)

// ==================== TaskManager 同步任务管理器 ====================

// TaskManager 统一管理定时任务的启停与手动触发
// 管理范围：Token 保活、订单同步、主数据同步
type TaskManager struct {
	tokenTask   *TokenTask
	orderTask   *OrderSyncTask
	catalogTask *CatalogSyncTask

	syncService *service.SyncService
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	ShopRepo    repository.ShopRepository
	AuthService *service.AuthService
	SyncService *service.SyncService
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	TokenEnabled bool

	OrderEnabled     bool
	OrderConcurrency int

	CatalogEnabled bool
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		TokenEnabled:     true,
		OrderEnabled:     true,
		OrderConcurrency: 8,
		CatalogEnabled:   true,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{syncService: deps.SyncService}

	if cfg.TokenEnabled && deps.AuthService != nil {
		tm.tokenTask = NewTokenTask(deps.ShopRepo, deps.AuthService)
	}
	if cfg.OrderEnabled && deps.SyncService != nil {
		tm.orderTask = NewOrderSyncTask(deps.ShopRepo, deps.SyncService)
		tm.orderTask.SetConcurrency(cfg.OrderConcurrency, 200*time.Millisecond)
	}
	if cfg.CatalogEnabled && deps.SyncService != nil {
		tm.catalogTask = NewCatalogSyncTask(deps.ShopRepo, deps.SyncService)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动同步任务...")

	if tm.tokenTask != nil {
		tm.tokenTask.Start()
	}
	if tm.orderTask != nil {
		tm.orderTask.Start()
	}
	if tm.catalogTask != nil {
		tm.catalogTask.Start()
	}

	log.Println("[TaskManager] 同步任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止同步任务...")

	if tm.tokenTask != nil {
		tm.tokenTask.Stop()
	}
	if tm.orderTask != nil {
		tm.orderTask.Stop()
	}
	if tm.catalogTask != nil {
		tm.catalogTask.Stop()
	}

	log.Println("[TaskManager] 同步任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerOrderSync 手动触发单店订单同步
func (tm *TaskManager) TriggerOrderSync(ctx context.Context, shopID int64) (*connector.SyncResult, error) {
	if tm.orderTask == nil {
		return nil, ErrTaskDisabled
	}
	return tm.syncService.SyncShopOrders(ctx, shopID)
}

// TriggerAllOrdersSync 手动触发全店订单同步
func (tm *TaskManager) TriggerAllOrdersSync(ctx context.Context) {
	if tm.orderTask != nil {
		go tm.orderTask.SyncAllShops(ctx)
	}
}

// TriggerCatalogSync 手动触发全店主数据同步
func (tm *TaskManager) TriggerCatalogSync(ctx context.Context) {
	if tm.catalogTask != nil {
		go tm.catalogTask.SyncAllShops(ctx)
	}
}

// ==================== 状态查询 ====================

// Status 获取任务开关状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"token":   tm.tokenTask != nil,
		"order":   tm.orderTask != nil,
		"catalog": tm.catalogTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)

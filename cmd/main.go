package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"omnisync_v1_202608/internal/connector"
	"omnisync_v1_202608/internal/controller"
	"omnisync_v1_202608/internal/middleware"
	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/internal/router"
	"omnisync_v1_202608/internal/service"
	"omnisync_v1_202608/internal/syncx"
	"omnisync_v1_202608/internal/task"
	"omnisync_v1_202608/pkg/database"
	"omnisync_v1_202608/pkg/net"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @title OmniSync 多平台订单同步服务 API
// @version 1.0
// @description 聚水潭 / Pancake / TikTok Shop / Lazada 订单与主数据同步接口
// @host localhost:8080
// @BasePath /
func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	deps.TaskManager.Start()
	defer deps.TaskManager.Stop()

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Registry    *connector.Registry
	TaskManager *task.TaskManager
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Shop      repository.ShopRepository
	SyncState repository.SyncStateRepository
	Order     repository.OrderRepository
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=omnisync port=5432 sslmode=disable TimeZone=Asia/Shanghai")

	return database.InitDB(dsn, getEnv("DB_VERBOSE", "") == "true",
		// Account
		&model.Shop{},
		// Sync
		&model.SyncState{},
		// Order
		&model.Order{}, &model.OrderItem{},
		// Catalog
		&model.Warehouse{}, &model.InventoryItem{},
		&model.Category{}, &model.Product{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Shop:      repository.NewShopRepository(db),
		SyncState: repository.NewSyncStateRepository(db),
		Order:     repository.NewOrderRepository(db),
	}

	// -------- 基础设施 --------
	dispatcher := net.NewDispatcher()
	cursor := syncx.NewCursorStore(repos.SyncState)
	archive := initArchiveService()

	// -------- 平台连接器 --------
	registry := connector.NewRegistry()
	jst := connector.NewJST(db, dispatcher, cursor, archive)
	registry.RegisterOrders(jst)
	registry.RegisterCatalog(jst)

	registry.RegisterOrders(connector.NewPancake(db, dispatcher, cursor, archive))

	tiktok := connector.NewTikTok(db, dispatcher, cursor, archive)
	registry.RegisterCatalog(tiktok)

	lazada := connector.NewLazada(db, dispatcher, cursor, archive)
	registry.RegisterCatalog(lazada)

	// 字段映射表在启动时整体校验，配错直接拒绝启动
	if err := connector.ValidateMappings(); err != nil {
		log.Fatalf("字段映射配置错误: %v", err)
	}

	// -------- 业务服务 --------
	authService := service.NewAuthService(
		repos.Shop,
		getEnv("OAUTH_STATE_SECRET", "omnisync-state-secret-change-me"),
		getEnv("OAUTH_CALLBACK_URL", "http://localhost:8080/api/auth/callback"),
	)
	syncService := service.NewSyncService(repos.Shop, repos.SyncState, registry)
	shopService := service.NewShopService(repos.Shop)

	// -------- 管理端 JWT --------
	if secret := getEnv("ADMIN_JWT_SECRET", ""); secret != "" {
		cfg := middleware.DefaultJWTConfig()
		cfg.SecretKey = secret
		middleware.SetJWTConfig(cfg)
	}

	// -------- 定时任务 --------
	taskManager := task.NewTaskManager(&task.TaskManagerDeps{
		ShopRepo:    repos.Shop,
		AuthService: authService,
		SyncService: syncService,
	}, &task.TaskManagerConfig{
		TokenEnabled:     getEnv("TASK_TOKEN_ENABLED", "true") == "true",
		OrderEnabled:     getEnv("TASK_ORDER_ENABLED", "true") == "true",
		OrderConcurrency: getEnvInt("TASK_ORDER_CONCURRENCY", 8),
		CatalogEnabled:   getEnv("TASK_CATALOG_ENABLED", "true") == "true",
	})

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth: controller.NewAuthController(
			authService, shopService,
			getEnv("ADMIN_USER", "admin"),
			getEnv("ADMIN_PASSWORD", "admin123"),
		),
		Shop:  controller.NewShopController(shopService),
		Order: controller.NewOrderController(repos.Order),
		Sync:  controller.NewSyncController(taskManager, syncService),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Registry:    registry,
		TaskManager: taskManager,
		Controllers: controllers,
	}
}

// initArchiveService 初始化页面归档服务
// 未配置 bucket 时返回 nil，连接器自动跳过归档
func initArchiveService() connector.PageArchiver {
	bucket := getEnv("ARCHIVE_BUCKET", "")
	if bucket == "" {
		return nil
	}

	svc, err := service.NewArchiveService(&service.ArchiveConfig{
		Bucket:    bucket,
		Region:    getEnv("AWS_REGION", "ap-southeast-1"),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Endpoint:  getEnv("ARCHIVE_ENDPOINT", ""),
		BasePath:  getEnv("ARCHIVE_BASE_PATH", "omnisync"),
	})
	if err != nil {
		log.Printf("警告: 归档服务初始化失败，原始报文归档关闭: %v", err)
		return nil
	}
	return svc
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

package router

import (
	"omnisync_v1_202608/internal/controller"
	"omnisync_v1_202608/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "omnisync_v1_202608/docs"
)

// Controllers 路由依赖的控制器集合
type Controllers struct {
	Auth  *controller.AuthController
	Shop  *controller.ShopController
	Order *controller.OrderController
	Sync  *controller.SyncController
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls *Controllers) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api", middleware.AuditLog())
	{
		// auth 授权组
		auth := api.Group("/auth")
		{
			// 管理端登录，无需 Token
			auth.POST("/admin/login", ctls.Auth.AdminLogin)

			// 平台授权回调由外部平台跳转进来，不能挂 JWT
			// GET /api/auth/callback
			auth.GET("/callback", ctls.Auth.Callback)

			authed := auth.Group("", middleware.JWTAuth())
			{
				// GET /api/auth/login-url
				authed.GET("/login-url", ctls.Auth.LoginURL)
				// POST /api/auth/refresh
				authed.POST("/refresh", ctls.Auth.Refresh)
			}
		}

		// shop 店铺管理
		shops := api.Group("/shops", middleware.JWTAuth())
		{
			shops.POST("", ctls.Shop.Create)
			shops.GET("", ctls.Shop.List)
			shops.GET("/:id", ctls.Shop.Get)
			shops.PUT("/:id", ctls.Shop.UpdateConfig)
			shops.DELETE("/:id", middleware.RequireRole("admin"), ctls.Shop.Delete)

			// 单店手动同步，带店铺级冷却
			shops.POST("/:id/sync/orders",
				middleware.SyncRateLimit(middleware.SyncTypeOrder, 0),
				ctls.Sync.SyncShopOrders,
			)
			shops.POST("/:id/sync/catalog",
				middleware.SyncRateLimit(middleware.SyncTypeCatalog, 0),
				ctls.Sync.SyncShopCatalog,
			)
		}

		// order 订单查询
		orders := api.Group("/orders", middleware.JWTAuth())
		{
			orders.GET("", ctls.Order.List)
			orders.GET("/:id", ctls.Order.Detail)
		}

		// sync 全局同步
		sync := api.Group("/sync", middleware.JWTAuth())
		{
			sync.POST("/orders",
				middleware.GlobalSyncRateLimit(middleware.SyncTypeOrder, 0),
				ctls.Sync.SyncAllOrders,
			)
			sync.POST("/catalog",
				middleware.GlobalSyncRateLimit(middleware.SyncTypeCatalog, 0),
				ctls.Sync.SyncAllCatalog,
			)
			sync.GET("/states", ctls.Sync.GetStates)
			sync.GET("/tasks", ctls.Sync.GetTaskStatus)
		}
	}
}

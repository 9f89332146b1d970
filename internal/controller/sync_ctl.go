package controller

import (
	"errors"
	"net/http"
	"strconv"

	"omnisync_v1_202608/internal/client"
	"omnisync_v1_202608/internal/service"
	"omnisync_v1_202608/internal/task"

	"github.com/gin-gonic/gin"
)

// SyncController 同步控制器
type SyncController struct {
	taskManager *task.TaskManager
	syncService *service.SyncService
}

// NewSyncController 创建同步控制器
func NewSyncController(taskManager *task.TaskManager, syncService *service.SyncService) *SyncController {
	return &SyncController{taskManager: taskManager, syncService: syncService}
}

// ==================== Handler 实现 ====================

// SyncShopOrders 同步单个店铺订单
// @Summary 手动同步单个店铺订单
// @Description 同步执行，从上次游标页继续拉取直到平台返回末页
// @Tags Sync (同步模块)
// @Produce json
// @Param id path int true "店铺 ID"
// @Success 200 {object} map[string]interface{} "同步统计"
// @Failure 429 {object} map[string]interface{} "限流中"
// @Failure 502 {object} map[string]interface{} "平台接口报错"
// @Router /api/shops/{id}/sync/orders [post]
func (c *SyncController) SyncShopOrders(ctx *gin.Context) {
	shopID := parseID(ctx, "id")
	if shopID == 0 {
		return
	}

	res, err := c.taskManager.TriggerOrderSync(ctx.Request.Context(), shopID)
	if err != nil {
		respondSyncError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "订单同步完成",
		"data":    res,
	})
}

// SyncAllOrders 同步所有店铺订单
// @Summary 手动同步所有店铺订单
// @Description 异步触发，立即返回
// @Tags Sync (同步模块)
// @Produce json
// @Success 200 {object} map[string]string "触发确认"
// @Failure 429 {object} map[string]interface{} "限流中"
// @Router /api/sync/orders [post]
func (c *SyncController) SyncAllOrders(ctx *gin.Context) {
	c.taskManager.TriggerAllOrdersSync(ctx.Request.Context())

	ctx.JSON(http.StatusOK, gin.H{"message": "所有店铺订单同步任务已启动"})
}

// SyncShopCatalog 同步单个店铺主数据
// @Summary 手动同步单个店铺主数据
// @Description 同步仓库/类目/商品/库存等主数据，平台不支持的资源自动跳过
// @Tags Sync (同步模块)
// @Produce json
// @Param id path int true "店铺 ID"
// @Success 200 {object} map[string]interface{} "各资源同步统计"
// @Failure 429 {object} map[string]interface{} "限流中"
// @Router /api/shops/{id}/sync/catalog [post]
func (c *SyncController) SyncShopCatalog(ctx *gin.Context) {
	shopID := parseID(ctx, "id")
	if shopID == 0 {
		return
	}

	results, err := c.syncService.SyncShopCatalog(ctx.Request.Context(), shopID)
	if err != nil {
		respondSyncError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "主数据同步完成",
		"data":    results,
	})
}

// SyncAllCatalog 同步所有店铺主数据
// @Summary 手动同步所有店铺主数据
// @Description 异步触发，立即返回
// @Tags Sync (同步模块)
// @Produce json
// @Success 200 {object} map[string]string "触发确认"
// @Failure 429 {object} map[string]interface{} "限流中"
// @Router /api/sync/catalog [post]
func (c *SyncController) SyncAllCatalog(ctx *gin.Context) {
	c.taskManager.TriggerCatalogSync(ctx.Request.Context())

	ctx.JSON(http.StatusOK, gin.H{"message": "所有店铺主数据同步任务已启动"})
}

// GetStates 查询同步游标状态
// @Summary 查询同步游标状态
// @Description 查看各店铺各资源当前页游标、时间窗口与最近错误
// @Tags Sync (同步模块)
// @Produce json
// @Param shop_id query int false "店铺 ID，为空时返回全部"
// @Success 200 {object} map[string]interface{} "游标状态列表"
// @Router /api/sync/states [get]
func (c *SyncController) GetStates(ctx *gin.Context) {
	var shopID int64
	if s := ctx.Query("shop_id"); s != "" {
		var err error
		shopID, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "shop_id 必须是数字"})
			return
		}
	}

	states, err := c.syncService.ListStates(ctx.Request.Context(), shopID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": states})
}

// GetTaskStatus 查询定时任务开关状态
// @Summary 查询定时任务开关状态
// @Tags Sync (同步模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "任务开关"
// @Router /api/sync/tasks [get]
func (c *SyncController) GetTaskStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"data": c.taskManager.Status()})
}

// ==================== 错误映射 ====================

// respondSyncError 把同步错误翻译成合适的 HTTP 状态
// 平台侧报错给 502 并附上平台错误码，本地问题给 500
func respondSyncError(ctx *gin.Context, err error) {
	if errors.Is(err, task.ErrTaskDisabled) {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "同步任务未启用"})
		return
	}

	var remoteErr *client.RemoteAPIError
	if errors.As(err, &remoteErr) {
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error":         "平台接口报错",
			"platform":      remoteErr.Platform,
			"platform_code": remoteErr.Code,
			"detail":        remoteErr.Message,
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

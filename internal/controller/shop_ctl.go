package controller

import (
	"net/http"
	"strconv"

	"omnisync_v1_202608/internal/model"
	"omnisync_v1_202608/internal/repository"
	"omnisync_v1_202608/internal/service"

	"github.com/gin-gonic/gin"
)

// ShopController 店铺管理控制器
type ShopController struct {
	shopSvc *service.ShopService
}

func NewShopController(shopSvc *service.ShopService) *ShopController {
	return &ShopController{shopSvc: shopSvc}
}

// ==================== 请求结构 ====================

type shopCreateReq struct {
	Platform       string `json:"platform" binding:"required"`
	PlatformShopID string `json:"platform_shop_id" binding:"required"`
	ShopName       string `json:"shop_name"`
	AppKey         string `json:"app_key"`
	AppSecret      string `json:"app_secret"`
	CompanyID      string `json:"company_id"`
	AccessToken    string `json:"access_token"`
	APIBase        string `json:"api_base"`
	PageSize       int    `json:"page_size"`
}

// ==================== Handler 实现 ====================

// Create 新建店铺接入
// @Summary 新建店铺接入
// @Description 登记平台店铺凭证，固定凭证平台直接激活，OAuth 平台等待授权回调
// @Tags Shop (店铺管理)
// @Accept json
// @Produce json
// @Param request body shopCreateReq true "店铺信息"
// @Success 200 {object} map[string]interface{} "店铺信息"
// @Failure 400 {object} map[string]string "参数错误"
// @Router /api/shops [post]
func (c *ShopController) Create(ctx *gin.Context) {
	var req shopCreateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	shop := &model.Shop{
		Platform:       req.Platform,
		PlatformShopID: req.PlatformShopID,
		ShopName:       req.ShopName,
		AppKey:         req.AppKey,
		AppSecret:      req.AppSecret,
		CompanyID:      req.CompanyID,
		AccessToken:    req.AccessToken,
		APIBase:        req.APIBase,
		PageSize:       req.PageSize,
	}

	if err := c.shopSvc.Create(ctx.Request.Context(), shop); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "店铺创建成功", "data": shop})
}

// List 店铺列表
// @Summary 获取店铺列表
// @Description 分页查询店铺，支持按平台、状态、名称筛选
// @Tags Shop (店铺管理)
// @Produce json
// @Param platform query string false "平台标识"
// @Param status query int false "状态筛选"
// @Param keyword query string false "店铺名称关键词"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{} "店铺列表"
// @Router /api/shops [get]
func (c *ShopController) List(ctx *gin.Context) {
	filter := repository.ShopFilter{
		Platform: ctx.Query("platform"),
		Keyword:  ctx.Query("keyword"),
	}
	if s := ctx.Query("status"); s != "" {
		status, err := strconv.Atoi(s)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "status 必须是数字"})
			return
		}
		filter.Status = &status
	}
	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(ctx.DefaultQuery("page_size", "20"))

	shops, total, err := c.shopSvc.List(ctx.Request.Context(), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data":  shops,
		"total": total,
		"page":  filter.Page,
	})
}

// Get 店铺详情
// @Summary 获取店铺详情
// @Tags Shop (店铺管理)
// @Produce json
// @Param id path int true "店铺 ID"
// @Success 200 {object} map[string]interface{} "店铺详情"
// @Failure 404 {object} map[string]string "店铺不存在"
// @Router /api/shops/{id} [get]
func (c *ShopController) Get(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	shop, err := c.shopSvc.Get(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": shop})
}

// UpdateConfig 更新同步配置
// @Summary 更新店铺同步配置
// @Description 更新页大小、接口地址、限速等同步配置项
// @Tags Shop (店铺管理)
// @Accept json
// @Produce json
// @Param id path int true "店铺 ID"
// @Param request body map[string]interface{} true "待更新字段"
// @Success 200 {object} map[string]string "{"message": "更新成功"}"
// @Failure 400 {object} map[string]string "字段不允许修改"
// @Router /api/shops/{id} [put]
func (c *ShopController) UpdateConfig(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var fields map[string]interface{}
	if err := ctx.ShouldBindJSON(&fields); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	if err := c.shopSvc.UpdateConfig(ctx.Request.Context(), id, fields); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "更新成功"})
}

// Delete 删除店铺
// @Summary 删除店铺
// @Description 软删除店铺，历史订单数据保留
// @Tags Shop (店铺管理)
// @Produce json
// @Param id path int true "店铺 ID"
// @Success 200 {object} map[string]string "{"message": "店铺已删除"}"
// @Router /api/shops/{id} [delete]
func (c *ShopController) Delete(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	if err := c.shopSvc.Delete(ctx.Request.Context(), id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "店铺已删除"})
}

// ==================== 工具函数 ====================

func parseID(ctx *gin.Context, key string) int64 {
	id, err := strconv.ParseInt(ctx.Param(key), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的 ID"})
		return 0
	}
	return id
}

package controller

import (
	"net/http"
	"strconv"
	"time"

	"omnisync_v1_202608/internal/repository"

	"github.com/gin-gonic/gin"
)

// OrderController 订单查询控制器
// 订单只读，写入统一由同步引擎负责
type OrderController struct {
	orderRepo repository.OrderRepository
}

func NewOrderController(orderRepo repository.OrderRepository) *OrderController {
	return &OrderController{orderRepo: orderRepo}
}

// List 订单列表
// @Summary 获取订单列表
// @Description 分页查询已同步的订单，支持平台、店铺、状态、买家关键词、下单时间筛选
// @Tags Order (订单查询)
// @Produce json
// @Param platform query string false "平台标识"
// @Param shop_id query int false "店铺 ID"
// @Param status query string false "本地状态"
// @Param keyword query string false "买家姓名/单号关键词"
// @Param start_date query string false "下单开始日期 (2006-01-02)"
// @Param end_date query string false "下单结束日期 (2006-01-02)"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{} "订单列表"
// @Router /api/orders [get]
func (c *OrderController) List(ctx *gin.Context) {
	filter := repository.OrderFilter{
		Platform: ctx.Query("platform"),
		Status:   ctx.Query("status"),
		Keyword:  ctx.Query("keyword"),
	}

	if s := ctx.Query("shop_id"); s != "" {
		shopID, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "shop_id 必须是数字"})
			return
		}
		filter.ShopID = shopID
	}

	if s := ctx.Query("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "start_date 格式错误"})
			return
		}
		filter.StartDate = &t
	}
	if s := ctx.Query("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "end_date 格式错误"})
			return
		}
		// 含当天
		end := t.Add(24 * time.Hour)
		filter.EndDate = &end
	}

	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(ctx.DefaultQuery("page_size", "20"))

	orders, total, err := c.orderRepo.List(ctx.Request.Context(), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data":  orders,
		"total": total,
		"page":  filter.Page,
	})
}

// Detail 订单详情
// @Summary 获取订单详情
// @Description 按 ID 查询订单，附带订单明细行
// @Tags Order (订单查询)
// @Produce json
// @Param id path int true "订单 ID"
// @Success 200 {object} map[string]interface{} "订单详情"
// @Failure 404 {object} map[string]string "订单不存在"
// @Router /api/orders/{id} [get]
func (c *OrderController) Detail(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	order, err := c.orderRepo.GetByIDWithItems(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": order})
}

package controller

import (
	"net/http"
	"strconv"

	"omnisync_v1_202608/internal/middleware"
	"omnisync_v1_202608/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthController 授权控制器
// 管两件事：平台 OAuth 授权流程，管理端登录发 Token
type AuthController struct {
	authService *service.AuthService
	shopSvc     *service.ShopService

	adminUser string
	adminPass string
}

func NewAuthController(authService *service.AuthService, shopSvc *service.ShopService, adminUser, adminPass string) *AuthController {
	return &AuthController{
		authService: authService,
		shopSvc:     shopSvc,
		adminUser:   adminUser,
		adminPass:   adminPass,
	}
}

// ==================== 平台 OAuth ====================

// LoginURL 获取平台授权链接
// @Summary 获取平台授权链接
// @Description 为 OAuth 平台店铺生成授权跳转链接，state 带签名防伪造
// @Tags Auth (授权模块)
// @Produce json
// @Param shop_id query int true "店铺 ID (Database Primary Key)"
// @Success 200 {object} map[string]string "授权链接"
// @Failure 400 {object} map[string]string "错误信息"
// @Router /api/auth/login-url [get]
func (ctrl *AuthController) LoginURL(c *gin.Context) {
	shopID, err := strconv.ParseInt(c.Query("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id 必须是正整数"})
		return
	}

	url, err := ctrl.authService.GenerateLoginURL(c.Request.Context(), shopID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "生成失败",
			"detail": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "获取成功",
		"auth_url": url,
	})
}

// Callback 平台授权回调
// @Summary 平台授权回调
// @Description 接收平台返回的 code 和 state，校验签名后换取 Token 并入库
// @Tags Auth (授权模块)
// @Produce json
// @Param code query string true "授权码"
// @Param state query string true "签名校验串"
// @Success 200 {object} map[string]interface{} "授权成功信息"
// @Failure 400 {object} map[string]string "拒绝授权/参数错误"
// @Router /api/auth/callback [get]
func (ctrl *AuthController) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	errParam := c.Query("error")

	if errParam != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户拒绝了授权", "platform_msg": errParam})
		return
	}

	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少必要参数 code 或 state"})
		return
	}

	shop, err := ctrl.authService.HandleCallback(c.Request.Context(), code, state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "授权失败",
			"detail": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "店铺授权成功",
		"shop_name": shop.ShopName,
		"platform":  shop.Platform,
		"expire_at": shop.TokenExpiresAt,
	})
}

// Refresh 手动刷新店铺 Token
// @Summary 刷新店铺 Token
// @Description 手动触发指定店铺的 Token 刷新
// @Tags Auth (授权模块)
// @Produce json
// @Param shop_id query int true "店铺 ID (Database Primary Key)"
// @Success 200 {object} map[string]interface{} "刷新结果"
// @Failure 400 {object} map[string]string "错误信息"
// @Router /api/auth/refresh [post]
func (ctrl *AuthController) Refresh(c *gin.Context) {
	shopID, err := strconv.ParseInt(c.Query("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id 必须是正整数"})
		return
	}

	shop, err := ctrl.shopSvc.Get(c.Request.Context(), shopID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
		return
	}

	if err := ctrl.authService.RefreshAccessToken(c.Request.Context(), shop); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "刷新失败",
			"detail": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "刷新成功",
		"expire_at": shop.TokenExpiresAt,
	})
}

// ==================== 管理端登录 ====================

type adminLoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin 管理端登录
// @Summary 管理端登录
// @Description 校验管理员账号，签发访问接口用的 JWT
// @Tags Auth (授权模块)
// @Accept json
// @Produce json
// @Param request body adminLoginReq true "登录信息"
// @Success 200 {object} map[string]string "Token 对"
// @Failure 401 {object} map[string]string "账号或密码错误"
// @Router /api/auth/admin/login [post]
func (ctrl *AuthController) AdminLogin(c *gin.Context) {
	var req adminLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	if req.Username != ctrl.adminUser || req.Password != ctrl.adminPass {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "账号或密码错误"})
		return
	}

	access, refresh, err := middleware.GenerateTokenPair(1, req.Username, "admin")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token 签发失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

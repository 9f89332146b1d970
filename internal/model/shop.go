package model

import (
	"time"
)

// ==================== 平台常量 ====================

// Platform 外部平台标识
const (
	PlatformJST     = "jst"     // 聚水潭 ERP
	PlatformPancake = "pancake" // Pancake POS
	PlatformTikTok  = "tiktok"  // TikTok Shop
	PlatformLazada  = "lazada"  // Lazada
)

// Shop 店铺状态常量
const (
	ShopStatusPending  = 0 // 待授权
	ShopStatusActive   = 1 // 正常
	ShopStatusInactive = 2 // 已停用
)

// Token 状态常量
const (
	TokenStatusValid   = "valid"        // 有效
	TokenStatusExpired = "expired"      // 已过期
	TokenStatusInvalid = "auth_invalid" // 需重新授权
)

// ==================== Shop 店铺/账号 ====================

// Shop 一条平台接入账号（平台 + 外部店铺）
// 凭证在 Token 刷新时原地覆盖，不做版本化
type Shop struct {
	BaseModel

	// 1. 核心身份
	Platform       string `gorm:"size:20;not null;uniqueIndex:uk_platform_shop" json:"platform"`
	PlatformShopID string `gorm:"size:64;not null;uniqueIndex:uk_platform_shop" json:"platform_shop_id"` // 平台侧店铺/账套 ID
	ShopName       string `gorm:"size:100" json:"shop_name"`
	Region         string `gorm:"size:20;default:'VN'" json:"region"` // 区分账户地区，Pancake/TikTok 多为东南亚站点

	// 2. 应用凭证，不对外输出
	AppKey    string `gorm:"size:128" json:"-"`
	AppSecret string `gorm:"size:128" json:"-"`
	CompanyID string `gorm:"size:64;comment:聚水潭公司编号，其他平台为空" json:"company_id"`

	// 3. API Token
	// 周期检测 token 是否过期
	TokenStatus    string    `gorm:"index;size:20;default:'auth_invalid'" json:"token_status"`
	AccessToken    string    `gorm:"size:512" json:"-"`
	RefreshToken   string    `gorm:"size:512" json:"-"`
	TokenExpiresAt time.Time `json:"token_expires_at"` // Token 具体的过期时间点

	// 4. 同步配置
	PageSize  int    `gorm:"default:100;comment:列表接口单页条数" json:"page_size"`
	APIBase   string `gorm:"size:255;comment:覆盖默认网关地址，留空用平台默认" json:"api_base"`
	SyncDelay int    `gorm:"default:500;comment:翻页间隔毫秒" json:"sync_delay"`

	// 5. 状态
	Status   int        `gorm:"default:0;comment:状态 0-待授权 1-正常 2-已停用" json:"status"`
	SyncedAt *time.Time `gorm:"comment:最后同步时间" json:"synced_at"`
}

// NeedsRefresh Token 是否临近过期
// threshold: 提前量，到期前多久就该刷新
func (s *Shop) NeedsRefresh(threshold time.Duration) bool {
	if s.RefreshToken == "" {
		return false
	}
	return time.Now().Add(threshold).After(s.TokenExpiresAt)
}

// UsesOAuth 平台是否走 OAuth 授权（否则为固定 key/secret）
func (s *Shop) UsesOAuth() bool {
	return s.Platform == PlatformTikTok || s.Platform == PlatformLazada
}

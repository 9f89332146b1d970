package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 操作审计中间件 ====================

// AuditLog 记录管理端的写操作
// 谁在什么时候改了什么，排查误触发的手动同步时用
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// 只审计写操作，查询不记
		switch c.Request.Method {
		case "POST", "PUT", "DELETE":
		default:
			return
		}

		operator := GetUsername(c)
		if operator == "" {
			operator = "anonymous"
		}

		log.Printf("[Audit] %s %s %s -> %d (%v)",
			operator, c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

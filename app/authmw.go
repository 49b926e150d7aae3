package app

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"meeting-bot/config"

	"github.com/gin-gonic/gin"
)

// TokenRequired 运维端点的简单 bearer 校验（机器人令牌复用）
func TokenRequired(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(cfg.BotToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

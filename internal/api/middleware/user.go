package middleware

import (
	"mealmind/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIdentity 從 X-User-ID 取得使用者，沒有時使用預設使用者
func UserIdentity(defaultUserID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := common.ParseUserID(c.GetHeader(common.HeaderUserID), defaultUserID)
		if err != nil {
			common.LogWarn("無效的使用者 ID",
				zap.String("raw", c.GetHeader(common.HeaderUserID)),
				zap.String("path", c.Request.URL.Path),
			)
			ce := common.AsCustomError(err)
			c.AbortWithStatusJSON(ce.Status, ce.ToResponse(false))
			return
		}
		c.Set(common.ContextKeyUserID, userID)
		c.Next()
	}
}

// UserID 取出目前請求的使用者
func UserID(c *gin.Context) uint {
	return c.GetUint(common.ContextKeyUserID)
}

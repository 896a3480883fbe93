package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

// AdminTokenFromRequest pulls the console token from the Authorization
// header or, for websocket upgrades, the token query parameter.
func AdminTokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// AdminAuthMiddleware guards routes that require an authenticated admin.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := AdminTokenFromRequest(c)
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization token missing"))
			c.Abort()
			return
		}

		claims, err := utils.ParseAdminToken(token)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("admin_username", claims.Username)
		c.Next()
	}
}

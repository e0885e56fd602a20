package middleware

import (
	"net/http"

	"access-governance/internal/metrics"
	"access-governance/internal/models"
	"access-governance/internal/permissions"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		userID := sess.Get("user_id")
		if userID == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// SessionRole: роль консоли из сессии, пустая если не вошёл.
func SessionRole(c *gin.Context) models.UserRole {
	roleStr, _ := sessions.Default(c).Get("role").(string)
	return models.UserRole(roleStr)
}

// RequirePermission пропускает запрос, если разрешения роли из сессии
// удовлетворяют требованию (any: хотя бы одно, all: все).
func RequirePermission(mode permissions.Mode, perms ...string) gin.HandlerFunc {
	required := append([]string(nil), perms...)

	return func(c *gin.Context) {
		role := SessionRole(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		allowed := permissions.Authorize(permissions.ForRole(role), required, mode)
		metrics.RecordDecision(allowed)
		if !allowed {
			zap.L().Info("access denied",
				zap.String("role", string(role)),
				zap.String("path", c.FullPath()),
				zap.Strings("required", required),
				zap.String("mode", string(mode)),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

package middleware

import (
	"access-governance/internal/database"
	"access-governance/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func InjectUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if uidRaw := sess.Get("user_id"); uidRaw != nil && database.DB != nil {
			if uid, ok := uidRaw.(uint); ok && uid > 0 {
				var user models.User
				if err := database.DB.WithContext(c.Request.Context()).First(&user, uid).Error; err == nil {
					c.Set("CurrentUser", user)
				}
			}
		}

		c.Next()
	}
}

// CurrentUser: пользователь, которого положил InjectUser.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get("CurrentUser")
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

// SessionUserID: ID пользователя из сессии, 0 если не вошёл.
func SessionUserID(c *gin.Context) uint {
	uid, _ := sessions.Default(c).Get("user_id").(uint)
	return uid
}

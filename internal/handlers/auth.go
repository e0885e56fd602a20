package handlers

import (
	"net/http"
	"strings"
	"time"

	"access-governance/internal/database"
	"access-governance/internal/metrics"
	"access-governance/internal/middleware"
	"access-governance/internal/models"
	"access-governance/internal/permissions"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	var user models.User
	if err := database.DB.WithContext(c.Request.Context()).
		Where("username = ?", strings.TrimSpace(req.Username)).
		First(&user).Error; err != nil {
		renderError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		zap.L().Info("failed login", zap.String("username", user.Username))
		renderError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	now := time.Now()
	if err := database.DB.Model(&user).Update("last_login_at", now).Error; err != nil {
		zap.L().Warn("failed to update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now

	sess := sessions.Default(c)
	sess.Set("user_id", user.ID)
	sess.Set("role", string(user.Role))
	if err := sess.Save(); err != nil {
		internalError(c, "failed to save session", err)
		return
	}

	database.CreateAuditLog(user.ID, "user", userKey(user.ID), "login", "Вход в консоль")

	render(c, http.StatusOK, gin.H{
		"user":        user,
		"permissions": permissions.ForRole(user.Role).List(),
	})
}

func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Status(http.StatusNoContent)
}

// Me: текущий пользователь и его разрешения (для условного UI).
func Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		renderError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	render(c, http.StatusOK, gin.H{
		"user":        user,
		"permissions": permissions.ForRole(user.Role).List(),
	})
}

type authorizeRequest struct {
	Required []string `json:"required"`
	Mode     string   `json:"mode"`
}

// Authorize: проверка набора разрешений без выполнения действия.
// Пустой required разрешён всегда, неизвестный режим трактуется как all.
func Authorize(c *gin.Context) {
	var req authorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := permissions.ParseMode(req.Mode)
	allowed := permissions.Authorize(permissions.ForRole(middleware.SessionRole(c)), req.Required, mode)
	metrics.RecordDecision(allowed)

	render(c, http.StatusOK, gin.H{"authorized": allowed, "mode": mode})
}

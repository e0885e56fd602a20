package handlers

import (
	"net/http"

	"access-governance/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// render: обёртка над c.JSON. Предупреждения частичного успеха (пропущенные
// записи, неоценённые цели) кладутся в поле warnings, если они есть.
func render(c *gin.Context, status int, data gin.H, warnings ...string) {
	if data == nil {
		data = gin.H{}
	}
	if len(warnings) > 0 {
		data["warnings"] = warnings
	}
	c.JSON(status, data)
}

func renderError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// internalError пишет причину в лог, наружу отдаёт общий текст.
func internalError(c *gin.Context, msg string, err error) {
	zap.L().Error(msg,
		zap.String("path", c.FullPath()),
		zap.Uint("user_id", middleware.SessionUserID(c)),
		zap.Error(err),
	)
	renderError(c, http.StatusInternalServerError, msg)
}

package handlers

import (
	"net/http"
	"strconv"

	"access-governance/internal/database"
	"access-governance/internal/models"

	"github.com/gin-gonic/gin"
)

const auditPageSize = 200

func ListAuditLogs(c *gin.Context) {
	q := database.DB.WithContext(c.Request.Context()).
		Preload("User").
		Order("created_at desc").
		Limit(auditPageSize)

	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if entityID := c.Query("entity_id"); entityID != "" {
		q = q.Where("entity_id = ?", entityID)
	}

	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		internalError(c, "failed to load audit log", err)
		return
	}

	render(c, http.StatusOK, gin.H{"logs": logs})
}

func userKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

package database

import (
	"access-governance/internal/models"

	"go.uber.org/zap"
)

// helper для записи в журнал аудита
func CreateAuditLog(userID uint, entity string, entityID string, action, details string) {
	if DB == nil {
		return
	}
	record := models.AuditLog{
		UserID:   userID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if err := DB.Create(&record).Error; err != nil {
		zap.S().Warnw("failed to write audit log", "entity", entity, "entity_id", entityID, "error", err)
	}
}

package models

import "time"

type AuditLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID uint
	User   User

	Entity   string `gorm:"size:50;not null"` // "violation", "assessment", "user"
	EntityID string `gorm:"size:64;index"`
	Action   string `gorm:"size:50;not null"` // "detect", "status_change" и т.п.
	Details  string `gorm:"type:text"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole: роль оператора консоли (определяет набор разрешений).
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleAuditor UserRole = "auditor"
	RoleManager UserRole = "manager"
	RoleViewer  UserRole = "viewer"
)

// User: учётная запись из каталога пользователей. Она же субъект проверок доступа.
type User struct {
	gorm.Model
	Username     string   `gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null"`

	FullName    string     `gorm:"size:255"`
	Department  string     `gorm:"size:100"`
	RiskScore   float64    // 0..100, приходит из внешнего каталога
	LastLoginAt *time.Time // nil: ни разу не входил

	Grants []RoleGrant
}

package models

import "gorm.io/gorm"

// BusinessRole: каталог бизнес-ролей в прикладных системах (AP_CLERK, GL_ACCOUNTANT и т.п.)
type BusinessRole struct {
	gorm.Model
	Code        string    `gorm:"size:64;uniqueIndex;not null"`
	Name        string    `gorm:"size:255;not null"`
	System      string    `gorm:"size:100"` // SAP, Oracle EBS, AD ...
	RiskLevel   RiskLevel `gorm:"type:varchar(16);not null"`
	IsSensitive bool
}

// RoleGrant: назначение бизнес-роли пользователю
type RoleGrant struct {
	gorm.Model
	UserID         uint `gorm:"index"`
	BusinessRoleID uint
	BusinessRole   BusinessRole

	Justification string `gorm:"type:text"` // бизнес-обоснование, пусто: не зафиксировано
}

// SoDRule: пара несовместимых ролей
type SoDRule struct {
	gorm.Model
	Code      string    `gorm:"size:64;uniqueIndex;not null"`
	Name      string    `gorm:"size:255;not null"`
	RoleACode string    `gorm:"size:64;not null"`
	RoleBCode string    `gorm:"size:64;not null"`
	Severity  RiskLevel `gorm:"type:varchar(16)"` // минимальная критичность, может быть пустой
	Disabled  bool
}

// Package violations находит нарушения доступа у субъекта: конфликты SoD,
// избыточный и чувствительный доступ без обоснования, неактивные учётные записи.
//
// Движок не хранит состояние: на вход снимок субъекта и набор правил, на выход
// список нарушений и число пропущенных некорректных записей.
package violations

import (
	"fmt"
	"time"

	"access-governance/internal/models"
)

// Role: снимок бизнес-роли на момент проверки.
type Role struct {
	Code      string           `yaml:"code" validate:"required"`
	Name      string           `yaml:"name"`
	System    string           `yaml:"system"`
	RiskLevel models.RiskLevel `yaml:"risk_level" validate:"required,oneof=low medium high critical"`
	Sensitive bool             `yaml:"sensitive"`
}

// Grant: роль, назначенная субъекту, и бизнес-обоснование (если зафиксировано).
type Grant struct {
	Role          Role   `yaml:"role"`
	Justification string `yaml:"justification"`
}

// Subject: пользователь со своими назначениями (EntityWithGrants).
type Subject struct {
	ID          string     `yaml:"id" validate:"required"`
	Name        string     `yaml:"name"`
	Department  string     `yaml:"department"`
	LastLoginAt *time.Time `yaml:"last_login_at"`
	Grants      []Grant    `yaml:"grants"`
}

// Rule: пара несовместимых ролей. Severity задаёт нижнюю границу критичности.
type Rule struct {
	ID       string           `yaml:"id" validate:"required"`
	Name     string           `yaml:"name"`
	RoleA    string           `yaml:"role_a" validate:"required"`
	RoleB    string           `yaml:"role_b" validate:"required,nefield=RoleA"`
	Severity models.RiskLevel `yaml:"severity" validate:"omitempty,oneof=low medium high critical"`
	Disabled bool             `yaml:"disabled"`
}

type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Result: найденные нарушения плюс учёт пропущенных записей.
type Result struct {
	Violations []models.Violation `json:"violations"`
	Skipped    int                `json:"skipped"`
	Problems   []string           `json:"problems,omitempty"`
}

func (r *Result) skip(format string, args ...any) {
	r.Skipped++
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

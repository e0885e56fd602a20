package models

import "time"

type ViolationType string
type ViolationStatus string

const (
	ViolationSoDConflict     ViolationType = "sod_conflict"
	ViolationExcessiveAccess ViolationType = "excessive_access"
	ViolationSensitiveAccess ViolationType = "sensitive_access"
	ViolationDormantAccount  ViolationType = "dormant_account"

	ViolationOpen      ViolationStatus = "open"
	ViolationInReview  ViolationStatus = "in_review"
	ViolationMitigated ViolationStatus = "mitigated"
	ViolationAccepted  ViolationStatus = "accepted"
)

// Label: название типа для отчётов и выгрузок.
func (t ViolationType) Label() string {
	switch t {
	case ViolationSoDConflict:
		return "SoD Conflict"
	case ViolationExcessiveAccess:
		return "Excessive Access"
	case ViolationSensitiveAccess:
		return "Sensitive Access"
	case ViolationDormantAccount:
		return "Dormant Account"
	default:
		return string(t)
	}
}

func (t ViolationType) Valid() bool {
	switch t {
	case ViolationSoDConflict, ViolationExcessiveAccess, ViolationSensitiveAccess, ViolationDormantAccount:
		return true
	}
	return false
}

func (s ViolationStatus) Valid() bool {
	switch s {
	case ViolationOpen, ViolationInReview, ViolationMitigated, ViolationAccepted:
		return true
	}
	return false
}

// Closed: нарушение закрыто и больше не меняется.
func (s ViolationStatus) Closed() bool {
	return s == ViolationMitigated || s == ViolationAccepted
}

// Violation: запись журнала нарушений. Журнал только дополняется:
// закрытые записи не переоткрываются, повторное обнаружение создаёт новую.
type Violation struct {
	ID          string `gorm:"primaryKey;size:36"`
	Fingerprint string `gorm:"size:64;index;not null"` // субъект + тип + правило, без поколения
	Generation  int

	SubjectID   string          `gorm:"size:64;index;not null"`
	SubjectName string          `gorm:"size:255"`
	Department  string          `gorm:"size:100"`
	Type        ViolationType   `gorm:"type:varchar(32);not null"`
	RuleCode    string          `gorm:"size:64"` // код SoD-правила или роли
	RuleName    string          `gorm:"size:255"`
	Severity    RiskLevel       `gorm:"type:varchar(16);not null"`
	Status      ViolationStatus `gorm:"type:varchar(16);not null;index"`
	Systems     []string        `gorm:"serializer:json"`
	Mitigation  string          `gorm:"type:text"`

	DetectedAt time.Time
	UpdatedAt  time.Time
}

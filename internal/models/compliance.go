package models

import "time"

type AssessmentStatus string

const (
	StatusCompliant          AssessmentStatus = "compliant"
	StatusPartiallyCompliant AssessmentStatus = "partially_compliant"
	StatusNonCompliant       AssessmentStatus = "non_compliant"
	StatusNotAssessed        AssessmentStatus = "not_assessed"
)

// Framework: нормативная база (SOX, ISO 27001 ...) со своими контрольными целями.
type Framework struct {
	ID         string             `gorm:"primaryKey;size:64"`
	Name       string             `gorm:"size:255;not null"`
	Objectives []ControlObjective `gorm:"foreignKey:FrameworkID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// последние результаты оценки, в БД хранятся отдельно
	AssessmentResults []AssessmentResult `gorm:"-"`
}

// Objective возвращает контрольную цель фреймворка по ID.
func (f Framework) Objective(id string) (ControlObjective, bool) {
	for _, o := range f.Objectives {
		if o.ID == id {
			return o, true
		}
	}
	return ControlObjective{}, false
}

// ControlObjective: справочная запись, принадлежит одному фреймворку.
type ControlObjective struct {
	ID           string `gorm:"primaryKey;size:64"`
	FrameworkID  string `gorm:"size:64;index;not null"`
	ReferenceID  string `gorm:"size:64;not null"` // например "CC6.1", "A.9.2.3"
	Title        string `gorm:"size:255"`
	Category     string `gorm:"size:128"`
	IsKeyControl bool
	RiskLevel    RiskLevel `gorm:"type:varchar(16);not null"`
}

// Evidence: свидетельство по контрольной цели из журнала аудита / конфигурации.
type Evidence struct {
	ID          uint   `gorm:"primaryKey"`
	ObjectiveID string `gorm:"size:64;index;not null"`
	Source      string `gorm:"size:100"` // audit_log, config, attestation
	Description string `gorm:"type:text"`
	Satisfied   bool
	Weight      float64 // 0 трактуется как 1
	CollectedAt time.Time
}

// AssessmentResult: итог оценки одной контрольной цели. История хранится,
// для агрегатов берётся последний результат.
type AssessmentResult struct {
	ID              uint             `gorm:"primaryKey"`
	RunID           string           `gorm:"size:36;index"`
	FrameworkID     string           `gorm:"size:64;index"`
	ObjectiveID     string           `gorm:"size:64;index;not null"`
	Status          AssessmentStatus `gorm:"type:varchar(32);not null"`
	Score           float64
	Findings        []string `gorm:"serializer:json"`
	Gaps            []string `gorm:"serializer:json"`
	Recommendations []string `gorm:"serializer:json"`
	Note            string   `gorm:"type:text"` // причина not_assessed
	AssessedAt      time.Time
	AssessedBy      string `gorm:"size:100"`
}

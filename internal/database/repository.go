package database

import (
	"context"
	"fmt"
	"strconv"

	"access-governance/internal/models"
	"access-governance/internal/violations"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubjectFromUser: снимок пользователя для движка нарушений.
// Назначения без подгруженной роли передаются как есть: движок их пропустит.
func SubjectFromUser(u models.User) violations.Subject {
	s := violations.Subject{
		ID:          strconv.FormatUint(uint64(u.ID), 10),
		Name:        u.FullName,
		Department:  u.Department,
		LastLoginAt: u.LastLoginAt,
	}
	if s.Name == "" {
		s.Name = u.Username
	}
	for _, g := range u.Grants {
		br := g.BusinessRole
		s.Grants = append(s.Grants, violations.Grant{
			Role: violations.Role{
				Code:      br.Code,
				Name:      br.Name,
				System:    br.System,
				RiskLevel: br.RiskLevel,
				Sensitive: br.IsSensitive,
			},
			Justification: g.Justification,
		})
	}
	return s
}

func RuleFromModel(r models.SoDRule) violations.Rule {
	return violations.Rule{
		ID:       r.Code,
		Name:     r.Name,
		RoleA:    r.RoleACode,
		RoleB:    r.RoleBCode,
		Severity: r.Severity,
		Disabled: r.Disabled,
	}
}

func RuleToModel(r violations.Rule) models.SoDRule {
	name := r.Name
	if name == "" {
		name = r.ID
	}
	return models.SoDRule{
		Code:      r.ID,
		Name:      name,
		RoleACode: r.RoleA,
		RoleBCode: r.RoleB,
		Severity:  r.Severity,
		Disabled:  r.Disabled,
	}
}

// LoadUsers: пользователи с назначениями и ролями. Без ID: все.
func LoadUsers(ctx context.Context, ids ...uint) ([]models.User, error) {
	q := DB.WithContext(ctx).Preload("Grants.BusinessRole").Order("id asc")
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

func LoadRuleSet(ctx context.Context) (violations.RuleSet, error) {
	var rules []models.SoDRule
	if err := DB.WithContext(ctx).Order("code asc").Find(&rules).Error; err != nil {
		return violations.RuleSet{}, fmt.Errorf("load sod rules: %w", err)
	}

	rs := violations.RuleSet{Rules: make([]violations.Rule, 0, len(rules))}
	for _, r := range rules {
		rs.Rules = append(rs.Rules, RuleFromModel(r))
	}
	return rs, nil
}

// RecordDetections дописывает в журнал новые нарушения (см. violations.Reconcile)
// и возвращает только добавленные записи.
func RecordDetections(ctx context.Context, detected []models.Violation) ([]models.Violation, error) {
	if len(detected) == 0 {
		return nil, nil
	}

	fps := make([]string, 0, len(detected))
	for _, v := range detected {
		fps = append(fps, v.Fingerprint)
	}

	var fresh []models.Violation
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Violation
		if err := tx.Where("fingerprint IN ?", fps).Find(&existing).Error; err != nil {
			return err
		}

		fresh = violations.Reconcile(existing, detected)
		return insertViolations(tx, fresh)
	})
	if err != nil {
		return nil, fmt.Errorf("record detections: %w", err)
	}
	return fresh, nil
}

// insertViolations пропускает записи, чей ID уже в журнале: ID вычисляются
// из условия, и параллельный прогон мог успеть вставить ту же запись.
func insertViolations(tx *gorm.DB, vs []models.Violation) error {
	if len(vs) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vs).Error
}

// LoadFramework: фреймворк с целями и всей историей результатов.
func LoadFramework(ctx context.Context, id string) (models.Framework, error) {
	var fw models.Framework
	err := DB.WithContext(ctx).
		Preload("Objectives", func(db *gorm.DB) *gorm.DB { return db.Order("reference_id asc") }).
		First(&fw, "id = ?", id).Error
	if err != nil {
		return fw, err
	}

	if err := DB.WithContext(ctx).
		Where("framework_id = ?", id).
		Order("assessed_at asc, id asc").
		Find(&fw.AssessmentResults).Error; err != nil {
		return fw, fmt.Errorf("load assessment results: %w", err)
	}
	return fw, nil
}

func SaveAssessmentResults(ctx context.Context, results []models.AssessmentResult) error {
	if len(results) == 0 {
		return nil
	}
	return DB.WithContext(ctx).Create(&results).Error
}

// EvidenceStore: источник свидетельств поверх таблицы evidence.
type EvidenceStore struct {
	DB *gorm.DB
}

func (s EvidenceStore) Evidence(ctx context.Context, objectiveID string) ([]models.Evidence, error) {
	var ev []models.Evidence
	if err := s.DB.WithContext(ctx).
		Where("objective_id = ?", objectiveID).
		Order("collected_at asc, id asc").
		Find(&ev).Error; err != nil {
		return nil, fmt.Errorf("load evidence for %s: %w", objectiveID, err)
	}
	return ev, nil
}

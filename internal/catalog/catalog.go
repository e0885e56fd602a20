// Package catalog читает YAML-каталог: бизнес-роли, SoD-правила, фреймворки
// с контрольными целями, свидетельства и снимки пользователей. Используется
// для первичного наполнения БД и офлайн-проверок из grcctl.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"access-governance/internal/assessment"
	"access-governance/internal/models"
	"access-governance/internal/violations"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrUnknownRole = errors.New("unknown role")

type Catalog struct {
	Roles      []violations.Role `yaml:"roles" validate:"dive"`
	Rules      []violations.Rule `yaml:"rules" validate:"dive"`
	Frameworks []FrameworkSpec   `yaml:"frameworks" validate:"dive"`
	Evidence   []EvidenceSpec    `yaml:"evidence" validate:"dive"`
	Subjects   []SubjectSpec     `yaml:"subjects" validate:"dive"`
}

type FrameworkSpec struct {
	ID         string          `yaml:"id" validate:"required"`
	Name       string          `yaml:"name" validate:"required"`
	Objectives []ObjectiveSpec `yaml:"objectives" validate:"dive"`
}

type ObjectiveSpec struct {
	ID          string           `yaml:"id" validate:"required"`
	ReferenceID string           `yaml:"reference_id" validate:"required"`
	Title       string           `yaml:"title"`
	Category    string           `yaml:"category" validate:"required"`
	KeyControl  bool             `yaml:"key_control"`
	RiskLevel   models.RiskLevel `yaml:"risk_level" validate:"required,oneof=low medium high critical"`
}

type EvidenceSpec struct {
	ObjectiveID string     `yaml:"objective_id" validate:"required"`
	Source      string     `yaml:"source"`
	Description string     `yaml:"description"`
	Satisfied   bool       `yaml:"satisfied"`
	Weight      float64    `yaml:"weight" validate:"gte=0"`
	CollectedAt *time.Time `yaml:"collected_at"`
}

type SubjectSpec struct {
	ID          string      `yaml:"id" validate:"required"`
	Username    string      `yaml:"username"`
	Name        string      `yaml:"name"`
	Department  string      `yaml:"department"`
	RiskScore   float64     `yaml:"risk_score"`
	LastLoginAt *time.Time  `yaml:"last_login_at"`
	Grants      []GrantSpec `yaml:"grants" validate:"dive"`
}

type GrantSpec struct {
	Role          string `yaml:"role" validate:"required"`
	Justification string `yaml:"justification"`
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}

// Validate делает строгую проверку для наполнения БД: структура плюс ссылки на роли
// и цели. Офлайн-проверки работают и с некорректным каталогом.
func (c *Catalog) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	roles := c.roleIndex()
	for _, r := range c.Rules {
		for _, code := range []string{r.RoleA, r.RoleB} {
			if _, ok := roles[code]; !ok {
				return fmt.Errorf("rule %s: %w %q", r.ID, ErrUnknownRole, code)
			}
		}
	}
	for _, s := range c.Subjects {
		for _, g := range s.Grants {
			if _, ok := roles[g.Role]; !ok {
				return fmt.Errorf("subject %s: %w %q", s.ID, ErrUnknownRole, g.Role)
			}
		}
	}

	objectives := make(map[string]bool)
	for _, f := range c.Frameworks {
		for _, o := range f.Objectives {
			if objectives[o.ID] {
				return fmt.Errorf("duplicate objective id %q", o.ID)
			}
			objectives[o.ID] = true
		}
	}
	for _, e := range c.Evidence {
		if !objectives[e.ObjectiveID] {
			return fmt.Errorf("evidence references unknown objective %q", e.ObjectiveID)
		}
	}
	return nil
}

func (c *Catalog) roleIndex() map[string]violations.Role {
	idx := make(map[string]violations.Role, len(c.Roles))
	for _, r := range c.Roles {
		idx[r.Code] = r
	}
	return idx
}

func (c *Catalog) RuleSet() violations.RuleSet {
	return violations.RuleSet{Rules: c.Rules}
}

// SubjectList: снимки для движка нарушений. Неизвестная роль превращается
// в назначение без уровня риска, и движок учтёт его как пропущенное.
func (c *Catalog) SubjectList() []violations.Subject {
	roles := c.roleIndex()
	out := make([]violations.Subject, 0, len(c.Subjects))
	for _, s := range c.Subjects {
		subj := violations.Subject{
			ID:          s.ID,
			Name:        s.Name,
			Department:  s.Department,
			LastLoginAt: s.LastLoginAt,
		}
		for _, g := range s.Grants {
			role, ok := roles[g.Role]
			if !ok {
				role = violations.Role{Code: g.Role}
			}
			subj.Grants = append(subj.Grants, violations.Grant{Role: role, Justification: g.Justification})
		}
		out = append(out, subj)
	}
	return out
}

func (c *Catalog) FrameworkList() []models.Framework {
	out := make([]models.Framework, 0, len(c.Frameworks))
	for _, f := range c.Frameworks {
		fw := models.Framework{ID: f.ID, Name: f.Name}
		for _, o := range f.Objectives {
			fw.Objectives = append(fw.Objectives, models.ControlObjective{
				ID:           o.ID,
				FrameworkID:  f.ID,
				ReferenceID:  o.ReferenceID,
				Title:        o.Title,
				Category:     o.Category,
				IsKeyControl: o.KeyControl,
				RiskLevel:    o.RiskLevel,
			})
		}
		out = append(out, fw)
	}
	return out
}

func (c *Catalog) Framework(id string) (models.Framework, bool) {
	for _, fw := range c.FrameworkList() {
		if fw.ID == id {
			return fw, true
		}
	}
	return models.Framework{}, false
}

func (c *Catalog) EvidenceRecords() []models.Evidence {
	out := make([]models.Evidence, 0, len(c.Evidence))
	for _, e := range c.Evidence {
		rec := models.Evidence{
			ObjectiveID: e.ObjectiveID,
			Source:      e.Source,
			Description: e.Description,
			Satisfied:   e.Satisfied,
			Weight:      e.Weight,
		}
		if e.CollectedAt != nil {
			rec.CollectedAt = *e.CollectedAt
		}
		out = append(out, rec)
	}
	return out
}

// EvidenceProvider: статический источник свидетельств из каталога.
func (c *Catalog) EvidenceProvider() assessment.EvidenceProvider {
	byObjective := make(map[string][]models.Evidence)
	for _, e := range c.EvidenceRecords() {
		byObjective[e.ObjectiveID] = append(byObjective[e.ObjectiveID], e)
	}
	return assessment.EvidenceProviderFunc(func(_ context.Context, objectiveID string) ([]models.Evidence, error) {
		return byObjective[objectiveID], nil
	})
}

package assessment

import (
	"math"
	"sort"

	"access-governance/internal/models"
)

// Latest: последний (по AssessedAt) фактически проведённый результат по каждой
// цели фреймворка. not_assessed и результаты по чужим целям не учитываются.
// При равном времени побеждает результат, идущий в срезе позже.
func Latest(fw models.Framework, results []models.AssessmentResult) map[string]models.AssessmentResult {
	owned := make(map[string]bool, len(fw.Objectives))
	for _, o := range fw.Objectives {
		owned[o.ID] = true
	}

	latest := make(map[string]models.AssessmentResult)
	for _, r := range results {
		if !owned[r.ObjectiveID] || r.Status == models.StatusNotAssessed {
			continue
		}
		if prev, ok := latest[r.ObjectiveID]; ok && r.AssessedAt.Before(prev.AssessedAt) {
			continue
		}
		latest[r.ObjectiveID] = r
	}
	return latest
}

// Score: оценка соответствия фреймворка.
type Score struct {
	Value    float64 `json:"value"`   // полная точность
	Percent  int     `json:"percent"` // для отображения
	Assessed int     `json:"assessed"`
	Total    int     `json:"total"`
}

// FrameworkScore: среднее последних оценок по целям, оценённым хотя бы раз.
// Неоценённые цели в среднее не входят (а не считаются нулём).
func FrameworkScore(fw models.Framework, results []models.AssessmentResult) Score {
	latest := Latest(fw, results)
	s := Score{Assessed: len(latest), Total: len(fw.Objectives)}
	if len(latest) == 0 {
		return s
	}

	var sum float64
	for _, r := range latest {
		sum += r.Score
	}
	s.Value = sum / float64(len(latest))
	s.Percent = int(math.Round(s.Value))
	return s
}

type Gap struct {
	Objective models.ControlObjective `json:"objective"`
	Result    models.AssessmentResult `json:"result"`
}

// Gaps: цели со статусом non_compliant / partially_compliant, сначала самые
// рискованные, при равенстве по ReferenceID.
func Gaps(fw models.Framework, results []models.AssessmentResult) []Gap {
	latest := Latest(fw, results)

	var gaps []Gap
	for _, o := range fw.Objectives {
		r, ok := latest[o.ID]
		if !ok {
			continue
		}
		if r.Status == models.StatusNonCompliant || r.Status == models.StatusPartiallyCompliant {
			gaps = append(gaps, Gap{Objective: o, Result: r})
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		a, b := gaps[i].Objective, gaps[j].Objective
		if a.RiskLevel.Rank() != b.RiskLevel.Rank() {
			return a.RiskLevel.Rank() > b.RiskLevel.Rank()
		}
		if a.ReferenceID != b.ReferenceID {
			return a.ReferenceID < b.ReferenceID
		}
		return a.ID < b.ID
	})
	return gaps
}

type CategoryCount struct {
	Category string `json:"category"`
	Selected int    `json:"selected"`
	Total    int    `json:"total"`
}

// CategoryCounts: счётчики "выбрано / всего" по категориям, по алфавиту.
func CategoryCounts(fw models.Framework, selected []string) []CategoryCount {
	sel := make(map[string]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}

	idx := make(map[string]int)
	var out []CategoryCount
	for _, o := range fw.Objectives {
		i, ok := idx[o.Category]
		if !ok {
			i = len(out)
			idx[o.Category] = i
			out = append(out, CategoryCount{Category: o.Category})
		}
		out[i].Total++
		if sel[o.ID] {
			out[i].Selected++
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// ToggleCategory выбирает (on=true) или снимает все цели категории.
// Порядок уже выбранных сохраняется, новые добавляются в порядке фреймворка.
func ToggleCategory(fw models.Framework, selected []string, category string, on bool) []string {
	inCategory := make(map[string]bool)
	for _, o := range fw.Objectives {
		if o.Category == category {
			inCategory[o.ID] = true
		}
	}

	out := make([]string, 0, len(selected))
	have := make(map[string]bool, len(selected))
	for _, id := range selected {
		if !on && inCategory[id] {
			continue
		}
		if have[id] {
			continue
		}
		have[id] = true
		out = append(out, id)
	}

	if on {
		for _, o := range fw.Objectives {
			if inCategory[o.ID] && !have[o.ID] {
				have[o.ID] = true
				out = append(out, o.ID)
			}
		}
	}
	return out
}

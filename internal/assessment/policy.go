package assessment

import (
	"fmt"

	"access-governance/internal/models"
)

// Границы статусов по оценке.
const (
	CompliantFrom = 80.0
	PartialFrom   = 40.0
)

// StatusForScore: от 80 compliant, [40,80) partially_compliant, ниже 40 non_compliant.
func StatusForScore(score float64) models.AssessmentStatus {
	switch {
	case score >= CompliantFrom:
		return models.StatusCompliant
	case score >= PartialFrom:
		return models.StatusPartiallyCompliant
	default:
		return models.StatusNonCompliant
	}
}

// BandConsistent проверяет, что статус и оценка согласованы.
func BandConsistent(status models.AssessmentStatus, score float64) bool {
	switch status {
	case models.StatusCompliant:
		return score >= CompliantFrom && score <= 100
	case models.StatusPartiallyCompliant:
		return score >= PartialFrom && score < CompliantFrom
	case models.StatusNonCompliant:
		return score >= 0 && score < PartialFrom
	case models.StatusNotAssessed:
		return score == 0
	default:
		return false
	}
}

// Evaluation: то, что политика говорит о контрольной цели. Статус из оценки
// выводит сам Assessor, поэтому политика не может нарушить шкалу.
type Evaluation struct {
	Score           float64
	Findings        []string
	Gaps            []string
	Recommendations []string
}

// Policy: подключаемая стратегия оценки контрольной цели по свидетельствам.
type Policy interface {
	Evaluate(obj models.ControlObjective, evidence []models.Evidence) Evaluation
}

type PolicyFunc func(obj models.ControlObjective, evidence []models.Evidence) Evaluation

func (f PolicyFunc) Evaluate(obj models.ControlObjective, evidence []models.Evidence) Evaluation {
	return f(obj, evidence)
}

// WeightedEvidencePolicy: доля веса выполненных свидетельств, в процентах.
// Ключевой контроль с хотя бы одним невыполненным свидетельством не может
// получить compliant: оценка ограничивается KeyControlCap.
type WeightedEvidencePolicy struct {
	KeyControlCap float64
}

func NewWeightedEvidencePolicy() WeightedEvidencePolicy {
	return WeightedEvidencePolicy{KeyControlCap: CompliantFrom - 1}
}

func (p WeightedEvidencePolicy) Evaluate(obj models.ControlObjective, evidence []models.Evidence) Evaluation {
	var ev Evaluation
	var total, passed float64
	failed := 0

	for _, e := range evidence {
		w := e.Weight
		if w <= 0 {
			w = 1
		}
		total += w
		if e.Satisfied {
			passed += w
			continue
		}
		failed++
		ev.Findings = append(ev.Findings, fmt.Sprintf("%s: %s", e.Source, e.Description))
		ev.Gaps = append(ev.Gaps, fmt.Sprintf("%s: %s", obj.ReferenceID, e.Description))
	}
	if total == 0 {
		return ev
	}

	ev.Score = passed * 100 / total
	if obj.IsKeyControl && failed > 0 && ev.Score > p.KeyControlCap {
		ev.Score = p.KeyControlCap
	}

	switch StatusForScore(ev.Score) {
	case models.StatusPartiallyCompliant:
		ev.Recommendations = append(ev.Recommendations,
			fmt.Sprintf("Remediate %d open finding(s) for %s before the next review cycle", failed, obj.ReferenceID))
	case models.StatusNonCompliant:
		ev.Recommendations = append(ev.Recommendations,
			fmt.Sprintf("Escalate %s to the control owner: control is not operating effectively", obj.ReferenceID))
	}
	if obj.IsKeyControl && failed > 0 {
		ev.Recommendations = append(ev.Recommendations,
			fmt.Sprintf("Key control %s requires retesting after remediation", obj.ReferenceID))
	}
	return ev
}

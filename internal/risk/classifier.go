// Package risk переводит числовые оценки риска в уровни и считает распределения.
package risk

import (
	"math"

	"access-governance/internal/models"
)

// Границы 4-уровневой шкалы. Нижняя граница каждого интервала включительно.
const (
	MediumFrom   = 25.0
	HighFrom     = 50.0
	CriticalFrom = 75.0
)

// Clamp приводит оценку к [0,100]. NaN считается нулём.
func Clamp(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

// Classify: [0,25) low, [25,50) medium, [50,75) high, [75,100] critical.
// Значения вне диапазона обрезаются, ошибок нет.
func Classify(score float64) models.RiskLevel {
	score = Clamp(score)
	switch {
	case score >= CriticalFrom:
		return models.RiskCritical
	case score >= HighFrom:
		return models.RiskHigh
	case score >= MediumFrom:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// Distribution: количество и доля (в процентах) по каждому уровню.
type Distribution struct {
	Counts      map[models.RiskLevel]int     `json:"counts"`
	Percentages map[models.RiskLevel]float64 `json:"percentages"`
	Total       int                          `json:"total"`
	Invalid     int                          `json:"invalid,omitempty"` // нераспознанные уровни, в проценты не входят
	MeanScore   float64                      `json:"mean_score,omitempty"`
}

func newDistribution() Distribution {
	d := Distribution{
		Counts:      make(map[models.RiskLevel]int, len(models.RiskLevels)),
		Percentages: make(map[models.RiskLevel]float64, len(models.RiskLevels)),
	}
	for _, l := range models.RiskLevels {
		d.Counts[l] = 0
		d.Percentages[l] = 0
	}
	return d
}

// Aggregate считает распределение уровней. Пустой вход даёт нули.
func Aggregate(levels []models.RiskLevel) Distribution {
	d := newDistribution()
	for _, l := range levels {
		if !l.Valid() {
			d.Invalid++
			continue
		}
		d.Counts[l]++
		d.Total++
	}
	if d.Total == 0 {
		return d
	}
	for _, l := range models.RiskLevels {
		d.Percentages[l] = float64(d.Counts[l]) * 100 / float64(d.Total)
	}
	return d
}

// AggregateScores классифицирует оценки и агрегирует уровни, плюс средняя оценка.
func AggregateScores(scores []float64) Distribution {
	levels := make([]models.RiskLevel, 0, len(scores))
	var sum float64
	for _, s := range scores {
		s = Clamp(s)
		sum += s
		levels = append(levels, Classify(s))
	}
	d := Aggregate(levels)
	if len(scores) > 0 {
		d.MeanScore = sum / float64(len(scores))
	}
	return d
}

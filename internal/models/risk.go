package models

import "strings"

// RiskLevel: дискретный уровень риска, упорядочен low < medium < high < critical.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevels: все уровни по возрастанию.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// Rank возвращает порядковый номер уровня (0..3), -1 для неизвестного значения.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return -1
	}
}

func (l RiskLevel) Valid() bool {
	return l.Rank() >= 0
}

func (l RiskLevel) String() string {
	return string(l)
}

// ParseRiskLevel принимает значения в любом регистре ("HIGH", "high").
func ParseRiskLevel(s string) (RiskLevel, bool) {
	for _, l := range RiskLevels {
		if strings.EqualFold(string(l), strings.TrimSpace(s)) {
			return l, true
		}
	}
	return "", false
}

// MaxRiskLevel: наибольший из валидных уровней; пустой результат, если валидных нет.
func MaxRiskLevel(levels ...RiskLevel) RiskLevel {
	var out RiskLevel
	for _, l := range levels {
		if l.Rank() > out.Rank() {
			out = l
		}
	}
	return out
}

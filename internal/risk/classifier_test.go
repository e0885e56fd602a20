package risk

import (
	"math"
	"testing"

	"access-governance/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  models.RiskLevel
	}{
		{0, models.RiskLow},
		{24.99, models.RiskLow},
		{25, models.RiskMedium},
		{49.9, models.RiskMedium},
		{50, models.RiskHigh},
		{74.999, models.RiskHigh},
		{75, models.RiskCritical},
		{100, models.RiskCritical},
		{-10, models.RiskLow},
		{250, models.RiskCritical},
		{math.NaN(), models.RiskLow},
		{math.Inf(1), models.RiskCritical},
		{math.Inf(-1), models.RiskLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "Classify(%v)", tt.score)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := Classify(-1)
	for s := -5.0; s <= 105; s += 0.25 {
		cur := Classify(s)
		require.GreaterOrEqual(t, cur.Rank(), prev.Rank(), "score %v", s)
		prev = cur
	}
}

func TestAggregate_Empty(t *testing.T) {
	d := Aggregate(nil)

	assert.Equal(t, 0, d.Total)
	for _, l := range models.RiskLevels {
		assert.Equal(t, 0, d.Counts[l])
		assert.Equal(t, 0.0, d.Percentages[l])
	}
}

func TestAggregate_PercentagesSumTo100(t *testing.T) {
	levels := []models.RiskLevel{
		models.RiskLow, models.RiskLow, models.RiskMedium,
		models.RiskHigh, models.RiskCritical, models.RiskCritical, models.RiskCritical,
	}

	d := Aggregate(levels)

	assert.Equal(t, 7, d.Total)
	assert.Equal(t, 3, d.Counts[models.RiskCritical])
	var sum float64
	for _, p := range d.Percentages {
		sum += p
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
	assert.InDelta(t, 300.0/7, d.Percentages[models.RiskCritical], 1e-9)
}

func TestAggregate_InvalidLevelsReported(t *testing.T) {
	d := Aggregate([]models.RiskLevel{models.RiskHigh, "severe", ""})

	assert.Equal(t, 1, d.Total)
	assert.Equal(t, 2, d.Invalid)
	assert.Equal(t, 100.0, d.Percentages[models.RiskHigh])
}

func TestAggregateScores(t *testing.T) {
	d := AggregateScores([]float64{10, 30, 60, 90, 150})

	assert.Equal(t, 5, d.Total)
	assert.Equal(t, 2, d.Counts[models.RiskCritical])
	assert.InDelta(t, (10+30+60+90+100)/5.0, d.MeanScore, 1e-9)
}

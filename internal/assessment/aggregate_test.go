package assessment

import (
	"testing"
	"time"

	"access-governance/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id string, status models.AssessmentStatus, score float64, at time.Time) models.AssessmentResult {
	return models.AssessmentResult{ObjectiveID: id, Status: status, Score: score, AssessedAt: at}
}

func TestFrameworkScore_ExcludesUnassessed(t *testing.T) {
	fw := testFramework("A", "B", "C")
	results := []models.AssessmentResult{
		result("A", models.StatusCompliant, 100, fixedNow),
		result("B", models.StatusNonCompliant, 0, fixedNow),
	}

	s := FrameworkScore(fw, results)

	assert.Equal(t, 50.0, s.Value)
	assert.Equal(t, 50, s.Percent)
	assert.Equal(t, 2, s.Assessed)
	assert.Equal(t, 3, s.Total)
}

func TestFrameworkScore_LatestWins(t *testing.T) {
	fw := testFramework("A", "B")
	results := []models.AssessmentResult{
		result("A", models.StatusNonCompliant, 10, fixedNow.Add(-time.Hour)),
		result("A", models.StatusCompliant, 90, fixedNow),
		result("A", models.StatusNotAssessed, 0, fixedNow.Add(time.Hour)),
		result("B", models.StatusPartiallyCompliant, 45.5, fixedNow),
		result("foreign", models.StatusCompliant, 100, fixedNow),
	}

	s := FrameworkScore(fw, results)

	assert.InDelta(t, 67.75, s.Value, 1e-9)
	assert.Equal(t, 68, s.Percent)
	assert.Equal(t, 2, s.Assessed)
}

func TestFrameworkScore_NothingAssessed(t *testing.T) {
	s := FrameworkScore(testFramework("A"), nil)

	assert.Zero(t, s.Value)
	assert.Zero(t, s.Assessed)
	assert.Equal(t, 1, s.Total)
}

func TestGaps_Ordering(t *testing.T) {
	fw := models.Framework{ID: "iso", Objectives: []models.ControlObjective{
		{ID: "1", ReferenceID: "A.9.2", RiskLevel: models.RiskMedium},
		{ID: "2", ReferenceID: "A.12.4", RiskLevel: models.RiskCritical},
		{ID: "3", ReferenceID: "A.9.1", RiskLevel: models.RiskMedium},
		{ID: "4", ReferenceID: "A.5.1", RiskLevel: models.RiskCritical},
		{ID: "5", ReferenceID: "A.8.1", RiskLevel: models.RiskHigh},
		{ID: "6", ReferenceID: "A.6.1", RiskLevel: models.RiskCritical},
	}}
	results := []models.AssessmentResult{
		result("1", models.StatusPartiallyCompliant, 60, fixedNow),
		result("2", models.StatusNonCompliant, 10, fixedNow),
		result("3", models.StatusNonCompliant, 20, fixedNow),
		result("4", models.StatusPartiallyCompliant, 50, fixedNow),
		result("5", models.StatusCompliant, 95, fixedNow),
	}

	gaps := Gaps(fw, results)

	require.Len(t, gaps, 4)
	var refs []string
	for _, g := range gaps {
		refs = append(refs, g.Objective.ReferenceID)
	}
	assert.Equal(t, []string{"A.12.4", "A.5.1", "A.9.1", "A.9.2"}, refs)
}

func TestCategoryCounts(t *testing.T) {
	fw := models.Framework{Objectives: []models.ControlObjective{
		{ID: "a1", Category: "Access"},
		{ID: "a2", Category: "Access"},
		{ID: "c1", Category: "Change"},
	}}

	counts := CategoryCounts(fw, []string{"a2", "c1", "unknown"})

	assert.Equal(t, []CategoryCount{
		{Category: "Access", Selected: 1, Total: 2},
		{Category: "Change", Selected: 1, Total: 1},
	}, counts)
}

func TestToggleCategory(t *testing.T) {
	fw := models.Framework{Objectives: []models.ControlObjective{
		{ID: "a1", Category: "Access"},
		{ID: "a2", Category: "Access"},
		{ID: "c1", Category: "Change"},
	}}

	selected := ToggleCategory(fw, []string{"c1", "a2"}, "Access", true)
	assert.Equal(t, []string{"c1", "a2", "a1"}, selected)
	assert.Equal(t, 2, CategoryCounts(fw, selected)[0].Selected)

	selected = ToggleCategory(fw, selected, "Access", false)
	assert.Equal(t, []string{"c1"}, selected)
	assert.Equal(t, 0, CategoryCounts(fw, selected)[0].Selected)
}

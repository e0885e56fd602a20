package main

import (
	"fmt"
	"strings"

	"access-governance/internal/models"
	"access-governance/internal/risk"

	"github.com/pterm/pterm"
)

func levelLabel(l models.RiskLevel) string {
	switch l {
	case models.RiskCritical:
		return pterm.FgRed.Sprint("CRITICAL")
	case models.RiskHigh:
		return pterm.FgRed.Sprint("HIGH")
	case models.RiskMedium:
		return pterm.FgYellow.Sprint("MEDIUM")
	case models.RiskLow:
		return pterm.FgBlue.Sprint("LOW")
	default:
		return string(l)
	}
}

func statusLabel(s models.AssessmentStatus) string {
	switch s {
	case models.StatusCompliant:
		return pterm.FgGreen.Sprint(s)
	case models.StatusPartiallyCompliant:
		return pterm.FgYellow.Sprint(s)
	case models.StatusNonCompliant:
		return pterm.FgRed.Sprint(s)
	default:
		return pterm.FgGray.Sprint(s)
	}
}

func printDistribution(title string, d risk.Distribution) {
	pterm.DefaultSection.Println(title)

	rows := [][]string{{"Level", "Count", "Share"}}
	for _, l := range models.RiskLevels {
		rows = append(rows, []string{levelLabel(l), fmt.Sprint(d.Counts[l]), fmt.Sprintf("%.1f%%", d.Percentages[l])})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if d.Invalid > 0 {
		pterm.Warning.Printf("%d unrecognised levels ignored\n", d.Invalid)
	}
	if d.Total > 0 && d.MeanScore > 0 {
		pterm.Info.Printf("Mean score: %.1f\n", d.MeanScore)
	}
}

func printViolations(vs []models.Violation) {
	if len(vs) == 0 {
		pterm.Success.Println("No access violations found.")
		return
	}

	pterm.Warning.Printf("Found %d violations:\n\n", len(vs))
	rows := [][]string{{"Severity", "Type", "Subject", "Department", "Rule", "Systems"}}
	for _, v := range vs {
		rows = append(rows, []string{
			levelLabel(v.Severity),
			pterm.FgCyan.Sprint(v.Type.Label()),
			v.SubjectName,
			v.Department,
			v.RuleCode,
			strings.Join(v.Systems, ", "),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

package violations

import (
	"io"
	"strings"
	"time"

	"access-governance/internal/models"
)

// CSVHeader: формат выгрузки, на него завязаны внешние отчёты.
var CSVHeader = []string{
	"ID", "User", "User ID", "Department", "Type", "Rule",
	"Risk Level", "Status", "Detected Date", "Systems", "Mitigation",
}

// ExportFilename: risk_violations_<YYYY-MM-DD>.csv
func ExportFilename(at time.Time) string {
	return "risk_violations_" + at.Format("2006-01-02") + ".csv"
}

// WriteCSV пишет заголовок и по строке на нарушение. Все поля в кавычках.
func WriteCSV(w io.Writer, vs []models.Violation) error {
	if _, err := io.WriteString(w, csvLine(CSVHeader)); err != nil {
		return err
	}
	for _, v := range vs {
		rule := v.RuleName
		if rule == "" {
			rule = v.RuleCode
		}
		row := []string{
			v.ID,
			v.SubjectName,
			v.SubjectID,
			v.Department,
			v.Type.Label(),
			rule,
			string(v.Severity),
			string(v.Status),
			v.DetectedAt.Format("2006-01-02"),
			strings.Join(v.Systems, "; "),
			v.Mitigation,
		}
		if _, err := io.WriteString(w, csvLine(row)); err != nil {
			return err
		}
	}
	return nil
}

func csvLine(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	return b.String()
}

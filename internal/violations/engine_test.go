package violations

import (
	"testing"
	"time"

	"access-governance/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(Config{Now: func() time.Time { return testNow }})
}

func daysAgo(n int) *time.Time {
	t := testNow.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

var (
	apClerk = Role{Code: "AP_CLERK", Name: "AP Clerk", System: "SAP", RiskLevel: models.RiskLow}
	glAcct  = Role{Code: "GL_ACCOUNTANT", Name: "GL Accountant", System: "SAP", RiskLevel: models.RiskHigh}
	vendor  = Role{Code: "VENDOR_MAINT", Name: "Vendor Master", System: "Oracle", RiskLevel: models.RiskMedium}
)

func byType(vs []models.Violation, vt models.ViolationType) []models.Violation {
	var out []models.Violation
	for _, v := range vs {
		if v.Type == vt {
			out = append(out, v)
		}
	}
	return out
}

func TestDetect_SoDConflictScenario(t *testing.T) {
	e := newTestEngine()
	subject := Subject{
		ID:          "u-1",
		Name:        "Jane Doe",
		LastLoginAt: daysAgo(1),
		Grants: []Grant{
			{Role: apClerk},
			{Role: glAcct, Justification: "month-end close"},
		},
	}
	rules := RuleSet{Rules: []Rule{{ID: "SOD-001", Name: "Invoice vs ledger", RoleA: "AP_CLERK", RoleB: "GL_ACCOUNTANT"}}}

	res := e.Detect(subject, rules)

	require.Len(t, res.Violations, 1)
	v := res.Violations[0]
	assert.Equal(t, models.ViolationSoDConflict, v.Type)
	assert.Equal(t, models.RiskHigh, v.Severity)
	assert.Equal(t, models.ViolationOpen, v.Status)
	assert.Equal(t, "SOD-001", v.RuleCode)
	assert.Equal(t, []string{"SAP"}, v.Systems)
	assert.Zero(t, res.Skipped)
}

func TestDetect_RuleSeverityRaisesFloor(t *testing.T) {
	e := newTestEngine()
	subject := Subject{ID: "u-1", LastLoginAt: daysAgo(1), Grants: []Grant{{Role: apClerk}, {Role: vendor}}}
	rules := RuleSet{Rules: []Rule{{ID: "SOD-2", RoleA: "AP_CLERK", RoleB: "VENDOR_MAINT", Severity: models.RiskCritical}}}

	res := e.Detect(subject, rules)

	require.Len(t, res.Violations, 1)
	assert.Equal(t, models.RiskCritical, res.Violations[0].Severity)
	assert.Equal(t, []string{"Oracle", "SAP"}, res.Violations[0].Systems)
}

func TestDetect_OneViolationPerRule(t *testing.T) {
	e := newTestEngine()
	subject := Subject{ID: "u-1", LastLoginAt: daysAgo(1), Grants: []Grant{{Role: apClerk}, {Role: glAcct, Justification: "ok"}}}
	rules := RuleSet{Rules: []Rule{
		{ID: "SOD-A", RoleA: "AP_CLERK", RoleB: "GL_ACCOUNTANT"},
		{ID: "SOD-B", RoleA: "GL_ACCOUNTANT", RoleB: "AP_CLERK"},
		{ID: "SOD-A", RoleA: "AP_CLERK", RoleB: "GL_ACCOUNTANT"},
		{ID: "SOD-OFF", RoleA: "AP_CLERK", RoleB: "GL_ACCOUNTANT", Disabled: true},
	}}

	res := e.Detect(subject, rules)

	sod := byType(res.Violations, models.ViolationSoDConflict)
	require.Len(t, sod, 2)
	assert.NotEqual(t, sod[0].ID, sod[1].ID)
}

func TestDetect_ExcessiveAndSensitiveAccess(t *testing.T) {
	e := newTestEngine()
	payroll := Role{Code: "PAYROLL_ADMIN", System: "Workday", RiskLevel: models.RiskMedium, Sensitive: true}
	dba := Role{Code: "DBA", System: "Oracle", RiskLevel: models.RiskCritical}
	subject := Subject{
		ID:          "u-2",
		LastLoginAt: daysAgo(2),
		Grants: []Grant{
			{Role: apClerk},
			{Role: payroll},
			{Role: dba},
			{Role: glAcct, Justification: "approved by CFO"},
		},
	}

	res := e.Detect(subject, RuleSet{})

	sensitive := byType(res.Violations, models.ViolationSensitiveAccess)
	require.Len(t, sensitive, 1)
	assert.Equal(t, "PAYROLL_ADMIN", sensitive[0].RuleCode)
	assert.Equal(t, models.RiskMedium, sensitive[0].Severity)

	excessive := byType(res.Violations, models.ViolationExcessiveAccess)
	require.Len(t, excessive, 1)
	assert.Equal(t, "DBA", excessive[0].RuleCode)
	assert.Equal(t, models.RiskCritical, excessive[0].Severity)
}

func TestDormantSeverity_Buckets(t *testing.T) {
	tests := []struct {
		days    int
		want    models.RiskLevel
		dormant bool
	}{
		{29, "", false},
		{30, models.RiskLow, true},
		{59, models.RiskLow, true},
		{60, models.RiskMedium, true},
		{89, models.RiskMedium, true},
		{90, models.RiskHigh, true},
		{179, models.RiskHigh, true},
		{180, models.RiskCritical, true},
		{181, models.RiskCritical, true},
	}

	for _, tt := range tests {
		sev, ok := DormantSeverity(tt.days)
		assert.Equal(t, tt.dormant, ok, "days=%d", tt.days)
		assert.Equal(t, tt.want, sev, "days=%d", tt.days)
	}
}

func TestDetect_DormantAccount(t *testing.T) {
	e := newTestEngine()

	for _, tt := range []struct {
		days int
		want models.RiskLevel
	}{
		{29, ""},
		{30, models.RiskLow},
		{60, models.RiskMedium},
		{90, models.RiskHigh},
		{180, models.RiskCritical},
	} {
		res := e.Detect(Subject{ID: "u-3", LastLoginAt: daysAgo(tt.days)}, RuleSet{})
		dormant := byType(res.Violations, models.ViolationDormantAccount)
		if tt.want == "" {
			assert.Empty(t, dormant, "days=%d", tt.days)
			continue
		}
		require.Len(t, dormant, 1, "days=%d", tt.days)
		assert.Equal(t, tt.want, dormant[0].Severity, "days=%d", tt.days)
	}
}

func TestDetect_DormantThresholdConfigurable(t *testing.T) {
	e := NewEngine(Config{DormantAfterDays: 90, Now: func() time.Time { return testNow }})

	res := e.Detect(Subject{ID: "u-3", LastLoginAt: daysAgo(75)}, RuleSet{})
	assert.Empty(t, byType(res.Violations, models.ViolationDormantAccount))

	res = e.Detect(Subject{ID: "u-3", LastLoginAt: daysAgo(95)}, RuleSet{})
	require.Len(t, byType(res.Violations, models.ViolationDormantAccount), 1)
}

func TestDetect_NeverLoggedInAlwaysFlagged(t *testing.T) {
	e := NewEngine(Config{DormantAfterDays: 365, Now: func() time.Time { return testNow }})

	res := e.Detect(Subject{ID: "u-4"}, RuleSet{})

	dormant := byType(res.Violations, models.ViolationDormantAccount)
	require.Len(t, dormant, 1)
	assert.Equal(t, models.RiskHigh, dormant[0].Severity)
}

func TestDetect_MalformedRecordsSkipped(t *testing.T) {
	e := newTestEngine()
	subject := Subject{
		ID:          "u-5",
		LastLoginAt: daysAgo(1),
		Grants: []Grant{
			{Role: apClerk},
			{Role: Role{Code: "", RiskLevel: models.RiskLow}},
			{Role: Role{Code: "BROKEN", RiskLevel: "severe"}},
			{Role: glAcct, Justification: "ok"},
		},
	}
	rules := RuleSet{Rules: []Rule{
		{ID: "", RoleA: "AP_CLERK", RoleB: "GL_ACCOUNTANT"},
		{ID: "SELF", RoleA: "AP_CLERK", RoleB: "AP_CLERK"},
		{ID: "BAD-SEV", RoleA: "AP_CLERK", RoleB: "GL_ACCOUNTANT", Severity: "extreme"},
		{ID: "SOD-OK", RoleA: "AP_CLERK", RoleB: "GL_ACCOUNTANT"},
	}}

	res := e.Detect(subject, rules)

	assert.Equal(t, 5, res.Skipped)
	assert.Len(t, res.Problems, 5)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "SOD-OK", res.Violations[0].RuleCode)
}

func TestDetect_MalformedSubject(t *testing.T) {
	res := newTestEngine().Detect(Subject{Name: "no id"}, RuleSet{})

	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Violations)
}

func TestDetect_Idempotent(t *testing.T) {
	subject := Subject{
		ID:          "u-6",
		Name:        "John",
		LastLoginAt: daysAgo(120),
		Grants:      []Grant{{Role: apClerk}, {Role: glAcct}, {Role: vendor}},
	}
	rules := RuleSet{Rules: []Rule{
		{ID: "SOD-1", RoleA: "AP_CLERK", RoleB: "GL_ACCOUNTANT"},
		{ID: "SOD-2", RoleA: "AP_CLERK", RoleB: "VENDOR_MAINT"},
	}}

	first := newTestEngine().Detect(subject, rules)
	later := NewEngine(Config{Now: func() time.Time { return testNow.Add(time.Hour) }}).Detect(subject, rules)

	require.NotEmpty(t, first.Violations)
	require.Len(t, later.Violations, len(first.Violations))
	for i := range first.Violations {
		a, b := first.Violations[i], later.Violations[i]
		a.DetectedAt, a.UpdatedAt = time.Time{}, time.Time{}
		b.DetectedAt, b.UpdatedAt = time.Time{}, time.Time{}
		assert.Equal(t, a, b)
	}
}

func TestDetectAll_MalformedRuleCountedOnce(t *testing.T) {
	subjects := []Subject{
		{ID: "u-1", LastLoginAt: daysAgo(1), Grants: []Grant{{Role: apClerk}, {Role: glAcct, Justification: "ok"}}},
		{ID: "u-2", LastLoginAt: daysAgo(1), Grants: []Grant{{Role: apClerk}}},
		{ID: "u-3", LastLoginAt: daysAgo(1), Grants: []Grant{{Role: apClerk}, {Role: glAcct, Justification: "ok"}}},
	}
	rules := RuleSet{Rules: []Rule{
		{ID: "R1", RoleA: "AP_CLERK", RoleB: "GL_ACCOUNTANT"},
		{ID: "BAD", RoleA: "AP_CLERK", RoleB: "AP_CLERK"},
	}}

	res := newTestEngine().DetectAll(subjects, rules)

	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Problems, 1)
	assert.Contains(t, res.Problems[0], "BAD")
	assert.Len(t, byType(res.Violations, models.ViolationSoDConflict), 2)
}

func TestDetectAll_MalformedSubjectDoesNotStopBatch(t *testing.T) {
	subjects := []Subject{
		{Name: "no id"},
		{ID: "u-2", LastLoginAt: daysAgo(1), Grants: []Grant{{Role: apClerk}, {Role: glAcct, Justification: "ok"}}},
	}
	rules := RuleSet{Rules: []Rule{{ID: "R1", RoleA: "AP_CLERK", RoleB: "GL_ACCOUNTANT"}}}

	res := newTestEngine().DetectAll(subjects, rules)

	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "u-2", res.Violations[0].SubjectID)
}

func TestPrepareRules(t *testing.T) {
	rules := RuleSet{Rules: []Rule{
		{ID: "R1", RoleA: "A", RoleB: "B"},
		{ID: "R1", RoleA: "C", RoleB: "D"},
		{ID: "OFF", RoleA: "A", RoleB: "C", Disabled: true},
		{ID: "", RoleA: "A", RoleB: "B"},
	}}

	prepared, res := newTestEngine().PrepareRules(rules)

	require.Len(t, prepared.Rules, 1)
	assert.Equal(t, "B", prepared.Rules[0].RoleB)
	assert.Equal(t, 1, res.Skipped)
}

package violations

import (
	"sort"
	"time"

	"access-governance/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultDormantAfterDays = 30
	day                     = 24 * time.Hour
)

type Config struct {
	// DormantAfterDays: после скольких дней без входа учётка считается неактивной.
	DormantAfterDays int
	// NeverLoggedInSeverity: критичность для тех, кто ни разу не входил.
	NeverLoggedInSeverity models.RiskLevel
	Now                   func() time.Time
}

type Engine struct {
	cfg      Config
	validate *validator.Validate
}

func NewEngine(cfg Config) *Engine {
	if cfg.DormantAfterDays <= 0 {
		cfg.DormantAfterDays = DefaultDormantAfterDays
	}
	if !cfg.NeverLoggedInSeverity.Valid() {
		cfg.NeverLoggedInSeverity = models.RiskHigh
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{cfg: cfg, validate: validator.New()}
}

// DormantSeverity: критичность по числу дней без входа.
// Корзины: [30,60) low, [60,90) medium, [90,180) high, от 180 critical.
// Меньше 30 дней, не неактивна (ok=false).
func DormantSeverity(days int) (models.RiskLevel, bool) {
	switch {
	case days >= 180:
		return models.RiskCritical, true
	case days >= 90:
		return models.RiskHigh, true
	case days >= 60:
		return models.RiskMedium, true
	case days >= 30:
		return models.RiskLow, true
	default:
		return "", false
	}
}

// Detect проверяет одного субъекта. Некорректные назначения и правила
// пропускаются и учитываются в Result.Skipped, проверка продолжается.
func (e *Engine) Detect(subject Subject, rules RuleSet) Result {
	var res Result
	if err := e.validate.Struct(subject); err != nil {
		res.skip("subject %q: %v", subject.ID, err)
		return res
	}

	prepared, rr := e.PrepareRules(rules)
	e.detect(subject, prepared.Rules, &res)
	res.Skipped += rr.Skipped
	res.Problems = append(res.Problems, rr.Problems...)
	return res
}

// DetectAll проверяет пачку субъектов по одному набору правил. Правила
// проверяются один раз, так что некорректное правило считается один раз,
// а не по разу на субъекта.
func (e *Engine) DetectAll(subjects []Subject, rules RuleSet) Result {
	prepared, res := e.PrepareRules(rules)
	for _, s := range subjects {
		if err := e.validate.Struct(s); err != nil {
			res.skip("subject %q: %v", s.ID, err)
			continue
		}
		e.detect(s, prepared.Rules, &res)
	}
	return res
}

// PrepareRules оставляет корректные включённые правила, повторы ID отбрасывает.
// Некорректные правила учитываются в Result.Skipped.
func (e *Engine) PrepareRules(rules RuleSet) (RuleSet, Result) {
	var (
		res  Result
		out  RuleSet
		seen = make(map[string]bool)
	)
	for i, r := range rules.Rules {
		if err := e.validate.Struct(r); err != nil {
			res.skip("rule #%d (%s): %v", i, r.ID, err)
			continue
		}
		if r.Disabled || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out.Rules = append(out.Rules, r)
	}
	return out, res
}

// detect работает по уже отобранным правилам и проверенному субъекту.
func (e *Engine) detect(subject Subject, rules []Rule, res *Result) {
	now := e.cfg.Now()

	held := make(map[string]Role)
	justified := make(map[string]bool)
	var order []string
	for i, g := range subject.Grants {
		if err := e.validate.Struct(g); err != nil {
			res.skip("subject %s grant #%d: %v", subject.ID, i, err)
			continue
		}
		code := g.Role.Code
		if _, ok := held[code]; !ok {
			held[code] = g.Role
			order = append(order, code)
		}
		if g.Justification != "" {
			justified[code] = true
		}
	}

	for _, r := range rules {
		a, okA := held[r.RoleA]
		b, okB := held[r.RoleB]
		if !okA || !okB {
			continue
		}

		name := r.Name
		if name == "" {
			name = a.Code + " / " + b.Code
		}
		res.Violations = append(res.Violations, e.newViolation(subject, now,
			models.ViolationSoDConflict, r.ID, name,
			models.MaxRiskLevel(a.RiskLevel, b.RiskLevel, r.Severity),
			systemsOf(a, b)))
	}

	for _, code := range order {
		role := held[code]
		if justified[code] {
			continue
		}

		var vt models.ViolationType
		switch {
		case role.Sensitive:
			vt = models.ViolationSensitiveAccess
		case role.RiskLevel == models.RiskHigh || role.RiskLevel == models.RiskCritical:
			vt = models.ViolationExcessiveAccess
		default:
			continue
		}

		res.Violations = append(res.Violations, e.newViolation(subject, now,
			vt, role.Code, roleName(role), role.RiskLevel, systemsOf(role)))
	}

	if sev, ok := e.dormant(subject, now); ok {
		roles := make([]Role, 0, len(order))
		for _, code := range order {
			roles = append(roles, held[code])
		}
		res.Violations = append(res.Violations, e.newViolation(subject, now,
			models.ViolationDormantAccount, "dormant", "Inactive account", sev, systemsOf(roles...)))
	}
}

func (e *Engine) dormant(subject Subject, now time.Time) (models.RiskLevel, bool) {
	if subject.LastLoginAt == nil || subject.LastLoginAt.IsZero() {
		return e.cfg.NeverLoggedInSeverity, true
	}

	days := int(now.Sub(*subject.LastLoginAt) / day)
	if days < e.cfg.DormantAfterDays {
		return "", false
	}
	if sev, ok := DormantSeverity(days); ok {
		return sev, true
	}
	// порог настроен ниже первой корзины
	return models.RiskLow, true
}

func (e *Engine) newViolation(s Subject, now time.Time, vt models.ViolationType,
	ruleCode, ruleName string, sev models.RiskLevel, systems []string) models.Violation {
	fp := Fingerprint(s.ID, vt, ruleCode)
	return models.Violation{
		ID:          ViolationID(fp, 0),
		Fingerprint: fp,
		SubjectID:   s.ID,
		SubjectName: s.Name,
		Department:  s.Department,
		Type:        vt,
		RuleCode:    ruleCode,
		RuleName:    ruleName,
		Severity:    sev,
		Status:      models.ViolationOpen,
		Systems:     systems,
		DetectedAt:  now,
		UpdatedAt:   now,
	}
}

func roleName(r Role) string {
	if r.Name != "" {
		return r.Name
	}
	return r.Code
}

func systemsOf(roles ...Role) []string {
	set := make(map[string]struct{})
	for _, r := range roles {
		if r.System != "" {
			set[r.System] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

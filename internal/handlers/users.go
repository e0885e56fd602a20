package handlers

import (
	"net/http"
	"time"

	"access-governance/internal/database"
	"access-governance/internal/models"
	"access-governance/internal/risk"

	"github.com/gin-gonic/gin"
)

type userView struct {
	ID          uint             `json:"id"`
	Username    string           `json:"username"`
	FullName    string           `json:"full_name"`
	Department  string           `json:"department"`
	Role        models.UserRole  `json:"role"`
	RiskScore   float64          `json:"risk_score"`
	RiskLevel   models.RiskLevel `json:"risk_level"`
	LastLoginAt *time.Time       `json:"last_login_at"`
	Roles       []string         `json:"business_roles"`
}

func newUserView(u models.User) userView {
	v := userView{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Department:  u.Department,
		Role:        u.Role,
		RiskScore:   risk.Clamp(u.RiskScore),
		RiskLevel:   risk.Classify(u.RiskScore),
		LastLoginAt: u.LastLoginAt,
		Roles:       []string{},
	}
	for _, g := range u.Grants {
		if g.BusinessRole.Code != "" {
			v.Roles = append(v.Roles, g.BusinessRole.Code)
		}
	}
	return v
}

func ListUsers(c *gin.Context) {
	users, err := database.LoadUsers(c.Request.Context())
	if err != nil {
		internalError(c, "failed to load users", err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	render(c, http.StatusOK, gin.H{"users": views})
}

type riskDashboard struct {
	Users            risk.Distribution            `json:"users"`
	OpenViolations   risk.Distribution            `json:"open_violations"`
	ViolationsByType map[string]int               `json:"violations_by_type"`
	ByDepartment     map[string]risk.Distribution `json:"by_department"`
}

// buildRiskDashboard: распределение пользователей по уровню риска и
// незакрытых нарушений по критичности.
func buildRiskDashboard(users []models.User, vs []models.Violation) riskDashboard {
	scores := make([]float64, 0, len(users))
	byDept := make(map[string][]float64)
	for _, u := range users {
		scores = append(scores, u.RiskScore)
		if u.Department != "" {
			byDept[u.Department] = append(byDept[u.Department], u.RiskScore)
		}
	}

	d := riskDashboard{
		Users:            risk.AggregateScores(scores),
		ViolationsByType: make(map[string]int),
		ByDepartment:     make(map[string]risk.Distribution, len(byDept)),
	}
	for dept, s := range byDept {
		d.ByDepartment[dept] = risk.AggregateScores(s)
	}

	var levels []models.RiskLevel
	for _, v := range vs {
		if v.Status.Closed() {
			continue
		}
		levels = append(levels, v.Severity)
		d.ViolationsByType[v.Type.Label()]++
	}
	d.OpenViolations = risk.Aggregate(levels)
	return d
}

func RiskDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	var users []models.User
	if err := database.DB.WithContext(ctx).Find(&users).Error; err != nil {
		internalError(c, "failed to load users", err)
		return
	}

	var vs []models.Violation
	if err := database.DB.WithContext(ctx).
		Where("status IN ?", []models.ViolationStatus{models.ViolationOpen, models.ViolationInReview}).
		Find(&vs).Error; err != nil {
		internalError(c, "failed to load violations", err)
		return
	}

	render(c, http.StatusOK, gin.H{"dashboard": buildRiskDashboard(users, vs)})
}

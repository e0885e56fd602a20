package server

import (
	"net/http"

	"access-governance/internal/assessment"
	"access-governance/internal/config"
	"access-governance/internal/database"
	"access-governance/internal/handlers"
	"access-governance/internal/middleware"
	"access-governance/internal/permissions"
	"access-governance/internal/violations"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("grc_session", store))

	r.Use(middleware.InjectUser())

	vh := &handlers.Violations{
		Engine: violations.NewEngine(violations.Config{DormantAfterDays: cfg.DormantAfterDays}),
	}
	ah := &handlers.Assessments{
		Assessor: assessment.New(nil, assessment.Options{
			Workers:          cfg.AssessmentWorkers,
			ObjectiveTimeout: cfg.AssessmentObjectiveTimeout,
			AssessedBy:       "grc-console",
		}),
		Evidence: database.EvidenceStore{DB: database.DB},
	}

	anyOf := func(perms ...string) gin.HandlerFunc {
		return middleware.RequirePermission(permissions.ModeAny, perms...)
	}
	allOf := func(perms ...string) gin.HandlerFunc {
		return middleware.RequirePermission(permissions.ModeAll, perms...)
	}

	// AUTH
	r.POST("/login", handlers.Login)
	r.POST("/logout", handlers.Logout)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	auth.GET("/me", handlers.Me)
	auth.POST("/authorize", handlers.Authorize)

	// ПОЛЬЗОВАТЕЛИ И РИСК
	auth.GET("/users", allOf(permissions.UsersRead), handlers.ListUsers)
	auth.GET("/dashboard/risk",
		anyOf(permissions.ViolationsRead, permissions.AssessmentsRead),
		handlers.RiskDashboard,
	)

	// НАРУШЕНИЯ
	auth.GET("/violations", allOf(permissions.ViolationsRead), vh.List)
	auth.GET("/violations/export", allOf(permissions.ViolationsRead, permissions.ViolationsExport), vh.Export)
	auth.GET("/violations/:id/history", allOf(permissions.ViolationsRead), vh.History)
	auth.POST("/violations/detect", allOf(permissions.ViolationsManage), vh.DetectAll)
	auth.POST("/users/:id/violations/detect", allOf(permissions.ViolationsManage), vh.DetectUser)
	auth.POST("/violations/:id/status", allOf(permissions.ViolationsManage), vh.UpdateStatus)

	// ОЦЕНКА СООТВЕТСТВИЯ
	auth.GET("/frameworks", allOf(permissions.AssessmentsRead), ah.List)
	auth.GET("/frameworks/:id/summary", allOf(permissions.AssessmentsRead), ah.Summary)
	auth.POST("/frameworks/:id/assessments", allOf(permissions.AssessmentsRun), ah.RunAssessment)

	// АУДИТ
	auth.GET("/audit", allOf(permissions.AuditRead), handlers.ListAuditLogs)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := database.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"access-governance/internal/database"
	"access-governance/internal/metrics"
	"access-governance/internal/middleware"
	"access-governance/internal/models"
	"access-governance/internal/violations"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Violations: обработчики журнала нарушений.
type Violations struct {
	Engine *violations.Engine
}

type violationFilter struct {
	Status   models.ViolationStatus
	Severity models.RiskLevel
	Type     models.ViolationType
	UserID   string
}

// parseViolationFilter разбирает фильтры списка. Пустые значения не фильтруют.
func parseViolationFilter(c *gin.Context) (violationFilter, error) {
	f := violationFilter{
		Status: models.ViolationStatus(c.Query("status")),
		Type:   models.ViolationType(c.Query("type")),
		UserID: c.Query("user_id"),
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, fmt.Errorf("unknown status %q", f.Status)
	}
	if f.Type != "" && !f.Type.Valid() {
		return f, fmt.Errorf("unknown violation type %q", f.Type)
	}
	if s := c.Query("severity"); s != "" {
		lvl, ok := models.ParseRiskLevel(s)
		if !ok {
			return f, fmt.Errorf("unknown severity %q", s)
		}
		f.Severity = lvl
	}
	return f, nil
}

func (f violationFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.UserID != "" {
		q = q.Where("subject_id = ?", f.UserID)
	}
	return q
}

func loadViolations(c *gin.Context) ([]models.Violation, bool) {
	f, err := parseViolationFilter(c)
	if err != nil {
		renderError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}

	var vs []models.Violation
	q := f.apply(database.DB.WithContext(c.Request.Context())).Order("detected_at desc, id asc")
	if err := q.Find(&vs).Error; err != nil {
		internalError(c, "failed to load violations", err)
		return nil, false
	}
	return vs, true
}

func (h *Violations) List(c *gin.Context) {
	vs, ok := loadViolations(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, gin.H{"violations": vs})
}

// History: все записи журнала по тому же условию (субъект + тип + правило).
func (h *Violations) History(c *gin.Context) {
	ctx := c.Request.Context()

	var v models.Violation
	if err := database.DB.WithContext(ctx).First(&v, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderError(c, http.StatusNotFound, "violation not found")
			return
		}
		internalError(c, "failed to load violation", err)
		return
	}

	var history []models.Violation
	if err := database.DB.WithContext(ctx).
		Where("fingerprint = ?", v.Fingerprint).
		Order("generation asc").
		Find(&history).Error; err != nil {
		internalError(c, "failed to load violation history", err)
		return
	}

	render(c, http.StatusOK, gin.H{"violation": v, "history": history})
}

func (h *Violations) DetectAll(c *gin.Context) {
	h.detect(c)
}

func (h *Violations) DetectUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		renderError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	h.detect(c, uint(id))
}

// detect прогоняет движок по пользователям и дописывает журнал.
// Некорректные записи не прерывают прогон и возвращаются в warnings.
func (h *Violations) detect(c *gin.Context, ids ...uint) {
	ctx := c.Request.Context()

	users, err := database.LoadUsers(ctx, ids...)
	if err != nil {
		internalError(c, "failed to load users", err)
		return
	}
	if len(ids) > 0 && len(users) == 0 {
		renderError(c, http.StatusNotFound, "user not found")
		return
	}

	rules, err := database.LoadRuleSet(ctx)
	if err != nil {
		internalError(c, "failed to load sod rules", err)
		return
	}

	subjects := make([]violations.Subject, 0, len(users))
	for _, u := range users {
		subjects = append(subjects, database.SubjectFromUser(u))
	}
	res := h.Engine.DetectAll(subjects, rules)
	detected, skipped, warnings := res.Violations, res.Skipped, res.Problems

	recorded, err := database.RecordDetections(ctx, detected)
	if err != nil {
		internalError(c, "failed to record violations", err)
		return
	}

	metrics.RecordViolations(recorded)
	metrics.DetectionSkipped.Add(float64(skipped))

	uid := middleware.SessionUserID(c)
	for _, v := range recorded {
		database.CreateAuditLog(uid, "violation", v.ID, "detect",
			fmt.Sprintf("%s: %s, субъект %s", v.Type.Label(), v.RuleCode, v.SubjectID))
	}

	zap.L().Info("violation detection finished",
		zap.Int("subjects", len(users)),
		zap.Int("detected", len(detected)),
		zap.Int("recorded", len(recorded)),
		zap.Int("skipped", skipped),
	)

	if recorded == nil {
		recorded = []models.Violation{}
	}
	render(c, http.StatusOK, gin.H{
		"subjects": len(users),
		"detected": len(detected),
		"recorded": recorded,
		"skipped":  skipped,
	}, warnings...)
}

type statusRequest struct {
	Status     models.ViolationStatus `json:"status" binding:"required"`
	Mitigation string                 `json:"mitigation"`
}

// UpdateStatus: ручной перевод нарушения по жизненному циклу.
func (h *Violations) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, http.StatusBadRequest, "status is required")
		return
	}
	if !req.Status.Valid() {
		renderError(c, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	var (
		v    models.Violation
		from models.ViolationStatus
	)
	err := database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&v, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}
		from = v.Status
		if err := violations.Transition(&v, req.Status, req.Mitigation, time.Now()); err != nil {
			return err
		}
		return tx.Save(&v).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		renderError(c, http.StatusNotFound, "violation not found")
		return
	case errors.Is(err, violations.ErrInvalidTransition):
		renderError(c, http.StatusConflict, err.Error())
		return
	case err != nil:
		internalError(c, "failed to update violation", err)
		return
	}

	database.CreateAuditLog(middleware.SessionUserID(c), "violation", v.ID, "status_change",
		fmt.Sprintf("Статус: %s → %s", from, v.Status))

	render(c, http.StatusOK, gin.H{"violation": v})
}

// Export: выгрузка журнала в CSV с теми же фильтрами, что и у списка.
func (h *Violations) Export(c *gin.Context) {
	vs, ok := loadViolations(c)
	if !ok {
		return
	}

	name := violations.ExportFilename(time.Now())
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Status(http.StatusOK)

	if err := violations.WriteCSV(c.Writer, vs); err != nil {
		zap.L().Error("failed to write violations csv", zap.Error(err))
		return
	}

	database.CreateAuditLog(middleware.SessionUserID(c), "violation", "", "export",
		fmt.Sprintf("Выгружено нарушений: %d", len(vs)))
}

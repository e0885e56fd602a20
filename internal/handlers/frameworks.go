package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"access-governance/internal/assessment"
	"access-governance/internal/database"
	"access-governance/internal/metrics"
	"access-governance/internal/middleware"
	"access-governance/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Assessments: обработчики фреймворков и прогонов оценки.
type Assessments struct {
	Assessor *assessment.Assessor
	Evidence assessment.EvidenceProvider
}

type frameworkSummary struct {
	ID         string                             `json:"id"`
	Name       string                             `json:"name"`
	Score      assessment.Score                   `json:"score"`
	Gaps       []assessment.Gap                   `json:"gaps"`
	Categories []assessment.CategoryCount         `json:"categories"`
	Selected   []string                           `json:"selected"`
	Latest     map[string]models.AssessmentResult `json:"latest"`
}

func summarize(fw models.Framework, selected []string) frameworkSummary {
	s := frameworkSummary{
		ID:         fw.ID,
		Name:       fw.Name,
		Score:      assessment.FrameworkScore(fw, fw.AssessmentResults),
		Gaps:       assessment.Gaps(fw, fw.AssessmentResults),
		Categories: assessment.CategoryCounts(fw, selected),
		Selected:   selected,
		Latest:     assessment.Latest(fw, fw.AssessmentResults),
	}
	if s.Gaps == nil {
		s.Gaps = []assessment.Gap{}
	}
	if s.Selected == nil {
		s.Selected = []string{}
	}
	return s
}

// splitIDs: список через запятую, пустые элементы отбрасываются.
func splitIDs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *Assessments) List(c *gin.Context) {
	ctx := c.Request.Context()

	var ids []string
	if err := database.DB.WithContext(ctx).Model(&models.Framework{}).Order("id asc").Pluck("id", &ids).Error; err != nil {
		internalError(c, "failed to load frameworks", err)
		return
	}

	out := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		fw, err := database.LoadFramework(ctx, id)
		if err != nil {
			internalError(c, "failed to load framework", err)
			return
		}
		out = append(out, gin.H{
			"id":         fw.ID,
			"name":       fw.Name,
			"objectives": len(fw.Objectives),
			"score":      assessment.FrameworkScore(fw, fw.AssessmentResults),
		})
	}
	render(c, http.StatusOK, gin.H{"frameworks": out})
}

func (h *Assessments) loadFramework(c *gin.Context) (models.Framework, bool) {
	fw, err := database.LoadFramework(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		renderError(c, http.StatusNotFound, "framework not found")
		return fw, false
	}
	if err != nil {
		internalError(c, "failed to load framework", err)
		return fw, false
	}
	return fw, true
}

// Summary: оценка фреймворка, разрывы и счётчики выбора по категориям.
// ?selected=id1,id2: текущий выбор; ?category=X&on=true|false выбирает или снимает категорию.
func (h *Assessments) Summary(c *gin.Context) {
	fw, ok := h.loadFramework(c)
	if !ok {
		return
	}

	selected := splitIDs(c.Query("selected"))
	if category := c.Query("category"); category != "" {
		selected = assessment.ToggleCategory(fw, selected, category, c.Query("on") != "false")
	}

	render(c, http.StatusOK, gin.H{"framework": summarize(fw, selected)})
}

type runRequest struct {
	ObjectiveIDs []string `json:"objective_ids"`
}

// RunAssessment оценивает выбранные цели (все, если список пуст) и сохраняет результаты.
// Неполученные свидетельства и неизвестные цели не валят запрос, а попадают в warnings.
func (h *Assessments) RunAssessment(c *gin.Context) {
	var req runRequest
	// тело необязательно, пустое тело (в том числе chunked) значит "все цели"
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			renderError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	fw, ok := h.loadFramework(c)
	if !ok {
		return
	}

	ids := req.ObjectiveIDs
	if len(ids) == 0 {
		for _, o := range fw.Objectives {
			ids = append(ids, o.ID)
		}
	}

	ctx := c.Request.Context()
	run := h.Assessor.Run(ctx, fw, ids, h.Evidence)

	// результаты уже посчитаны, сохраняем даже если клиент отключился
	if err := database.SaveAssessmentResults(context.WithoutCancel(ctx), run.Results); err != nil {
		internalError(c, "failed to save assessment results", err)
		return
	}

	outcome := runOutcome(run)
	metrics.RecordAssessment(outcome, run.Results)

	if err := run.Err(); err != nil {
		zap.L().Warn("assessment run finished with errors",
			zap.String("run_id", run.ID),
			zap.String("framework", fw.ID),
			zap.Error(err),
		)
	}

	database.CreateAuditLog(middleware.SessionUserID(c), "assessment", run.ID, "run",
		fmt.Sprintf("Фреймворк %s: оценено %d, ошибок %d, итог %s", fw.ID, len(run.Results), len(run.Errored), outcome))

	fw.AssessmentResults = append(fw.AssessmentResults, run.Results...)
	render(c, http.StatusOK, gin.H{
		"run":     run,
		"outcome": outcome,
		"score":   assessment.FrameworkScore(fw, fw.AssessmentResults),
	}, runWarnings(run)...)
}

func runOutcome(run *assessment.Run) string {
	switch {
	case run.Cancelled:
		return "cancelled"
	case len(run.Errored) > 0 || len(run.Unknown) > 0:
		return "partial"
	default:
		return "complete"
	}
}

func runWarnings(run *assessment.Run) []string {
	var out []string
	for _, id := range run.Errored {
		out = append(out, fmt.Sprintf("objective %s: evidence unavailable, recorded as not_assessed", id))
	}
	for _, id := range run.Unknown {
		out = append(out, fmt.Sprintf("objective %s: not part of framework %s", id, run.FrameworkID))
	}
	if run.Cancelled {
		out = append(out, fmt.Sprintf("run cancelled, %d objectives not assessed", len(run.Remaining)))
	}
	return out
}

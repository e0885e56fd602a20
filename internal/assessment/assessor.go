// Package assessment оценивает контрольные цели фреймворка по свидетельствам
// и сводит результаты в оценку соответствия и список разрывов.
//
// Цели оцениваются независимо и параллельно. Отмена контекста проверяется
// между целями: начатая оценка доводится до конца, необработанные цели
// возвращаются в Run.Remaining.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"access-governance/internal/models"
	"access-governance/internal/risk"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

// EvidenceProvider: источник свидетельств (журнал аудита, конфигурации).
type EvidenceProvider interface {
	Evidence(ctx context.Context, objectiveID string) ([]models.Evidence, error)
}

type EvidenceProviderFunc func(ctx context.Context, objectiveID string) ([]models.Evidence, error)

func (f EvidenceProviderFunc) Evidence(ctx context.Context, objectiveID string) ([]models.Evidence, error) {
	return f(ctx, objectiveID)
}

type Options struct {
	Workers int
	// ObjectiveTimeout: лимит на получение свидетельств по одной цели, 0: без лимита.
	ObjectiveTimeout time.Duration
	AssessedBy       string
	Now              func() time.Time
}

type Assessor struct {
	policy Policy
	opts   Options
}

func New(policy Policy, opts Options) *Assessor {
	if policy == nil {
		policy = NewWeightedEvidencePolicy()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Assessor{policy: policy, opts: opts}
}

// Run: итог одного прогона оценки.
type Run struct {
	ID          string                    `json:"id"`
	FrameworkID string                    `json:"framework_id"`
	Results     []models.AssessmentResult `json:"results"`
	Errored     []string                  `json:"errored,omitempty"` // свидетельства не получены
	Unknown     []string                  `json:"unknown,omitempty"` // нет такой цели во фреймворке
	Cancelled   bool                      `json:"cancelled"`
	Remaining   []string                  `json:"remaining,omitempty"` // не оценены из-за отмены

	err error
}

// Err: объединённые ошибки по целям, nil если все свидетельства получены.
func (r *Run) Err() error {
	return r.err
}

// Run оценивает выбранные цели. Повторы ID игнорируются, чужие ID попадают в Unknown.
// Ошибка источника свидетельств по одной цели даёт not_assessed и не прерывает прогон.
func (a *Assessor) Run(ctx context.Context, fw models.Framework, objectiveIDs []string, provider EvidenceProvider) *Run {
	run := &Run{ID: uuid.NewString(), FrameworkID: fw.ID}

	var selected []models.ControlObjective
	seen := make(map[string]bool, len(objectiveIDs))
	for _, id := range objectiveIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		obj, ok := fw.Objective(id)
		if !ok {
			run.Unknown = append(run.Unknown, id)
			continue
		}
		selected = append(selected, obj)
	}

	results := make([]*models.AssessmentResult, len(selected))
	errs := make([]error, len(selected))

	var g errgroup.Group
	g.SetLimit(a.opts.Workers)
	for i, obj := range selected {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := a.evaluate(ctx, fw.ID, run.ID, obj, provider)
			results[i] = &res
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	for i, obj := range selected {
		if results[i] == nil {
			run.Remaining = append(run.Remaining, obj.ID)
			continue
		}
		run.Results = append(run.Results, *results[i])
		if errs[i] != nil {
			run.Errored = append(run.Errored, obj.ID)
			run.err = multierr.Append(run.err, fmt.Errorf("objective %s: %w", obj.ID, errs[i]))
		}
	}
	run.Cancelled = len(run.Remaining) > 0

	return run
}

func (a *Assessor) evaluate(ctx context.Context, frameworkID, runID string,
	obj models.ControlObjective, provider EvidenceProvider) (models.AssessmentResult, error) {
	res := models.AssessmentResult{
		RunID:       runID,
		FrameworkID: frameworkID,
		ObjectiveID: obj.ID,
		Status:      models.StatusNotAssessed,
		AssessedAt:  a.opts.Now(),
		AssessedBy:  a.opts.AssessedBy,
	}

	// отмена прогона не прерывает уже начатую цель, только таймаут
	pctx := context.WithoutCancel(ctx)
	if a.opts.ObjectiveTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(pctx, a.opts.ObjectiveTimeout)
		defer cancel()
	}

	evidence, err := fetchEvidence(pctx, provider, obj.ID)
	if err != nil {
		res.Note = "evidence unavailable: " + err.Error()
		return res, err
	}
	if len(evidence) == 0 {
		res.Note = "no evidence collected"
		return res, nil
	}

	ev := a.policy.Evaluate(obj, evidence)
	res.Score = risk.Clamp(ev.Score)
	res.Status = StatusForScore(res.Score)
	res.Findings = ev.Findings
	res.Gaps = ev.Gaps
	res.Recommendations = ev.Recommendations
	return res, nil
}

var errProviderPanic = errors.New("evidence provider panicked")

// fetchEvidence не ждёт провайдер дольше, чем живёт ctx.
func fetchEvidence(ctx context.Context, provider EvidenceProvider, objectiveID string) ([]models.Evidence, error) {
	if provider == nil {
		return nil, errors.New("no evidence provider")
	}

	type reply struct {
		evidence []models.Evidence
		err      error
	}
	ch := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("%w: %v", errProviderPanic, r)}
			}
		}()
		ev, err := provider.Evidence(ctx, objectiveID)
		ch <- reply{evidence: ev, err: err}
	}()

	select {
	case r := <-ch:
		return r.evidence, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

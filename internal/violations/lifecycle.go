package violations

import (
	"errors"
	"fmt"
	"time"

	"access-governance/internal/models"

	"github.com/google/uuid"
)

var ErrInvalidTransition = errors.New("invalid violation status transition")

var namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("access-governance/violations"))

// Fingerprint возвращает устойчивый ключ условия нарушения (субъект + тип + правило/роль).
func Fingerprint(subjectID string, vt models.ViolationType, ruleCode string) string {
	return uuid.NewSHA1(namespace, []byte(subjectID+"|"+string(vt)+"|"+ruleCode)).String()
}

// ViolationID: ID записи журнала для заданного поколения условия.
func ViolationID(fingerprint string, generation int) string {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%s#%d", fingerprint, generation))).String()
}

// CanTransition: open → in_review → mitigated|accepted, либо open → mitigated|accepted.
// Из закрытых статусов переходов нет.
func CanTransition(from, to models.ViolationStatus) bool {
	switch from {
	case models.ViolationOpen:
		return to == models.ViolationInReview || to == models.ViolationMitigated || to == models.ViolationAccepted
	case models.ViolationInReview:
		return to == models.ViolationMitigated || to == models.ViolationAccepted
	default:
		return false
	}
}

// Transition меняет статус нарушения. Комментарий по снижению риска
// сохраняется, если передан.
func Transition(v *models.Violation, to models.ViolationStatus, mitigation string, at time.Time) error {
	if !CanTransition(v.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, v.Status, to)
	}
	v.Status = to
	if mitigation != "" {
		v.Mitigation = mitigation
	}
	v.UpdatedAt = at
	return nil
}

// Reconcile сводит свежие обнаружения с журналом. Возвращает только записи,
// которые нужно добавить: если по условию есть незакрытое нарушение, новое не
// создаётся; если все прежние закрыты, создаётся запись следующего поколения.
func Reconcile(existing, detected []models.Violation) []models.Violation {
	active := make(map[string]bool)
	nextGen := make(map[string]int)
	for _, v := range existing {
		if !v.Status.Closed() {
			active[v.Fingerprint] = true
		}
		if v.Generation+1 > nextGen[v.Fingerprint] {
			nextGen[v.Fingerprint] = v.Generation + 1
		}
	}

	var fresh []models.Violation
	for _, v := range detected {
		if active[v.Fingerprint] {
			continue
		}
		gen := nextGen[v.Fingerprint]
		v.Generation = gen
		v.ID = ViolationID(v.Fingerprint, gen)
		fresh = append(fresh, v)

		active[v.Fingerprint] = true
		nextGen[v.Fingerprint] = gen + 1
	}
	return fresh
}

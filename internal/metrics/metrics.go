// Package metrics содержит счётчики Prometheus консоли.
package metrics

import (
	"access-governance/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ViolationsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grc_violations_detected_total",
		Help: "Violations newly recorded by detection runs.",
	}, []string{"type", "severity"})

	DetectionSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grc_detection_skipped_records_total",
		Help: "Malformed grants, rules or subjects skipped during detection.",
	})

	AssessmentObjectives = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grc_assessment_objectives_total",
		Help: "Control objectives evaluated, by resulting status.",
	}, []string{"status"})

	AssessmentRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grc_assessment_runs_total",
		Help: "Assessment runs by outcome (complete, partial, cancelled).",
	}, []string{"outcome"})

	AuthorizationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grc_authorization_decisions_total",
		Help: "Permission gate decisions.",
	}, []string{"decision"})
)

func RecordViolations(vs []models.Violation) {
	for _, v := range vs {
		ViolationsDetected.WithLabelValues(string(v.Type), string(v.Severity)).Inc()
	}
}

func RecordAssessment(outcome string, results []models.AssessmentResult) {
	AssessmentRuns.WithLabelValues(outcome).Inc()
	for _, r := range results {
		AssessmentObjectives.WithLabelValues(string(r.Status)).Inc()
	}
}

func RecordDecision(allowed bool) {
	if allowed {
		AuthorizationDecisions.WithLabelValues("allow").Inc()
		return
	}
	AuthorizationDecisions.WithLabelValues("deny").Inc()
}

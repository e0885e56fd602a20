package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "host=localhost user=grc dbname=grc")
	t.Setenv("SESSION_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DORMANT_AFTER_DAYS", "")
	t.Setenv("ASSESSMENT_WORKERS", "")
	t.Setenv("ASSESSMENT_OBJECTIVE_TIMEOUT", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.DormantAfterDays)
	assert.Equal(t, 4, cfg.AssessmentWorkers)
	assert.Zero(t, cfg.AssessmentObjectiveTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DORMANT_AFTER_DAYS", "90")
	t.Setenv("ASSESSMENT_WORKERS", "16")
	t.Setenv("ASSESSMENT_OBJECTIVE_TIMEOUT", "1500ms")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 90, cfg.DormantAfterDays)
	assert.Equal(t, 16, cfg.AssessmentWorkers)
	assert.Equal(t, 1500*time.Millisecond, cfg.AssessmentObjectiveTimeout)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing dsn", func(t *testing.T) {
		t.Setenv("DB_DSN", "")
		t.Setenv("SESSION_SECRET", "secret")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_DSN")
	})

	t.Run("bad dormant days", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DORMANT_AFTER_DAYS", "-3")
		_, err := Load()
		assert.ErrorContains(t, err, "DORMANT_AFTER_DAYS")
	})

	t.Run("bad timeout", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ASSESSMENT_OBJECTIVE_TIMEOUT", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "ASSESSMENT_OBJECTIVE_TIMEOUT")
	})
}

package violations

import (
	"testing"
	"time"

	"access-governance/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.ViolationStatus
		want     bool
	}{
		{models.ViolationOpen, models.ViolationInReview, true},
		{models.ViolationOpen, models.ViolationMitigated, true},
		{models.ViolationOpen, models.ViolationAccepted, true},
		{models.ViolationInReview, models.ViolationMitigated, true},
		{models.ViolationInReview, models.ViolationAccepted, true},
		{models.ViolationOpen, models.ViolationOpen, false},
		{models.ViolationInReview, models.ViolationOpen, false},
		{models.ViolationMitigated, models.ViolationOpen, false},
		{models.ViolationMitigated, models.ViolationAccepted, false},
		{models.ViolationAccepted, models.ViolationInReview, false},
		{models.ViolationOpen, "closed", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTransition(t *testing.T) {
	v := models.Violation{ID: "v1", Status: models.ViolationOpen}
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, Transition(&v, models.ViolationInReview, "", at))
	require.NoError(t, Transition(&v, models.ViolationMitigated, "role removed", at))
	assert.Equal(t, models.ViolationMitigated, v.Status)
	assert.Equal(t, "role removed", v.Mitigation)
	assert.Equal(t, at, v.UpdatedAt)

	err := Transition(&v, models.ViolationOpen, "", at)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.ViolationMitigated, v.Status)
}

func TestReconcile(t *testing.T) {
	fp := Fingerprint("u-1", models.ViolationSoDConflict, "SOD-1")
	detected := []models.Violation{{ID: ViolationID(fp, 0), Fingerprint: fp, Status: models.ViolationOpen}}

	t.Run("nothing recorded yet", func(t *testing.T) {
		fresh := Reconcile(nil, detected)
		require.Len(t, fresh, 1)
		assert.Equal(t, ViolationID(fp, 0), fresh[0].ID)
		assert.Equal(t, 0, fresh[0].Generation)
	})

	t.Run("active record kept", func(t *testing.T) {
		existing := []models.Violation{{ID: ViolationID(fp, 0), Fingerprint: fp, Status: models.ViolationInReview}}
		assert.Empty(t, Reconcile(existing, detected))
	})

	t.Run("closed record not resurrected", func(t *testing.T) {
		existing := []models.Violation{
			{ID: ViolationID(fp, 0), Fingerprint: fp, Generation: 0, Status: models.ViolationMitigated},
			{ID: ViolationID(fp, 1), Fingerprint: fp, Generation: 1, Status: models.ViolationAccepted},
		}
		fresh := Reconcile(existing, detected)
		require.Len(t, fresh, 1)
		assert.Equal(t, 2, fresh[0].Generation)
		assert.Equal(t, ViolationID(fp, 2), fresh[0].ID)
		assert.Equal(t, models.ViolationMitigated, existing[0].Status)
	})

	t.Run("duplicate detections collapse", func(t *testing.T) {
		fresh := Reconcile(nil, append(detected, detected...))
		assert.Len(t, fresh, 1)
	})
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("u-1", models.ViolationDormantAccount, "dormant")
	b := Fingerprint("u-1", models.ViolationDormantAccount, "dormant")
	c := Fingerprint("u-2", models.ViolationDormantAccount, "dormant")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, ViolationID(a, 0), ViolationID(a, 1))
}

package beds

import (
	"context"
	"regexp"
	"testing"
	"time"

	"hospilink-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reIPDNumber = regexp.MustCompile(`^IPD-\d{8}-\d{3}$`)

func TestNextIPDNumberFormat(t *testing.T) {
	tr, _, _ := newTestTracker(t, newFakeKV())
	now := time.Date(2025, 8, 31, 9, 30, 0, 0, time.UTC)

	got, err := tr.nextIPDNumber(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "IPD-20250831-001", got)
	assert.Regexp(t, reIPDNumber, got)
}

func TestNextIPDNumberMonotonicWithinDay(t *testing.T) {
	tr, _, _ := newTestTracker(t, newFakeKV())
	now := time.Date(2025, 8, 31, 9, 30, 0, 0, time.UTC)

	seen := map[string]bool{}
	for i := 1; i <= 12; i++ {
		got, err := tr.nextIPDNumber(context.Background(), now)
		require.NoError(t, err)
		assert.False(t, seen[got], "ipd number reused: %s", got)
		seen[got] = true
	}
	last, err := tr.nextIPDNumber(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "IPD-20250831-013", last)
}

func TestNextIPDNumberRollsOverAtMidnight(t *testing.T) {
	tr, _, _ := newTestTracker(t, newFakeKV())
	day1 := time.Date(2025, 8, 31, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2025, 9, 1, 0, 1, 0, 0, time.UTC)

	first, err := tr.nextIPDNumber(context.Background(), day1)
	require.NoError(t, err)
	assert.Equal(t, "IPD-20250831-001", first)

	next, err := tr.nextIPDNumber(context.Background(), day2)
	require.NoError(t, err)
	assert.Equal(t, "IPD-20250901-001", next)

	// 前一日计数不受影响
	again, err := tr.nextIPDNumber(context.Background(), day1)
	require.NoError(t, err)
	assert.Equal(t, "IPD-20250831-002", again)
}

func TestNextIPDNumberCorruptCounterRestarts(t *testing.T) {
	kv := newFakeKV()
	tr, _, _ := newTestTracker(t, kv)
	now := time.Date(2025, 8, 31, 9, 30, 0, 0, time.UTC)

	require.NoError(t, kv.Set(context.Background(), "ipd-counter-20250831", "garbage", 0))

	got, err := tr.nextIPDNumber(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "IPD-20250831-001", got)
}

func TestAdmissionsAcrossDaysGetFreshSequence(t *testing.T) {
	tr, _, _ := newTestTracker(t, newFakeKV())
	ctx := context.Background()

	day := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return day }

	bed, err := tr.Admit(ctx, "bed-1", domain.AdmittedPatient{PatientID: "P001"})
	require.NoError(t, err)
	assert.Equal(t, "IPD-20250831-001", bed.IPDNumber)

	day = day.Add(24 * time.Hour)
	bed, err = tr.Admit(ctx, "bed-2", domain.AdmittedPatient{PatientID: "P002"})
	require.NoError(t, err)
	assert.Equal(t, "IPD-20250901-001", bed.IPDNumber)
}

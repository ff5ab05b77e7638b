package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyProgressTransitions(t *testing.T) {
	now := time.Now()

	e := Enrollment{Status: StatusEnrolled}

	// Zero progress keeps the enrollment fresh
	e.ApplyProgress(0, now)
	assert.Equal(t, StatusEnrolled, e.Status)
	assert.Equal(t, 0, e.Progress)

	// Any progress promotes to IN_PROGRESS
	e.ApplyProgress(33, now)
	assert.Equal(t, StatusInProgress, e.Status)
	assert.Equal(t, 33, e.Progress)

	// 100 completes and stamps CompletedAt
	e.ApplyProgress(100, now)
	assert.Equal(t, StatusCompleted, e.Status)
	require.NotNil(t, e.CompletedAt)
	assert.Equal(t, 100, e.Progress)
}

func TestApplyProgressClampsRange(t *testing.T) {
	now := time.Now()

	e := Enrollment{Status: StatusEnrolled}
	e.ApplyProgress(-5, now)
	assert.Equal(t, 0, e.Progress)

	e.ApplyProgress(150, now)
	assert.Equal(t, 100, e.Progress)
	assert.Equal(t, StatusCompleted, e.Status)
}

func TestApplyProgressCompletedAtStampedOnce(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	e := Enrollment{Status: StatusInProgress}
	e.ApplyProgress(100, first)
	require.NotNil(t, e.CompletedAt)
	stamped := *e.CompletedAt

	e.ApplyProgress(100, second)
	assert.Equal(t, stamped, *e.CompletedAt)
}

func TestApplyProgressNeverRevertsTerminalStates(t *testing.T) {
	now := time.Now()

	completed := Enrollment{Status: StatusCompleted, Progress: 100}
	completed.ApplyProgress(50, now)
	assert.Equal(t, StatusCompleted, completed.Status)
	assert.Equal(t, 100, completed.Progress)

	dropped := Enrollment{Status: StatusDropped, Progress: 40}
	dropped.ApplyProgress(80, now)
	assert.Equal(t, StatusDropped, dropped.Status)
	assert.Equal(t, 40, dropped.Progress)
}

func TestCompleteNow(t *testing.T) {
	now := time.Now()

	e := Enrollment{Status: StatusEnrolled, Progress: 20}
	e.CompleteNow(now)
	assert.Equal(t, StatusCompleted, e.Status)
	assert.Equal(t, 100, e.Progress)
	require.NotNil(t, e.CompletedAt)
}

func TestDrop(t *testing.T) {
	e := Enrollment{Status: StatusInProgress, Progress: 60}
	require.NoError(t, e.Drop())
	assert.Equal(t, StatusDropped, e.Status)
	assert.Equal(t, 60, e.Progress) // history retained

	// Terminal enrollments cannot be dropped again
	assert.ErrorIs(t, e.Drop(), ErrAlreadyFinished)

	completed := Enrollment{Status: StatusCompleted}
	assert.ErrorIs(t, completed.Drop(), ErrAlreadyFinished)
}

func TestRateRequiresCompletion(t *testing.T) {
	e := Enrollment{Status: StatusInProgress}
	assert.ErrorIs(t, e.Rate(5, "great"), ErrNotCompleted)
	assert.Nil(t, e.Rating)
	assert.Nil(t, e.Review)
}

func TestRateValidatesRange(t *testing.T) {
	e := Enrollment{Status: StatusCompleted}
	assert.ErrorIs(t, e.Rate(0, ""), ErrInvalidRating)
	assert.ErrorIs(t, e.Rate(6, ""), ErrInvalidRating)

	require.NoError(t, e.Rate(4, "solid course"))
	require.NotNil(t, e.Rating)
	assert.Equal(t, 4, *e.Rating)
	require.NotNil(t, e.Review)
	assert.Equal(t, "solid course", *e.Review)
}

func TestAddTimeSpent(t *testing.T) {
	e := Enrollment{TimeSpent: 10}
	require.NoError(t, e.AddTimeSpent(25))
	assert.Equal(t, 35, e.TimeSpent)

	assert.ErrorIs(t, e.AddTimeSpent(-1), ErrNegativeTime)
	assert.Equal(t, 35, e.TimeSpent)
}

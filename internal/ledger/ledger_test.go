package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dzakyhdr/learntrack-api/internal/models"
)

func newGoalWithMilestones(count int) *models.Goal {
	goal := &models.Goal{ID: 1, UserID: 7, Title: "Learn Go", Category: models.CategoryProgramming}
	for i := 0; i < count; i++ {
		goal.Milestones = append(goal.Milestones, models.Milestone{ID: uint(i + 1), GoalID: 1, SortOrder: i + 1})
	}
	return goal
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestStatusForProgressMapping(t *testing.T) {
	require.Equal(t, models.GoalStatusNotStarted, StatusForProgress(0))
	require.Equal(t, models.GoalStatusInProgress, StatusForProgress(1))
	require.Equal(t, models.GoalStatusInProgress, StatusForProgress(99))
	require.Equal(t, models.GoalStatusCompleted, StatusForProgress(100))
}

func TestSetGoalProgressValidatesRange(t *testing.T) {
	goal := newGoalWithMilestones(0)

	require.ErrorIs(t, SetGoalProgress(goal, -1), ErrProgressOutOfRange)
	require.ErrorIs(t, SetGoalProgress(goal, 101), ErrProgressOutOfRange)

	require.NoError(t, SetGoalProgress(goal, 40))
	require.Equal(t, 40, goal.Progress)
	require.Equal(t, models.GoalStatusInProgress, goal.Status)

	require.NoError(t, SetGoalProgress(goal, 100))
	require.Equal(t, models.GoalStatusCompleted, goal.Status)
}

func TestApplyMilestonePatchRecomputesProgress(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	goal := newGoalWithMilestones(4)

	require.NoError(t, ApplyMilestonePatch(goal, 0, MilestonePatch{Completed: boolPtr(true)}, now))
	require.NoError(t, ApplyMilestonePatch(goal, 1, MilestonePatch{Completed: boolPtr(true)}, now))
	require.Equal(t, 50, goal.Progress)
	require.Equal(t, models.GoalStatusInProgress, goal.Status)

	require.NoError(t, ApplyMilestonePatch(goal, 2, MilestonePatch{Completed: boolPtr(true)}, now))
	require.NoError(t, ApplyMilestonePatch(goal, 3, MilestonePatch{Completed: boolPtr(true)}, now))
	require.Equal(t, 100, goal.Progress)
	require.Equal(t, models.GoalStatusCompleted, goal.Status)
}

func TestApplyMilestonePatchRoundsHalfUp(t *testing.T) {
	now := time.Now()
	goal := newGoalWithMilestones(3)

	require.NoError(t, ApplyMilestonePatch(goal, 0, MilestonePatch{Completed: boolPtr(true)}, now))
	// 1/3 = 33.33 rounds down.
	require.Equal(t, 33, goal.Progress)

	require.NoError(t, ApplyMilestonePatch(goal, 1, MilestonePatch{Completed: boolPtr(true)}, now))
	// 2/3 = 66.67 rounds up.
	require.Equal(t, 67, goal.Progress)

	goal = newGoalWithMilestones(8)
	require.NoError(t, ApplyMilestonePatch(goal, 0, MilestonePatch{Completed: boolPtr(true)}, now))
	// 1/8 = 12.5 rounds half up.
	require.Equal(t, 13, goal.Progress)
}

func TestApplyMilestonePatchCompletedAtStampedOnce(t *testing.T) {
	first := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)
	goal := newGoalWithMilestones(2)

	require.NoError(t, ApplyMilestonePatch(goal, 0, MilestonePatch{Completed: boolPtr(true)}, first))
	require.NotNil(t, goal.Milestones[0].CompletedAt)
	require.Equal(t, first, *goal.Milestones[0].CompletedAt)

	require.NoError(t, ApplyMilestonePatch(goal, 0, MilestonePatch{Completed: boolPtr(true)}, later))
	require.Equal(t, first, *goal.Milestones[0].CompletedAt)

	// Un-completing and re-completing keeps the original stamp too.
	require.NoError(t, ApplyMilestonePatch(goal, 0, MilestonePatch{Completed: boolPtr(false)}, later))
	require.NoError(t, ApplyMilestonePatch(goal, 0, MilestonePatch{Completed: boolPtr(true)}, later))
	require.Equal(t, first, *goal.Milestones[0].CompletedAt)
}

func TestApplyMilestonePatchIndexOutOfBounds(t *testing.T) {
	goal := newGoalWithMilestones(1)
	require.ErrorIs(t, ApplyMilestonePatch(goal, 1, MilestonePatch{}, time.Now()), ErrMilestoneNotFound)
	require.ErrorIs(t, ApplyMilestonePatch(goal, -1, MilestonePatch{}, time.Now()), ErrMilestoneNotFound)
}

func TestRecomputeGoalProgressZeroMilestones(t *testing.T) {
	goal := newGoalWithMilestones(0)
	goal.Progress = 30
	goal.Status = models.GoalStatusInProgress

	RecomputeGoalProgress(goal)

	require.Equal(t, 30, goal.Progress)
	require.Equal(t, models.GoalStatusInProgress, goal.Status)
}

func TestStartLessonIdempotent(t *testing.T) {
	first := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	lesson := &models.Lesson{ID: 5, UserID: 7, Status: models.LessonStatusNotStarted}

	StartLesson(lesson, first)
	require.Equal(t, models.LessonStatusInProgress, lesson.Status)
	require.Equal(t, first, *lesson.StartedAt)
	require.Equal(t, first, *lesson.LastAccessedAt)

	StartLesson(lesson, second)
	require.Equal(t, first, *lesson.StartedAt)
	require.Equal(t, second, *lesson.LastAccessedAt)
}

func TestStartLessonNeverDemotesCompleted(t *testing.T) {
	done := time.Now()
	lesson := &models.Lesson{Status: models.LessonStatusCompleted, CompletedAt: &done, StartedAt: &done}

	StartLesson(lesson, done.Add(time.Hour))
	require.Equal(t, models.LessonStatusCompleted, lesson.Status)
}

func TestUpdateLessonProgressScenario(t *testing.T) {
	now := time.Date(2026, 4, 4, 10, 0, 0, 0, time.UTC)
	lesson := &models.Lesson{ID: 3, UserID: 9, Status: models.LessonStatusNotStarted}

	event := UpdateLessonProgress(lesson, intPtr(50), 20, now)
	require.Nil(t, event)
	require.Equal(t, models.LessonStatusInProgress, lesson.Status)
	require.NotNil(t, lesson.StartedAt)
	require.Equal(t, 20, lesson.TimeSpent)

	event = UpdateLessonProgress(lesson, intPtr(100), 10, now.Add(time.Hour))
	require.NotNil(t, event)
	require.Equal(t, models.LessonStatusCompleted, lesson.Status)
	require.NotNil(t, lesson.CompletedAt)
	require.Equal(t, 30, lesson.TimeSpent)
	require.Equal(t, uint(3), event.LessonID)
	require.Equal(t, 10, event.Minutes)
}

func TestUpdateLessonProgressIdempotentAtHundred(t *testing.T) {
	now := time.Now()
	lesson := &models.Lesson{ID: 3, UserID: 9, Status: models.LessonStatusNotStarted}

	first := UpdateLessonProgress(lesson, intPtr(100), 5, now)
	require.NotNil(t, first)

	second := UpdateLessonProgress(lesson, intPtr(100), 5, now.Add(time.Minute))
	require.Nil(t, second)
	require.Equal(t, 10, lesson.TimeSpent)
}

func TestUpdateLessonProgressClampsPercentage(t *testing.T) {
	lesson := &models.Lesson{Status: models.LessonStatusNotStarted}

	UpdateLessonProgress(lesson, intPtr(150), 0, time.Now())
	require.Equal(t, 100, lesson.CompletionPct)

	lesson = &models.Lesson{Status: models.LessonStatusNotStarted}
	UpdateLessonProgress(lesson, intPtr(-10), 0, time.Now())
	require.Equal(t, 0, lesson.CompletionPct)
	require.Equal(t, models.LessonStatusNotStarted, lesson.Status)
}

func TestCompleteLessonForcesCompletion(t *testing.T) {
	now := time.Date(2026, 5, 5, 15, 0, 0, 0, time.UTC)
	lesson := &models.Lesson{ID: 11, UserID: 2, Status: models.LessonStatusInProgress, TimeSpent: 40}

	event := CompleteLesson(lesson, 15, intPtr(4), now)
	require.Equal(t, models.LessonStatusCompleted, lesson.Status)
	require.Equal(t, 100, lesson.CompletionPct)
	require.Equal(t, 55, lesson.TimeSpent)
	require.Equal(t, 4, *lesson.UserRating)
	require.Equal(t, now, event.CompletedAt)
}

func TestCompleteLessonReplayKeepsEventKeyStable(t *testing.T) {
	now := time.Date(2026, 5, 5, 15, 0, 0, 0, time.UTC)
	lesson := &models.Lesson{ID: 11, UserID: 2, Status: models.LessonStatusInProgress}

	first := CompleteLesson(lesson, 0, nil, now)
	replay := CompleteLesson(lesson, 0, nil, now.Add(time.Hour))

	require.Equal(t, first.CompletedAt, replay.CompletedAt)
	require.Equal(t, first.LessonID, replay.LessonID)
}

package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
)

func newLessonFixture(t *testing.T, name string) (*gorm.DB, LessonService, uint) {
	t.Helper()
	db := openTestDB(t, name)

	user := models.User{Username: "lena", Email: "lena@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	users := repository.NewUserRepository(db)
	goals := repository.NewGoalRepository(db)
	lessons := repository.NewLessonRepository(db)
	events := repository.NewCompletionEventRepository(db)
	stats := NewStatsService(users, lessons, events, nil, "", zerolog.Nop())

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewLessonService(lessons, goals, stats, validate, zerolog.Nop())
	return db, svc, user.ID
}

func TestLessonProgressFlowUpdatesStatsOnce(t *testing.T) {
	db, svc, userID := newLessonFixture(t, "lesson_flow")
	ctx := context.Background()

	created, err := svc.Create(ctx, userID, dto.LessonCreateRequest{
		Title: "Context package deep dive",
		Type:  models.LessonTypeVideo,
	})
	require.NoError(t, err)
	require.Equal(t, models.LessonStatusNotStarted, created.Status)

	started, err := svc.Start(ctx, created.ID, userID)
	require.NoError(t, err)
	require.Equal(t, models.LessonStatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)

	half := 50
	midway, err := svc.UpdateProgress(ctx, created.ID, userID, dto.LessonProgressRequest{
		CompletionPercentage: &half,
		TimeSpent:            20,
	})
	require.NoError(t, err)
	require.Equal(t, 50, midway.CompletionPct)
	require.Equal(t, 20, midway.TimeSpent)
	require.Equal(t, models.LessonStatusInProgress, midway.Status)

	full := 100
	done, err := svc.UpdateProgress(ctx, created.ID, userID, dto.LessonProgressRequest{
		CompletionPercentage: &full,
		TimeSpent:            10,
	})
	require.NoError(t, err)
	require.Equal(t, models.LessonStatusCompleted, done.Status)
	require.Equal(t, 30, done.TimeSpent)
	require.NotNil(t, done.CompletedAt)

	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	require.Equal(t, 1, user.Stats.TotalLessonsCompleted)
	require.Equal(t, 10, user.Stats.TotalTimeSpent)

	// Re-sending 100% accumulates lesson time but never double-counts the
	// completion.
	again, err := svc.UpdateProgress(ctx, created.ID, userID, dto.LessonProgressRequest{
		CompletionPercentage: &full,
		TimeSpent:            5,
	})
	require.NoError(t, err)
	require.Equal(t, 35, again.TimeSpent)

	require.NoError(t, db.First(&user, userID).Error)
	require.Equal(t, 1, user.Stats.TotalLessonsCompleted)
	require.Equal(t, 10, user.Stats.TotalTimeSpent)
}

func TestCompleteLessonIsIdempotentForStats(t *testing.T) {
	db, svc, userID := newLessonFixture(t, "lesson_complete")
	ctx := context.Background()

	created, err := svc.Create(ctx, userID, dto.LessonCreateRequest{
		Title: "Testing with testify",
		Type:  models.LessonTypeArticle,
	})
	require.NoError(t, err)

	rating := 5
	done, err := svc.Complete(ctx, created.ID, userID, dto.LessonCompleteRequest{TimeSpent: 15, Rating: &rating})
	require.NoError(t, err)
	require.Equal(t, models.LessonStatusCompleted, done.Status)
	require.Equal(t, 100, done.CompletionPct)
	require.NotNil(t, done.UserRating)
	require.Equal(t, 5, *done.UserRating)

	redone, err := svc.Complete(ctx, created.ID, userID, dto.LessonCompleteRequest{TimeSpent: 5})
	require.NoError(t, err)
	require.Equal(t, done.CompletedAt.Unix(), redone.CompletedAt.Unix())

	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	require.Equal(t, 1, user.Stats.TotalLessonsCompleted)
	require.Equal(t, 15, user.Stats.TotalTimeSpent)
}

func TestCompleteLessonUpdatesGoalRollup(t *testing.T) {
	db, svc, userID := newLessonFixture(t, "lesson_goal_rollup")
	ctx := context.Background()

	goal := models.Goal{UserID: userID, Title: "Ship a CLI", Category: models.CategoryProgramming, Status: models.GoalStatusInProgress, Progress: 10}
	require.NoError(t, db.Create(&goal).Error)

	first, err := svc.Create(ctx, userID, dto.LessonCreateRequest{
		Title:  "Flag parsing",
		Type:   models.LessonTypeArticle,
		GoalID: &goal.ID,
	})
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID, dto.LessonCreateRequest{
		Title:  "Subcommands",
		Type:   models.LessonTypeVideo,
		GoalID: &goal.ID,
	})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, first.ID, userID, dto.LessonCompleteRequest{TimeSpent: 50})
	require.NoError(t, err)
	_, err = svc.Complete(ctx, second.ID, userID, dto.LessonCompleteRequest{TimeSpent: 40})
	require.NoError(t, err)

	var stored models.Goal
	require.NoError(t, db.First(&stored, goal.ID).Error)
	require.Equal(t, 2, stored.LessonsDone)
	// 90 minutes rounds to 2 hours.
	require.Equal(t, 2, stored.ActualHours)

	// Replaying a completion recomputes instead of incrementing.
	_, err = svc.Complete(ctx, second.ID, userID, dto.LessonCompleteRequest{})
	require.NoError(t, err)
	require.NoError(t, db.First(&stored, goal.ID).Error)
	require.Equal(t, 2, stored.LessonsDone)
	require.Equal(t, 2, stored.ActualHours)
}

func TestLessonCreateSanitisesNotes(t *testing.T) {
	_, svc, userID := newLessonFixture(t, "lesson_sanitize")

	created, err := svc.Create(context.Background(), userID, dto.LessonCreateRequest{
		Title: "Markdown basics",
		Type:  models.LessonTypeOther,
		Notes: `<script>alert("x")</script>plain notes`,
	})
	require.NoError(t, err)
	require.Equal(t, "plain notes", created.Notes)
}

func TestLessonCreateRejectsForeignGoal(t *testing.T) {
	db, svc, userID := newLessonFixture(t, "lesson_foreign_goal")

	other := models.User{Username: "omer", Email: "omer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)
	goal := models.Goal{UserID: other.ID, Title: "Their goal", Category: models.CategoryProgramming, Status: models.GoalStatusNotStarted}
	require.NoError(t, db.Create(&goal).Error)

	_, err := svc.Create(context.Background(), userID, dto.LessonCreateRequest{
		Title:  "Should fail",
		Type:   models.LessonTypeVideo,
		GoalID: &goal.ID,
	})
	require.ErrorIs(t, err, ErrGoalNotFound)
}

func TestLessonGetUnknownReturnsNotFound(t *testing.T) {
	_, svc, userID := newLessonFixture(t, "lesson_missing")

	_, err := svc.Get(context.Background(), 9999, userID)
	require.ErrorIs(t, err, ErrLessonNotFound)
}

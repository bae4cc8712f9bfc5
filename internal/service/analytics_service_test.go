package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
)

func completedLesson(userID uint, goalID *uint, title, category string, minutes int, completedAt time.Time) models.Lesson {
	return models.Lesson{
		UserID:      userID,
		GoalID:      goalID,
		Title:       title,
		Type:        models.LessonTypeVideo,
		Category:    category,
		Status:      models.LessonStatusCompleted,
		TimeSpent:   minutes,
		CompletedAt: &completedAt,
	}
}

func TestAnalyticsWindowBucketsAndComparison(t *testing.T) {
	db := openTestDB(t, "analytics_window")

	user := models.User{Username: "nira", Email: "nira@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	goal := models.Goal{UserID: user.ID, Title: "Go mastery", Category: models.CategoryProgramming, Status: models.GoalStatusInProgress}
	require.NoError(t, db.Create(&goal).Error)

	now := time.Now().UTC()
	lessons := []models.Lesson{
		completedLesson(user.ID, &goal.ID, "Slices", "", 30, now.Add(-2*time.Hour)),
		completedLesson(user.ID, &goal.ID, "Maps", "", 20, now.Add(-26*time.Hour)),
		completedLesson(user.ID, nil, "Watercolours", models.CategoryCreative, 15, now.Add(-26*time.Hour)),
		// Previous window only.
		completedLesson(user.ID, nil, "Old lesson", "", 40, now.Add(-8*24*time.Hour)),
	}
	for i := range lessons {
		require.NoError(t, db.Create(&lessons[i]).Error)
	}

	svc := NewAnalyticsService(repository.NewLessonRepository(db), nil, time.Minute, zerolog.Nop())

	response, err := svc.Window(context.Background(), user.ID, "7d")
	require.NoError(t, err)
	require.Equal(t, "7d", response.Period)
	require.Equal(t, 3, response.TotalLessons)
	require.Equal(t, 65, response.TotalTime)

	// Newest-first insertion order; two lessons share the same day.
	require.Len(t, response.DailyProgress, 2)
	require.Equal(t, 1, response.DailyProgress[0].Lessons)
	require.Equal(t, 30, response.DailyProgress[0].TimeSpent)
	require.Equal(t, 2, response.DailyProgress[1].Lessons)
	require.Equal(t, 35, response.DailyProgress[1].TimeSpent)

	// Goal category wins; lessons without a goal fall back to their own.
	require.Len(t, response.CategoryBreakdown, 2)
	require.Equal(t, models.CategoryProgramming, response.CategoryBreakdown[0].Category)
	require.Equal(t, 2, response.CategoryBreakdown[0].Lessons)
	require.Equal(t, models.CategoryCreative, response.CategoryBreakdown[1].Category)

	require.Equal(t, 1, response.Comparison.PreviousPeriodLessons)
	require.Equal(t, 40, response.Comparison.PreviousPeriodTime)
}

func TestAnalyticsWindowUnknownPeriodFallsBack(t *testing.T) {
	db := openTestDB(t, "analytics_period")
	user := models.User{Username: "odin", Email: "odin@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	svc := NewAnalyticsService(repository.NewLessonRepository(db), nil, time.Minute, zerolog.Nop())

	response, err := svc.Window(context.Background(), user.ID, "fortnight")
	require.NoError(t, err)
	require.Equal(t, "7d", response.Period)
	require.Empty(t, response.DailyProgress)
	require.Empty(t, response.CategoryBreakdown)
}

func TestAnalyticsWindowServesCachedCopy(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := openTestDB(t, "analytics_cache")
	user := models.User{Username: "pia", Email: "pia@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	completedAt := time.Now().UTC().Add(-time.Hour)
	lesson := completedLesson(user.ID, nil, "Cached lesson", models.CategoryScience, 30, completedAt)
	require.NoError(t, db.Create(&lesson).Error)

	svc := NewAnalyticsService(repository.NewLessonRepository(db), redisClient, time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Window(ctx, user.ID, "7d")
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, 1, first.TotalLessons)

	// New completions are not visible until the cache entry expires.
	extra := completedLesson(user.ID, nil, "Another", models.CategoryScience, 10, time.Now().UTC())
	require.NoError(t, db.Create(&extra).Error)

	second, err := svc.Window(ctx, user.ID, "7d")
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, 1, second.TotalLessons)
}

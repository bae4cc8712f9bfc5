package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
)

func newDashboardFixture(t *testing.T, name string, cache *redis.Client) (*gorm.DB, DashboardService) {
	t.Helper()
	db := openTestDB(t, name)
	users := repository.NewUserRepository(db)
	goals := repository.NewGoalRepository(db)
	lessons := repository.NewLessonRepository(db)
	events := repository.NewCompletionEventRepository(db)
	stats := NewStatsService(users, lessons, events, nil, "", zerolog.Nop())
	return db, NewDashboardService(users, goals, lessons, stats, cache, time.Minute, zerolog.Nop())
}

func TestDashboardAggregatesGoalsAndLessons(t *testing.T) {
	db, svc := newDashboardFixture(t, "dashboard_aggregate", nil)

	user := models.User{Username: "rika", Email: "rika@example.com", PasswordHash: "x"}
	user.Stats.TotalTimeSpent = 70
	require.NoError(t, db.Create(&user).Error)

	done := models.Goal{UserID: user.ID, Title: "Finish Go course", Category: models.CategoryProgramming, Status: models.GoalStatusCompleted, Progress: 100}
	active := models.Goal{UserID: user.ID, Title: "Learn Spanish", Category: models.CategoryLanguage, Status: models.GoalStatusInProgress, Progress: 30}
	require.NoError(t, db.Create(&done).Error)
	require.NoError(t, db.Create(&active).Error)

	now := time.Now().UTC()
	recent := completedLesson(user.ID, nil, "Goroutines", models.CategoryProgramming, 30, now.Add(-48*time.Hour))
	older := completedLesson(user.ID, nil, "Channels", models.CategoryProgramming, 40, now.Add(-20*24*time.Hour))
	pending := models.Lesson{UserID: user.ID, Title: "Select Statement", Type: models.LessonTypeArticle, Status: models.LessonStatusInProgress}
	require.NoError(t, db.Create(&recent).Error)
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&pending).Error)

	dashboard, err := svc.GetDashboard(context.Background(), user.ID)
	require.NoError(t, err)

	require.Equal(t, 2, dashboard.Goals)
	require.Equal(t, 1, dashboard.CompletedGoals)
	require.Equal(t, 1, dashboard.InProgressGoals)
	require.Equal(t, int64(3), dashboard.TotalLessons)
	require.Equal(t, int64(2), dashboard.CompletedLessons)
	require.Equal(t, 70, dashboard.TotalTimeSpent)
	require.Equal(t, 30, dashboard.TimeThisWeek)
	require.Len(t, dashboard.RecentGoals, 2)
	require.Len(t, dashboard.RecentLessons, 3)
}

func TestDashboardServesCachedCopy(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db, svc := newDashboardFixture(t, "dashboard_cache", redisClient)

	user := models.User{Username: "sofi", Email: "sofi@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	lesson := completedLesson(user.ID, nil, "Goroutines", models.CategoryProgramming, 30, time.Now().UTC())
	require.NoError(t, db.Create(&lesson).Error)

	ctx := context.Background()
	first, err := svc.GetDashboard(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), first.TotalLessons)

	// New rows are invisible until the cache entry expires.
	another := completedLesson(user.ID, nil, "Channels", models.CategoryProgramming, 20, time.Now().UTC())
	require.NoError(t, db.Create(&another).Error)

	second, err := svc.GetDashboard(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), second.TotalLessons)

	mini.FastForward(2 * time.Minute)

	third, err := svc.GetDashboard(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), third.TotalLessons)
}

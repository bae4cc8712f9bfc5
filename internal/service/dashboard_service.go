package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
)

const recentItemLimit = 5

// DashboardService produces the aggregated landing-page view.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error)
}

type dashboardService struct {
	users    repository.UserRepository
	goals    repository.GoalRepository
	lessons  repository.LessonRepository
	stats    StatsService
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(users repository.UserRepository, goals repository.GoalRepository, lessons repository.LessonRepository, stats StatsService, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		users:    users,
		goals:    goals,
		lessons:  lessons,
		stats:    stats,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:%d", userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	// A missed day since the last completion means the persisted streak is
	// stale; recompute before rendering.
	userStats, err := s.stats.RefreshStreak(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	goals, err := s.goals.List(ctx, repository.GoalFilter{UserID: userID})
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	totalLessons, err := s.lessons.Count(ctx, repository.LessonFilter{UserID: userID})
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	completedLessons, err := s.lessons.Count(ctx, repository.LessonFilter{UserID: userID, Status: models.LessonStatusCompleted})
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	now := s.now()
	thisWeek, err := s.lessons.CompletedBetween(ctx, userID, now.Add(-7*24*time.Hour), now)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	recentLessons, err := s.lessons.List(ctx, repository.LessonFilter{UserID: userID, Limit: recentItemLimit})
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := dto.DashboardResponse{
		TotalLessons:     totalLessons,
		CompletedLessons: completedLessons,
		TotalTimeSpent:   userStats.TotalTimeSpent,
		CurrentStreak:    userStats.CurrentStreak,
		LongestStreak:    userStats.LongestStreak,
		RecentLessons:    dto.NewLessonResponseSlice(recentLessons),
	}

	response.Goals = len(goals)
	for _, goal := range goals {
		switch goal.Status {
		case models.GoalStatusCompleted:
			response.CompletedGoals++
		case models.GoalStatusInProgress:
			response.InProgressGoals++
		}
	}

	recentGoals := goals
	if len(recentGoals) > recentItemLimit {
		recentGoals = recentGoals[:recentItemLimit]
	}
	response.RecentGoals = dto.NewGoalResponseSlice(recentGoals)

	for _, lesson := range thisWeek {
		response.TimeThisWeek += lesson.TimeSpent
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

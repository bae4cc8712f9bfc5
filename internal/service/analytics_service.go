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

// AnalyticsService aggregates completion activity over a lookback window.
type AnalyticsService interface {
	Window(ctx context.Context, userID uint, period string) (dto.AnalyticsResponse, error)
}

type analyticsService struct {
	lessons  repository.LessonRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAnalyticsService builds the analytics aggregator. The Redis client is
// optional; without it every request recomputes from the database.
func NewAnalyticsService(lessons repository.LessonRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		lessons:  lessons,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "analytics_service").Logger(),
		now:      time.Now,
	}
}

// windowDuration maps a period token onto its lookback span. Unknown tokens
// fall back to one week.
func windowDuration(period string) (string, time.Duration) {
	switch period {
	case "24h":
		return "24h", 24 * time.Hour
	case "30d":
		return "30d", 30 * 24 * time.Hour
	case "90d":
		return "90d", 90 * 24 * time.Hour
	case "7d", "":
		return "7d", 7 * 24 * time.Hour
	default:
		return "7d", 7 * 24 * time.Hour
	}
}

func (s *analyticsService) Window(ctx context.Context, userID uint, period string) (dto.AnalyticsResponse, error) {
	normalized, span := windowDuration(period)
	cacheKey := fmt.Sprintf("analytics:%d:%s", userID, normalized)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.AnalyticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
		}
	}

	now := s.now()
	from := now.Add(-span)

	lessons, err := s.lessons.CompletedBetween(ctx, userID, from, now)
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}
	previous, err := s.lessons.CompletedBetween(ctx, userID, from.Add(-span), from)
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}

	response := s.buildResponse(normalized, lessons, previous)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
			}
		}
	}

	return response, nil
}

func (s *analyticsService) buildResponse(period string, lessons, previous []models.Lesson) dto.AnalyticsResponse {
	response := dto.AnalyticsResponse{
		Period:            period,
		DailyProgress:     []dto.DayBucket{},
		CategoryBreakdown: []dto.CategoryBucket{},
	}

	dayIndex := map[string]int{}
	categoryIndex := map[string]int{}

	for _, lesson := range lessons {
		response.TotalLessons++
		response.TotalTime += lesson.TimeSpent

		day := ""
		if lesson.CompletedAt != nil {
			day = lesson.CompletedAt.UTC().Format("2006-01-02")
		}
		if i, exists := dayIndex[day]; exists {
			response.DailyProgress[i].Lessons++
			response.DailyProgress[i].TimeSpent += lesson.TimeSpent
		} else {
			dayIndex[day] = len(response.DailyProgress)
			response.DailyProgress = append(response.DailyProgress, dto.DayBucket{
				Date:      day,
				Lessons:   1,
				TimeSpent: lesson.TimeSpent,
			})
		}

		category := lesson.ResolvedCategory()
		if i, exists := categoryIndex[category]; exists {
			response.CategoryBreakdown[i].Lessons++
			response.CategoryBreakdown[i].TimeSpent += lesson.TimeSpent
		} else {
			categoryIndex[category] = len(response.CategoryBreakdown)
			response.CategoryBreakdown = append(response.CategoryBreakdown, dto.CategoryBucket{
				Category:  category,
				Lessons:   1,
				TimeSpent: lesson.TimeSpent,
			})
		}
	}

	for _, lesson := range previous {
		response.Comparison.PreviousPeriodLessons++
		response.Comparison.PreviousPeriodTime += lesson.TimeSpent
	}

	return response
}

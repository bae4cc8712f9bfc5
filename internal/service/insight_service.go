package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
	"github.com/dzakyhdr/learntrack-api/pkg/ai"
)

const insightLookback = 7 * 24 * time.Hour

// InsightService renders learning insights. The rule-based core always
// succeeds; an AI analysis is attached opportunistically when the advisor
// responds in time.
type InsightService interface {
	Insights(ctx context.Context, userID uint) (dto.InsightsResponse, error)
}

type insightService struct {
	users   repository.UserRepository
	goals   repository.GoalRepository
	lessons repository.LessonRepository
	advisor AdvisorService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewInsightService builds the insight generator.
func NewInsightService(users repository.UserRepository, goals repository.GoalRepository, lessons repository.LessonRepository, advisor AdvisorService, logger zerolog.Logger) InsightService {
	return &insightService{
		users:   users,
		goals:   goals,
		lessons: lessons,
		advisor: advisor,
		logger:  logger.With().Str("component", "insight_service").Logger(),
		now:     time.Now,
	}
}

func (s *insightService) Insights(ctx context.Context, userID uint) (dto.InsightsResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.InsightsResponse{}, err
	}
	goals, err := s.goals.List(ctx, repository.GoalFilter{UserID: userID})
	if err != nil {
		return dto.InsightsResponse{}, err
	}

	now := s.now()
	recent, err := s.lessons.CompletedBetween(ctx, userID, now.Add(-insightLookback), now)
	if err != nil {
		return dto.InsightsResponse{}, err
	}

	response := dto.InsightsResponse{
		LearningVelocity: learningVelocity(recent),
		GoalProgress:     summariseGoals(goals),
		TimeDistribution: timeDistribution(recent),
		Recommendations:  recommendations(recent, goals),
		Strengths:        strengths(recent),
		Improvements:     improvements(recent, user.DailyGoalMinutes),
	}

	response.AIAnalysis = s.tryAnalysis(ctx, user, recent)
	return response, nil
}

// tryAnalysis asks the advisor for an enriched analysis. Any failure leaves
// the rule-based payload untouched.
func (s *insightService) tryAnalysis(ctx context.Context, user models.User, recent []models.Lesson) *ai.ProgressAnalysis {
	summaries := make([]ai.LessonSummary, 0, len(recent))
	for _, lesson := range recent {
		summaries = append(summaries, ai.LessonSummary{Title: lesson.Title, Minutes: lesson.TimeSpent})
	}

	analysis, err := s.advisor.AnalyzeProgress(ctx, ai.StatsSnapshot{
		TotalLessonsCompleted: user.Stats.TotalLessonsCompleted,
		TotalTimeSpent:        user.Stats.TotalTimeSpent,
		CurrentStreak:         user.Stats.CurrentStreak,
		TotalGoalsAchieved:    user.Stats.TotalGoalsAchieved,
	}, summaries)
	if err != nil {
		s.logger.Debug().Err(err).Msg("ai analysis unavailable, serving rule-based insights only")
		return nil
	}
	return &analysis
}

// learningVelocity is the average study time per day over the lookback
// window, in minutes rounded to the nearest whole minute.
func learningVelocity(recent []models.Lesson) int {
	var total int
	for _, lesson := range recent {
		total += lesson.TimeSpent
	}
	days := int(insightLookback / (24 * time.Hour))
	return int(math.Round(float64(total) / float64(days)))
}

func summariseGoals(goals []models.Goal) dto.GoalProgressSummary {
	summary := dto.GoalProgressSummary{Total: len(goals)}
	if len(goals) == 0 {
		return summary
	}

	var progressSum int
	for _, goal := range goals {
		progressSum += goal.Progress
		switch goal.Status {
		case models.GoalStatusCompleted:
			summary.Completed++
		case models.GoalStatusInProgress:
			summary.InProgress++
		}
	}
	summary.AverageProgress = progressSum / len(goals)
	return summary
}

func timeDistribution(recent []models.Lesson) []dto.CategoryMinutes {
	distribution := []dto.CategoryMinutes{}
	index := map[string]int{}
	for _, lesson := range recent {
		category := lesson.ResolvedCategory()
		if i, exists := index[category]; exists {
			distribution[i].Minutes += lesson.TimeSpent
		} else {
			index[category] = len(distribution)
			distribution = append(distribution, dto.CategoryMinutes{Category: category, Minutes: lesson.TimeSpent})
		}
	}
	return distribution
}

func recommendations(recent []models.Lesson, goals []models.Goal) []string {
	out := []string{}

	if len(recent) == 0 {
		out = append(out, "You haven't completed any lessons this week. Start with a short one to build momentum.")
	} else if len(recent) < 3 {
		out = append(out, "Try to complete at least one lesson per day to keep a steady pace.")
	}

	var inProgress int
	for _, goal := range goals {
		if goal.Status == models.GoalStatusInProgress {
			inProgress++
		}
	}
	if inProgress > 3 {
		out = append(out, fmt.Sprintf("You have %d goals in progress. Focusing on fewer goals at a time usually works better.", inProgress))
	}

	return out
}

func strengths(recent []models.Lesson) []string {
	out := []string{}

	if len(recent) >= 5 {
		out = append(out, "Consistent learner: five or more lessons completed this week.")
	}

	if len(recent) > 0 {
		var total int
		for _, lesson := range recent {
			total += lesson.TimeSpent
		}
		if total/len(recent) >= 20 {
			out = append(out, "Deep focus: your average session runs 20 minutes or more.")
		}
	}

	return out
}

func improvements(recent []models.Lesson, dailyGoalMinutes int) []string {
	out := []string{}
	if dailyGoalMinutes <= 0 {
		return out
	}

	var total int
	for _, lesson := range recent {
		total += lesson.TimeSpent
	}
	dailyAverage := total / 7
	if dailyAverage < dailyGoalMinutes {
		out = append(out, fmt.Sprintf("You're averaging %d minutes per day against a %d minute goal. Short daily sessions close the gap.", dailyAverage, dailyGoalMinutes))
	}
	return out
}

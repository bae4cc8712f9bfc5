package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
	"github.com/dzakyhdr/learntrack-api/pkg/ai"
)

const recommendationLookback = 30 * 24 * time.Hour

// AIService backs the explicit AI generation endpoints. Unlike insights,
// these surface advisor failures to the caller instead of falling back.
type AIService interface {
	StudyPlan(ctx context.Context, userID uint) (ai.StudyPlan, error)
	RecommendLessons(ctx context.Context, userID uint) ([]ai.LessonRecommendation, error)
	AnalyzeProgress(ctx context.Context, userID uint) (ai.ProgressAnalysis, error)
	GenerateMilestones(ctx context.Context, userID uint, payload dto.MilestoneGenerateRequest) ([]ai.MilestoneSuggestion, error)
}

type aiService struct {
	users     repository.UserRepository
	goals     repository.GoalRepository
	lessons   repository.LessonRepository
	advisor   AdvisorService
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAIService builds the AI generation service.
func NewAIService(users repository.UserRepository, goals repository.GoalRepository, lessons repository.LessonRepository, advisor AdvisorService, validate *validator.Validate, logger zerolog.Logger) AIService {
	return &aiService{
		users:     users,
		goals:     goals,
		lessons:   lessons,
		advisor:   advisor,
		validator: validate,
		logger:    logger.With().Str("component", "ai_service").Logger(),
		now:       time.Now,
	}
}

func (s *aiService) StudyPlan(ctx context.Context, userID uint) (ai.StudyPlan, error) {
	profile, goals, err := s.loadContext(ctx, userID)
	if err != nil {
		return ai.StudyPlan{}, err
	}
	return s.advisor.StudyPlan(ctx, profile, goals)
}

func (s *aiService) RecommendLessons(ctx context.Context, userID uint) ([]ai.LessonRecommendation, error) {
	profile, goals, err := s.loadContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	recent, err := s.lessons.CompletedBetween(ctx, userID, now.Add(-recommendationLookback), now)
	if err != nil {
		return nil, err
	}

	completed := make([]ai.LessonSummary, 0, len(recent))
	for _, lesson := range recent {
		completed = append(completed, ai.LessonSummary{Title: lesson.Title, Minutes: lesson.TimeSpent})
	}

	return s.advisor.RecommendLessons(ctx, completed, goals, profile)
}

func (s *aiService) AnalyzeProgress(ctx context.Context, userID uint) (ai.ProgressAnalysis, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ai.ProgressAnalysis{}, err
	}

	now := s.now()
	recent, err := s.lessons.CompletedBetween(ctx, userID, now.Add(-insightLookback), now)
	if err != nil {
		return ai.ProgressAnalysis{}, err
	}

	summaries := make([]ai.LessonSummary, 0, len(recent))
	for _, lesson := range recent {
		summaries = append(summaries, ai.LessonSummary{Title: lesson.Title, Minutes: lesson.TimeSpent})
	}

	return s.advisor.AnalyzeProgress(ctx, ai.StatsSnapshot{
		TotalLessonsCompleted: user.Stats.TotalLessonsCompleted,
		TotalTimeSpent:        user.Stats.TotalTimeSpent,
		CurrentStreak:         user.Stats.CurrentStreak,
		TotalGoalsAchieved:    user.Stats.TotalGoalsAchieved,
	}, summaries)
}

func (s *aiService) GenerateMilestones(ctx context.Context, userID uint, payload dto.MilestoneGenerateRequest) ([]ai.MilestoneSuggestion, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	return s.advisor.SuggestMilestones(ctx, ai.MilestoneRequest{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Difficulty:  payload.Difficulty,
	})
}

func (s *aiService) loadContext(ctx context.Context, userID uint) (ai.UserProfile, []ai.GoalSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ai.UserProfile{}, nil, err
	}

	goals, err := s.goals.List(ctx, repository.GoalFilter{UserID: userID})
	if err != nil {
		return ai.UserProfile{}, nil, err
	}

	profile := ai.UserProfile{
		SkillLevel:          user.SkillLevel,
		LearningPreferences: user.LearnPrefs,
		DailyGoalMinutes:    user.DailyGoalMinutes,
	}

	summaries := make([]ai.GoalSummary, 0, len(goals))
	for _, goal := range goals {
		if goal.Status == models.GoalStatusCancelled {
			continue
		}
		summaries = append(summaries, ai.GoalSummary{
			Title:      goal.Title,
			Category:   goal.Category,
			Difficulty: goal.Difficulty,
			Progress:   goal.Progress,
		})
	}

	return profile, summaries, nil
}

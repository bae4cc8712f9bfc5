package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dzakyhdr/learntrack-api/pkg/ai"
)

// ErrAdvisorUnavailable indicates the AI advisor is not configured or the
// breaker is open after repeated failures.
var ErrAdvisorUnavailable = errors.New("ai advisor unavailable")

// AdvisorService guards the AI collaborator with a consecutive-failure
// breaker. When the advisor keeps failing, calls short-circuit with
// ErrAdvisorUnavailable until the cooldown passes, so request latency stays
// bounded and callers fall back to rule-based output.
type AdvisorService interface {
	StudyPlan(ctx context.Context, profile ai.UserProfile, goals []ai.GoalSummary) (ai.StudyPlan, error)
	RecommendLessons(ctx context.Context, completed []ai.LessonSummary, goals []ai.GoalSummary, profile ai.UserProfile) ([]ai.LessonRecommendation, error)
	AnalyzeProgress(ctx context.Context, stats ai.StatsSnapshot, recent []ai.LessonSummary) (ai.ProgressAnalysis, error)
	SuggestMilestones(ctx context.Context, request ai.MilestoneRequest) ([]ai.MilestoneSuggestion, error)
}

type advisorService struct {
	advisor ai.Advisor
	logger  zerolog.Logger
	now     func() time.Time

	mu        sync.Mutex
	failures  int
	openUntil time.Time
}

const (
	breakerThreshold = 3
	breakerCooldown  = 2 * time.Minute
)

// NewAdvisorService wraps an advisor with the breaker. A nil advisor yields
// a service that always reports ErrAdvisorUnavailable.
func NewAdvisorService(advisor ai.Advisor, logger zerolog.Logger) AdvisorService {
	return &advisorService{
		advisor: advisor,
		logger:  logger.With().Str("component", "advisor_service").Logger(),
		now:     time.Now,
	}
}

// allow reports whether a call may go through to the advisor.
func (s *advisorService) allow() bool {
	if s.advisor == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures < breakerThreshold {
		return true
	}
	if s.now().After(s.openUntil) {
		// Half-open: let one call probe the advisor.
		s.failures = breakerThreshold - 1
		return true
	}
	return false
}

func (s *advisorService) observe(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.failures = 0
		return
	}
	s.failures++
	if s.failures >= breakerThreshold {
		s.openUntil = s.now().Add(breakerCooldown)
		s.logger.Warn().Int("failures", s.failures).Time("open_until", s.openUntil).Msg("advisor breaker opened")
	}
}

func (s *advisorService) StudyPlan(ctx context.Context, profile ai.UserProfile, goals []ai.GoalSummary) (ai.StudyPlan, error) {
	if !s.allow() {
		return ai.StudyPlan{}, ErrAdvisorUnavailable
	}
	plan, err := s.advisor.StudyPlan(ctx, profile, goals)
	s.observe(err)
	if err != nil {
		return ai.StudyPlan{}, err
	}
	return plan, nil
}

func (s *advisorService) RecommendLessons(ctx context.Context, completed []ai.LessonSummary, goals []ai.GoalSummary, profile ai.UserProfile) ([]ai.LessonRecommendation, error) {
	if !s.allow() {
		return nil, ErrAdvisorUnavailable
	}
	recommendations, err := s.advisor.RecommendLessons(ctx, completed, goals, profile)
	s.observe(err)
	if err != nil {
		return nil, err
	}
	return recommendations, nil
}

func (s *advisorService) AnalyzeProgress(ctx context.Context, stats ai.StatsSnapshot, recent []ai.LessonSummary) (ai.ProgressAnalysis, error) {
	if !s.allow() {
		return ai.ProgressAnalysis{}, ErrAdvisorUnavailable
	}
	analysis, err := s.advisor.AnalyzeProgress(ctx, stats, recent)
	s.observe(err)
	if err != nil {
		return ai.ProgressAnalysis{}, err
	}
	return analysis, nil
}

func (s *advisorService) SuggestMilestones(ctx context.Context, request ai.MilestoneRequest) ([]ai.MilestoneSuggestion, error) {
	if !s.allow() {
		return nil, ErrAdvisorUnavailable
	}
	suggestions, err := s.advisor.SuggestMilestones(ctx, request)
	s.observe(err)
	if err != nil {
		return nil, err
	}
	return suggestions, nil
}

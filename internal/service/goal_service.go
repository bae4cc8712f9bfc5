package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/ledger"
	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
	"github.com/dzakyhdr/learntrack-api/pkg/ai"
)

// ErrGoalNotFound indicates the goal does not exist or belongs to someone else.
var ErrGoalNotFound = errors.New("goal not found")

// ErrMilestoneNotFound indicates the milestone index is out of bounds.
var ErrMilestoneNotFound = errors.New("milestone not found")

// ErrInvalidProgress indicates a progress value outside [0,100].
var ErrInvalidProgress = errors.New("progress must be between 0 and 100")

// ErrInvalidTargetDate indicates a target date that is not RFC 3339.
var ErrInvalidTargetDate = errors.New("target date must be RFC 3339")

// GoalService exposes goal and milestone use cases.
type GoalService interface {
	List(ctx context.Context, userID uint, filter repository.GoalFilter) ([]dto.GoalResponse, error)
	Get(ctx context.Context, id, userID uint) (dto.GoalResponse, error)
	Create(ctx context.Context, userID uint, payload dto.GoalCreateRequest) (dto.GoalResponse, error)
	Update(ctx context.Context, id, userID uint, payload dto.GoalUpdateRequest) (dto.GoalResponse, error)
	Delete(ctx context.Context, id, userID uint) error
	SetProgress(ctx context.Context, id, userID uint, progress int) (dto.GoalResponse, error)
	UpdateMilestone(ctx context.Context, goalID, userID uint, index int, payload dto.MilestonePatchRequest) (dto.GoalResponse, error)
}

type goalService struct {
	repo      repository.GoalRepository
	stats     StatsService
	advisor   AdvisorService
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGoalService builds a goal service.
func NewGoalService(repo repository.GoalRepository, stats StatsService, advisor AdvisorService, validate *validator.Validate, logger zerolog.Logger) GoalService {
	return &goalService{
		repo:      repo,
		stats:     stats,
		advisor:   advisor,
		validator: validate,
		logger:    logger.With().Str("component", "goal_service").Logger(),
		now:       time.Now,
	}
}

func (s *goalService) List(ctx context.Context, userID uint, filter repository.GoalFilter) ([]dto.GoalResponse, error) {
	filter.UserID = userID
	goals, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewGoalResponseSlice(goals), nil
}

func (s *goalService) Get(ctx context.Context, id, userID uint) (dto.GoalResponse, error) {
	goal, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GoalResponse{}, ErrGoalNotFound
		}
		return dto.GoalResponse{}, err
	}
	return dto.NewGoalResponse(goal), nil
}

func (s *goalService) Create(ctx context.Context, userID uint, payload dto.GoalCreateRequest) (dto.GoalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GoalResponse{}, err
	}

	targetDate, err := time.Parse(time.RFC3339, payload.TargetDate)
	if err != nil {
		return dto.GoalResponse{}, ErrInvalidTargetDate
	}

	goal := models.Goal{
		UserID:          userID,
		Title:           payload.Title,
		Description:     payload.Description,
		Category:        payload.Category,
		Difficulty:      defaultString(payload.Difficulty, models.SkillBeginner),
		TargetDate:      targetDate,
		Status:          models.GoalStatusNotStarted,
		EstimatedHours:  payload.EstimatedHours,
		LessonsRequired: payload.LessonsRequired,
		Priority:        defaultString(payload.Priority, "medium"),
		Tags:            payload.Tags,
	}

	for i, input := range payload.Milestones {
		goal.Milestones = append(goal.Milestones, models.Milestone{
			Title:       input.Title,
			Description: input.Description,
			SortOrder:   i + 1,
		})
	}

	if payload.GenerateMilestones && len(goal.Milestones) == 0 {
		goal.Milestones = s.generateMilestones(ctx, payload)
	}

	if err := s.repo.Create(ctx, &goal); err != nil {
		return dto.GoalResponse{}, err
	}

	s.logger.Info().Uint("goal_id", goal.ID).Uint("user_id", userID).Msg("goal created")
	return dto.NewGoalResponse(goal), nil
}

// generateMilestones asks the advisor for a breakdown. Advisor failure is
// never fatal to goal creation; the goal is simply created without milestones.
func (s *goalService) generateMilestones(ctx context.Context, payload dto.GoalCreateRequest) []models.Milestone {
	suggestions, err := s.advisor.SuggestMilestones(ctx, ai.MilestoneRequest{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Difficulty:  defaultString(payload.Difficulty, models.SkillBeginner),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("milestone suggestion unavailable, creating goal without milestones")
		return nil
	}

	milestones := make([]models.Milestone, 0, len(suggestions))
	for i, suggestion := range suggestions {
		milestones = append(milestones, models.Milestone{
			Title:       suggestion.Title,
			Description: suggestion.Description,
			SortOrder:   i + 1,
		})
	}
	return milestones
}

func (s *goalService) Update(ctx context.Context, id, userID uint, payload dto.GoalUpdateRequest) (dto.GoalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GoalResponse{}, err
	}

	goal, err := s.repo.UpdateWithLock(ctx, id, userID, func(goal *models.Goal) error {
		if payload.Title != nil {
			goal.Title = *payload.Title
		}
		if payload.Description != nil {
			goal.Description = *payload.Description
		}
		if payload.Category != nil {
			goal.Category = *payload.Category
		}
		if payload.Difficulty != nil {
			goal.Difficulty = *payload.Difficulty
		}
		if payload.TargetDate != nil {
			targetDate, err := time.Parse(time.RFC3339, *payload.TargetDate)
			if err != nil {
				return ErrInvalidTargetDate
			}
			goal.TargetDate = targetDate
		}
		if payload.Status != nil {
			switch *payload.Status {
			case models.GoalStatusPaused, models.GoalStatusCancelled:
				// Parking is the only status the owner writes directly.
				goal.Status = *payload.Status
			default:
				// Resuming: status is derived from progress, never
				// taken verbatim from the request.
				goal.Status = ledger.StatusForProgress(goal.Progress)
			}
		}
		if payload.EstimatedHours != nil {
			goal.EstimatedHours = *payload.EstimatedHours
		}
		if payload.LessonsRequired != nil {
			goal.LessonsRequired = *payload.LessonsRequired
		}
		if payload.Priority != nil {
			goal.Priority = *payload.Priority
		}
		if payload.Tags != nil {
			goal.Tags = payload.Tags
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GoalResponse{}, ErrGoalNotFound
		}
		return dto.GoalResponse{}, err
	}

	return dto.NewGoalResponse(goal), nil
}

func (s *goalService) Delete(ctx context.Context, id, userID uint) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGoalNotFound
		}
		return err
	}
	return nil
}

func (s *goalService) SetProgress(ctx context.Context, id, userID uint, progress int) (dto.GoalResponse, error) {
	var achieved bool
	goal, err := s.repo.UpdateWithLock(ctx, id, userID, func(goal *models.Goal) error {
		wasCompleted := goal.Status == models.GoalStatusCompleted
		if err := ledger.SetGoalProgress(goal, progress); err != nil {
			return err
		}
		achieved = !wasCompleted && goal.Status == models.GoalStatusCompleted
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.GoalResponse{}, ErrGoalNotFound
		case errors.Is(err, ledger.ErrProgressOutOfRange):
			return dto.GoalResponse{}, ErrInvalidProgress
		}
		return dto.GoalResponse{}, err
	}

	if achieved {
		s.recordAchievement(ctx, goal)
	}

	return dto.NewGoalResponse(goal), nil
}

func (s *goalService) UpdateMilestone(ctx context.Context, goalID, userID uint, index int, payload dto.MilestonePatchRequest) (dto.GoalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GoalResponse{}, err
	}

	patch := ledger.MilestonePatch{
		Title:       payload.Title,
		Description: payload.Description,
		Completed:   payload.Completed,
	}

	var achieved bool
	goal, err := s.repo.UpdateWithLock(ctx, goalID, userID, func(goal *models.Goal) error {
		wasCompleted := goal.Status == models.GoalStatusCompleted
		if err := ledger.ApplyMilestonePatch(goal, index, patch, s.now()); err != nil {
			return err
		}
		achieved = !wasCompleted && goal.Status == models.GoalStatusCompleted
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.GoalResponse{}, ErrGoalNotFound
		case errors.Is(err, ledger.ErrMilestoneNotFound):
			return dto.GoalResponse{}, ErrMilestoneNotFound
		}
		return dto.GoalResponse{}, err
	}

	if achieved {
		s.recordAchievement(ctx, goal)
	}

	return dto.NewGoalResponse(goal), nil
}

func (s *goalService) recordAchievement(ctx context.Context, goal models.Goal) {
	if s.stats == nil {
		return
	}
	if err := s.stats.RecordGoalAchieved(ctx, goal.UserID); err != nil {
		s.logger.Error().Err(err).Uint("goal_id", goal.ID).Msg("failed to record goal achievement")
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

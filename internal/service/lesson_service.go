package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/ledger"
	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
)

// ErrLessonNotFound indicates the lesson does not exist or belongs to someone else.
var ErrLessonNotFound = errors.New("lesson not found")

// LessonService exposes lesson CRUD and the progress tracking use cases.
type LessonService interface {
	List(ctx context.Context, userID uint, filter repository.LessonFilter) ([]dto.LessonResponse, error)
	Get(ctx context.Context, id, userID uint) (dto.LessonResponse, error)
	Create(ctx context.Context, userID uint, payload dto.LessonCreateRequest) (dto.LessonResponse, error)
	Update(ctx context.Context, id, userID uint, payload dto.LessonUpdateRequest) (dto.LessonResponse, error)
	Delete(ctx context.Context, id, userID uint) error
	Start(ctx context.Context, id, userID uint) (dto.LessonResponse, error)
	UpdateProgress(ctx context.Context, id, userID uint, payload dto.LessonProgressRequest) (dto.LessonResponse, error)
	Complete(ctx context.Context, id, userID uint, payload dto.LessonCompleteRequest) (dto.LessonResponse, error)
}

type lessonService struct {
	repo      repository.LessonRepository
	goals     repository.GoalRepository
	stats     StatsService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLessonService builds a lesson service.
func NewLessonService(repo repository.LessonRepository, goals repository.GoalRepository, stats StatsService, validate *validator.Validate, logger zerolog.Logger) LessonService {
	return &lessonService{
		repo:      repo,
		goals:     goals,
		stats:     stats,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "lesson_service").Logger(),
		now:       time.Now,
	}
}

func (s *lessonService) List(ctx context.Context, userID uint, filter repository.LessonFilter) ([]dto.LessonResponse, error) {
	filter.UserID = userID
	lessons, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewLessonResponseSlice(lessons), nil
}

func (s *lessonService) Get(ctx context.Context, id, userID uint) (dto.LessonResponse, error) {
	lesson, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}
	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Create(ctx context.Context, userID uint, payload dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	if payload.GoalID != nil {
		if err := s.checkGoalOwnership(ctx, *payload.GoalID, userID); err != nil {
			return dto.LessonResponse{}, err
		}
	}

	lesson := models.Lesson{
		UserID:          userID,
		Title:           payload.Title,
		Description:     payload.Description,
		Type:            payload.Type,
		Category:        payload.Category,
		GoalID:          payload.GoalID,
		Platform:        defaultString(payload.Platform, "custom"),
		URL:             payload.URL,
		VideoID:         payload.VideoID,
		DurationSeconds: payload.DurationSeconds,
		Thumbnail:       payload.Thumbnail,
		Notes:           s.sanitizer.Sanitize(payload.Notes),
		Status:          models.LessonStatusNotStarted,
	}

	if err := s.repo.Create(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	s.logger.Info().Uint("lesson_id", lesson.ID).Uint("user_id", userID).Msg("lesson created")
	return s.Get(ctx, lesson.ID, userID)
}

func (s *lessonService) Update(ctx context.Context, id, userID uint, payload dto.LessonUpdateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	if payload.GoalID != nil {
		if err := s.checkGoalOwnership(ctx, *payload.GoalID, userID); err != nil {
			return dto.LessonResponse{}, err
		}
	}

	lesson, err := s.repo.UpdateWithLock(ctx, id, userID, func(lesson *models.Lesson) error {
		if payload.Title != nil {
			lesson.Title = *payload.Title
		}
		if payload.Description != nil {
			lesson.Description = *payload.Description
		}
		if payload.Category != nil {
			lesson.Category = *payload.Category
		}
		if payload.GoalID != nil {
			lesson.GoalID = payload.GoalID
		}
		if payload.Notes != nil {
			lesson.Notes = s.sanitizer.Sanitize(*payload.Notes)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}
	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Delete(ctx context.Context, id, userID uint) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}
	return nil
}

func (s *lessonService) Start(ctx context.Context, id, userID uint) (dto.LessonResponse, error) {
	lesson, err := s.repo.UpdateWithLock(ctx, id, userID, func(lesson *models.Lesson) error {
		ledger.StartLesson(lesson, s.now())
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}
	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) UpdateProgress(ctx context.Context, id, userID uint, payload dto.LessonProgressRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	var event *ledger.CompletionEvent
	lesson, err := s.repo.UpdateWithLock(ctx, id, userID, func(lesson *models.Lesson) error {
		event = ledger.UpdateLessonProgress(lesson, payload.CompletionPercentage, payload.TimeSpent, s.now())
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}

	if event != nil {
		s.applyCompletion(ctx, *event)
		s.refreshGoalRollup(ctx, lesson)
	}
	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Complete(ctx context.Context, id, userID uint, payload dto.LessonCompleteRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	var event ledger.CompletionEvent
	lesson, err := s.repo.UpdateWithLock(ctx, id, userID, func(lesson *models.Lesson) error {
		event = ledger.CompleteLesson(lesson, payload.TimeSpent, payload.Rating, s.now())
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}

	s.applyCompletion(ctx, event)
	s.refreshGoalRollup(ctx, lesson)
	return dto.NewLessonResponse(lesson), nil
}

// applyCompletion forwards the event to the stats updater. The event table's
// unique key makes delivery at-most-once, so a failure here only delays
// counters until the next completion; the lesson row is already committed.
func (s *lessonService) applyCompletion(ctx context.Context, event ledger.CompletionEvent) {
	if err := s.stats.ApplyCompletion(ctx, event); err != nil {
		s.logger.Error().Err(err).Uint("lesson_id", event.LessonID).Msg("failed to apply completion event")
	}
}

// refreshGoalRollup recomputes the goal's completed-lesson counters from the
// lesson table, so a replayed completion cannot double-count. Best effort:
// the lesson row is already committed, the rollup catches up on the next
// completion if this one fails.
func (s *lessonService) refreshGoalRollup(ctx context.Context, lesson models.Lesson) {
	if lesson.GoalID == nil {
		return
	}

	count, minutes, err := s.repo.GoalTotals(ctx, *lesson.GoalID)
	if err != nil {
		s.logger.Error().Err(err).Uint("goal_id", *lesson.GoalID).Msg("failed to total completed lessons for goal")
		return
	}

	_, err = s.goals.UpdateWithLock(ctx, *lesson.GoalID, lesson.UserID, func(goal *models.Goal) error {
		goal.LessonsDone = int(count)
		goal.ActualHours = int(math.Round(float64(minutes) / 60))
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Uint("goal_id", *lesson.GoalID).Msg("failed to update goal lesson rollup")
	}
}

func (s *lessonService) checkGoalOwnership(ctx context.Context, goalID, userID uint) error {
	if _, err := s.goals.GetByID(ctx, goalID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGoalNotFound
		}
		return err
	}
	return nil
}

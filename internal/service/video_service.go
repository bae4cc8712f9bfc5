package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
	"github.com/dzakyhdr/learntrack-api/pkg/videocat"
)

// ErrLessonExists indicates the owner already saved this video as a lesson.
var ErrLessonExists = errors.New("video already saved as a lesson")

// ErrVideoNotFound indicates the external catalog has no such video.
var ErrVideoNotFound = errors.New("video not found")

// ErrCatalogUnavailable indicates the video catalog is not configured.
var ErrCatalogUnavailable = errors.New("video catalog unavailable")

// VideoService proxies the external video catalog and turns catalog hits
// into lessons.
type VideoService interface {
	Search(ctx context.Context, query string, maxResults int64) ([]videocat.Video, error)
	Details(ctx context.Context, videoID string) (videocat.Video, error)
	Trending(ctx context.Context) ([]videocat.Video, error)
	SaveAsLesson(ctx context.Context, userID uint, payload dto.SaveVideoRequest) (dto.LessonResponse, error)
}

type videoService struct {
	catalog   videocat.Catalog
	lessons   repository.LessonRepository
	goals     repository.GoalRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewVideoService builds a video service. The catalog is optional; without
// it search endpoints report ErrCatalogUnavailable but save-as-lesson still
// works from client-supplied metadata.
func NewVideoService(catalog videocat.Catalog, lessons repository.LessonRepository, goals repository.GoalRepository, validate *validator.Validate, logger zerolog.Logger) VideoService {
	return &videoService{
		catalog:   catalog,
		lessons:   lessons,
		goals:     goals,
		validator: validate,
		logger:    logger.With().Str("component", "video_service").Logger(),
	}
}

func (s *videoService) Search(ctx context.Context, query string, maxResults int64) ([]videocat.Video, error) {
	if s.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	return s.catalog.Search(ctx, query, maxResults)
}

func (s *videoService) Details(ctx context.Context, videoID string) (videocat.Video, error) {
	if s.catalog == nil {
		return videocat.Video{}, ErrCatalogUnavailable
	}
	video, err := s.catalog.VideoDetails(ctx, videoID)
	if err != nil {
		if errors.Is(err, videocat.ErrVideoNotFound) {
			return videocat.Video{}, ErrVideoNotFound
		}
		return videocat.Video{}, err
	}
	return video, nil
}

func (s *videoService) Trending(ctx context.Context) ([]videocat.Video, error) {
	if s.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	return s.catalog.TrendingEducation(ctx)
}

func (s *videoService) SaveAsLesson(ctx context.Context, userID uint, payload dto.SaveVideoRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	if _, err := s.lessons.FindByVideoID(ctx, userID, payload.VideoID); err == nil {
		return dto.LessonResponse{}, ErrLessonExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.LessonResponse{}, err
	}

	if payload.GoalID != nil {
		if _, err := s.goals.GetByID(ctx, *payload.GoalID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.LessonResponse{}, ErrGoalNotFound
			}
			return dto.LessonResponse{}, err
		}
	}

	duration := payload.DurationSeconds
	if duration == 0 && payload.Duration != "" {
		if parsed, err := videocat.ParseISODuration(payload.Duration); err == nil {
			duration = parsed
		}
	}

	lesson := models.Lesson{
		UserID:          userID,
		Title:           payload.Title,
		Description:     payload.Description,
		Type:            models.LessonTypeVideo,
		Category:        payload.Category,
		GoalID:          payload.GoalID,
		Platform:        "youtube",
		URL:             "https://www.youtube.com/watch?v=" + payload.VideoID,
		VideoID:         payload.VideoID,
		DurationSeconds: duration,
		Thumbnail:       payload.Thumbnail,
		Status:          models.LessonStatusNotStarted,
	}

	if err := s.lessons.Create(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	s.logger.Info().Uint("lesson_id", lesson.ID).Str("video_id", payload.VideoID).Msg("video saved as lesson")
	return dto.NewLessonResponse(lesson), nil
}

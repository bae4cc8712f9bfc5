package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
	"github.com/dzakyhdr/learntrack-api/pkg/videocat"
)

type stubCatalog struct {
	videos []videocat.Video
	err    error
}

func (s *stubCatalog) Search(ctx context.Context, query string, maxResults int64) ([]videocat.Video, error) {
	return s.videos, s.err
}

func (s *stubCatalog) VideoDetails(ctx context.Context, videoID string) (videocat.Video, error) {
	for _, video := range s.videos {
		if video.ID == videoID {
			return video, s.err
		}
	}
	if s.err != nil {
		return videocat.Video{}, s.err
	}
	return videocat.Video{}, videocat.ErrVideoNotFound
}

func (s *stubCatalog) TrendingEducation(ctx context.Context) ([]videocat.Video, error) {
	return s.videos, s.err
}

func newVideoFixture(t *testing.T, name string, catalog videocat.Catalog) (VideoService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t, name)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewVideoService(catalog, repository.NewLessonRepository(db), repository.NewGoalRepository(db), validate, zerolog.Nop())
	return svc, db
}

func TestSaveAsLessonNormalisesDuration(t *testing.T) {
	svc, _ := newVideoFixture(t, "video_save", nil)

	lesson, err := svc.SaveAsLesson(context.Background(), 1, dto.SaveVideoRequest{
		VideoID:  "abc123",
		Title:    "Goroutines Explained",
		Duration: "PT1H30M",
		Category: "programming",
	})
	require.NoError(t, err)
	require.Equal(t, "youtube", lesson.Platform)
	require.Equal(t, models.LessonTypeVideo, lesson.Type)
	require.Equal(t, "https://www.youtube.com/watch?v=abc123", lesson.URL)
	require.Equal(t, 5400, lesson.DurationSeconds)
}

func TestSaveAsLessonKeepsExplicitDuration(t *testing.T) {
	svc, _ := newVideoFixture(t, "video_duration", nil)

	lesson, err := svc.SaveAsLesson(context.Background(), 1, dto.SaveVideoRequest{
		VideoID:         "abc123",
		Title:           "Goroutines Explained",
		DurationSeconds: 900,
		Duration:        "PT1H30M",
	})
	require.NoError(t, err)
	require.Equal(t, 900, lesson.DurationSeconds)
}

func TestSaveAsLessonRejectsDuplicateVideo(t *testing.T) {
	svc, _ := newVideoFixture(t, "video_duplicate", nil)
	ctx := context.Background()

	payload := dto.SaveVideoRequest{VideoID: "abc123", Title: "Goroutines Explained"}
	_, err := svc.SaveAsLesson(ctx, 1, payload)
	require.NoError(t, err)

	_, err = svc.SaveAsLesson(ctx, 1, payload)
	require.ErrorIs(t, err, ErrLessonExists)

	// Another owner can save the same video.
	_, err = svc.SaveAsLesson(ctx, 2, payload)
	require.NoError(t, err)
}

func TestSaveAsLessonChecksGoalOwnership(t *testing.T) {
	svc, db := newVideoFixture(t, "video_goal", nil)
	ctx := context.Background()

	goal := models.Goal{UserID: 2, Title: "Learn Go", Category: "programming", Status: models.GoalStatusInProgress}
	require.NoError(t, db.Create(&goal).Error)

	_, err := svc.SaveAsLesson(ctx, 1, dto.SaveVideoRequest{
		VideoID: "abc123",
		Title:   "Goroutines Explained",
		GoalID:  &goal.ID,
	})
	require.ErrorIs(t, err, ErrGoalNotFound)

	_, err = svc.SaveAsLesson(ctx, 2, dto.SaveVideoRequest{
		VideoID: "abc123",
		Title:   "Goroutines Explained",
		GoalID:  &goal.ID,
	})
	require.NoError(t, err)
}

func TestVideoEndpointsWithoutCatalog(t *testing.T) {
	svc, _ := newVideoFixture(t, "video_nocatalog", nil)
	ctx := context.Background()

	_, err := svc.Search(ctx, "golang", 10)
	require.ErrorIs(t, err, ErrCatalogUnavailable)

	_, err = svc.Details(ctx, "abc123")
	require.ErrorIs(t, err, ErrCatalogUnavailable)

	_, err = svc.Trending(ctx)
	require.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestVideoDetailsTranslatesNotFound(t *testing.T) {
	catalog := &stubCatalog{videos: []videocat.Video{{ID: "known", Title: "Known Video"}}}
	svc, _ := newVideoFixture(t, "video_details", catalog)
	ctx := context.Background()

	video, err := svc.Details(ctx, "known")
	require.NoError(t, err)
	require.Equal(t, "Known Video", video.Title)

	_, err = svc.Details(ctx, "missing")
	require.ErrorIs(t, err, ErrVideoNotFound)
}

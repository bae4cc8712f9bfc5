package dto

import (
	"time"

	"github.com/dzakyhdr/learntrack-api/internal/models"
)

// LessonCreateRequest captures the payload for creating a lesson.
type LessonCreateRequest struct {
	Title           string `json:"title" validate:"required,max=255"`
	Description     string `json:"description" validate:"max=2000"`
	Type            string `json:"type" validate:"required,oneof=video article exercise quiz project other"`
	Category        string `json:"category" validate:"max=64"`
	GoalID          *uint  `json:"goal_id"`
	Platform        string `json:"platform" validate:"omitempty,max=32"`
	URL             string `json:"url" validate:"omitempty,url,max=512"`
	VideoID         string `json:"video_id" validate:"max=64"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
	Thumbnail       string `json:"thumbnail" validate:"omitempty,url,max=512"`
	Notes           string `json:"notes"`
}

// LessonUpdateRequest captures a partial lesson update.
type LessonUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    *string `json:"category" validate:"omitempty,max=64"`
	GoalID      *uint   `json:"goal_id"`
	Notes       *string `json:"notes"`
}

// LessonProgressRequest advances a lesson's progress tracking.
type LessonProgressRequest struct {
	CompletionPercentage *int `json:"completion_percentage"`
	TimeSpent            int  `json:"time_spent" validate:"gte=0"`
}

// LessonCompleteRequest marks a lesson complete.
type LessonCompleteRequest struct {
	TimeSpent int  `json:"time_spent" validate:"gte=0"`
	Rating    *int `json:"rating" validate:"omitempty,min=1,max=5"`
}

// LessonGoalRef is the compact goal reference embedded in lesson payloads.
type LessonGoalRef struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// LessonResponse serialises a lesson with its progress sub-record.
type LessonResponse struct {
	ID              uint           `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Type            string         `json:"type"`
	Category        string         `json:"category,omitempty"`
	Goal            *LessonGoalRef `json:"goal,omitempty"`
	Platform        string         `json:"platform"`
	URL             string         `json:"url,omitempty"`
	VideoID         string         `json:"video_id,omitempty"`
	DurationSeconds int            `json:"duration_seconds"`
	Thumbnail       string         `json:"thumbnail,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	Status          string         `json:"status"`
	TimeSpent       int            `json:"time_spent"`
	CompletionPct   int            `json:"completion_percentage"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	LastAccessedAt  *time.Time     `json:"last_accessed_at,omitempty"`
	UserRating      *int           `json:"user_rating,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NewLessonResponse converts a lesson model into its API representation.
func NewLessonResponse(lesson models.Lesson) LessonResponse {
	response := LessonResponse{
		ID:              lesson.ID,
		Title:           lesson.Title,
		Description:     lesson.Description,
		Type:            lesson.Type,
		Category:        lesson.Category,
		Platform:        lesson.Platform,
		URL:             lesson.URL,
		VideoID:         lesson.VideoID,
		DurationSeconds: lesson.DurationSeconds,
		Thumbnail:       lesson.Thumbnail,
		Notes:           lesson.Notes,
		Status:          lesson.Status,
		TimeSpent:       lesson.TimeSpent,
		CompletionPct:   lesson.CompletionPct,
		StartedAt:       lesson.StartedAt,
		CompletedAt:     lesson.CompletedAt,
		LastAccessedAt:  lesson.LastAccessedAt,
		UserRating:      lesson.UserRating,
		CreatedAt:       lesson.CreatedAt,
		UpdatedAt:       lesson.UpdatedAt,
	}

	if lesson.Goal != nil {
		response.Goal = &LessonGoalRef{
			ID:       lesson.Goal.ID,
			Title:    lesson.Goal.Title,
			Category: lesson.Goal.Category,
		}
	}

	return response
}

// NewLessonResponseSlice converts a lesson list.
func NewLessonResponseSlice(lessons []models.Lesson) []LessonResponse {
	responses := make([]LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		responses = append(responses, NewLessonResponse(lesson))
	}
	return responses
}

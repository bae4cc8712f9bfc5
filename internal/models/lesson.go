package models

import (
	"time"

	"gorm.io/datatypes"
)

// Lesson progress states.
const (
	LessonStatusNotStarted = "not_started"
	LessonStatusInProgress = "in_progress"
	LessonStatusCompleted  = "completed"
	LessonStatusSkipped    = "skipped"
)

// Lesson content types.
const (
	LessonTypeVideo    = "video"
	LessonTypeArticle  = "article"
	LessonTypeExercise = "exercise"
	LessonTypeQuiz     = "quiz"
	LessonTypeProject  = "project"
	LessonTypeOther    = "other"
)

// Lesson is a unit of learning content with its own progress tracking. The
// goal reference is weak: a lesson survives deletion of its goal.
type Lesson struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	UserID          uint              `gorm:"index:idx_lessons_user_status;not null" json:"user_id"`
	GoalID          *uint             `gorm:"index" json:"goal_id"`
	Title           string            `gorm:"size:255;not null" json:"title"`
	Description     string            `gorm:"size:2000" json:"description"`
	Type            string            `gorm:"size:32;not null" json:"type"`
	Category        string            `gorm:"size:64" json:"category"`
	Platform        string            `gorm:"size:32;not null;default:custom" json:"platform"`
	URL             string            `gorm:"size:512" json:"url"`
	VideoID         string            `gorm:"size:64;index" json:"video_id"`
	DurationSeconds int               `gorm:"default:0" json:"duration_seconds"`
	Thumbnail       string            `gorm:"size:512" json:"thumbnail"`
	Notes           string            `gorm:"type:text" json:"notes"`
	Status          string            `gorm:"size:32;not null;default:not_started;index:idx_lessons_user_status" json:"status"`
	TimeSpent       int               `gorm:"not null;default:0" json:"time_spent"`
	CompletionPct   int               `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`
	StartedAt       *time.Time        `json:"started_at"`
	CompletedAt     *time.Time        `gorm:"index" json:"completed_at"`
	LastAccessedAt  *time.Time        `json:"last_accessed_at"`
	UserRating      *int              `json:"user_rating"`
	AIAnalysis      datatypes.JSONMap `gorm:"type:json" json:"ai_analysis,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Goal            *Goal             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"goal,omitempty"`
}

// IsCompleted reports whether the lesson has reached its terminal completed state.
func (l Lesson) IsCompleted() bool {
	return l.Status == LessonStatusCompleted
}

// ResolvedCategory returns the category of the linked goal, falling back to
// the lesson's own category and finally to "other".
func (l Lesson) ResolvedCategory() string {
	if l.Goal != nil && l.Goal.Category != "" {
		return l.Goal.Category
	}
	if l.Category != "" {
		return l.Category
	}
	return CategoryOther
}

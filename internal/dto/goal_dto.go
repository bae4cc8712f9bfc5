package dto

import (
	"time"

	"github.com/dzakyhdr/learntrack-api/internal/models"
)

// MilestoneInput describes a milestone supplied on goal creation.
type MilestoneInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
}

// GoalCreateRequest captures the payload for creating a goal.
type GoalCreateRequest struct {
	Title              string           `json:"title" validate:"required,max=200"`
	Description        string           `json:"description" validate:"max=1000"`
	Category           string           `json:"category" validate:"required,oneof=programming language mathematics science business creative other"`
	Difficulty         string           `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	TargetDate         string           `json:"target_date" validate:"required"`
	EstimatedHours     int              `json:"estimated_hours" validate:"gte=0"`
	LessonsRequired    int              `json:"lessons_required" validate:"gte=0"`
	Priority           string           `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Tags               []string         `json:"tags"`
	Milestones         []MilestoneInput `json:"milestones" validate:"dive"`
	GenerateMilestones bool             `json:"generate_milestones"`
}

// GoalUpdateRequest captures a partial goal update.
type GoalUpdateRequest struct {
	Title           *string  `json:"title" validate:"omitempty,max=200"`
	Description     *string  `json:"description" validate:"omitempty,max=1000"`
	Category        *string  `json:"category" validate:"omitempty,oneof=programming language mathematics science business creative other"`
	Difficulty      *string  `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	TargetDate      *string  `json:"target_date"`
	// Status only accepts the parked states; everything else is derived
	// from progress. Sending in_progress resumes a parked goal.
	Status          *string  `json:"status" validate:"omitempty,oneof=in_progress paused cancelled"`
	EstimatedHours  *int     `json:"estimated_hours" validate:"omitempty,gte=0"`
	LessonsRequired *int     `json:"lessons_required" validate:"omitempty,gte=0"`
	Priority        *string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Tags            []string `json:"tags"`
}

// GoalProgressRequest sets goal progress directly.
type GoalProgressRequest struct {
	Progress *int `json:"progress" validate:"required"`
}

// MilestonePatchRequest updates a single milestone by its position.
type MilestonePatchRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Completed   *bool   `json:"completed"`
}

// MilestoneResponse serialises a milestone.
type MilestoneResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Order       int        `json:"order"`
}

// GoalResponse serialises a goal with its milestone breakdown.
type GoalResponse struct {
	ID              uint                `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description,omitempty"`
	Category        string              `json:"category"`
	Difficulty      string              `json:"difficulty"`
	TargetDate      time.Time           `json:"target_date"`
	Status          string              `json:"status"`
	Progress        int                 `json:"progress"`
	EstimatedHours  int                 `json:"estimated_hours"`
	ActualHours     int                 `json:"actual_hours"`
	LessonsRequired int                 `json:"lessons_required"`
	LessonsDone     int                 `json:"lessons_completed"`
	Priority        string              `json:"priority"`
	Tags            []string            `json:"tags"`
	Milestones      []MilestoneResponse `json:"milestones"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// NewGoalResponse converts a goal model into its API representation.
func NewGoalResponse(goal models.Goal) GoalResponse {
	milestones := make([]MilestoneResponse, 0, len(goal.Milestones))
	for _, m := range goal.Milestones {
		milestones = append(milestones, MilestoneResponse{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Completed:   m.Completed,
			CompletedAt: m.CompletedAt,
			Order:       m.SortOrder,
		})
	}

	return GoalResponse{
		ID:              goal.ID,
		Title:           goal.Title,
		Description:     goal.Description,
		Category:        goal.Category,
		Difficulty:      goal.Difficulty,
		TargetDate:      goal.TargetDate,
		Status:          goal.Status,
		Progress:        goal.Progress,
		EstimatedHours:  goal.EstimatedHours,
		ActualHours:     goal.ActualHours,
		LessonsRequired: goal.LessonsRequired,
		LessonsDone:     goal.LessonsDone,
		Priority:        goal.Priority,
		Tags:            goal.Tags,
		Milestones:      milestones,
		CreatedAt:       goal.CreatedAt,
		UpdatedAt:       goal.UpdatedAt,
	}
}

// NewGoalResponseSlice converts a goal list.
func NewGoalResponseSlice(goals []models.Goal) []GoalResponse {
	responses := make([]GoalResponse, 0, len(goals))
	for _, goal := range goals {
		responses = append(responses, NewGoalResponse(goal))
	}
	return responses
}

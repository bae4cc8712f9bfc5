package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Goal status values derived from progress, plus the owner-set terminal states.
const (
	GoalStatusNotStarted = "not_started"
	GoalStatusInProgress = "in_progress"
	GoalStatusCompleted  = "completed"
	GoalStatusPaused     = "paused"
	GoalStatusCancelled  = "cancelled"
)

// Goal categories form a closed set; anything else is rejected at validation.
const (
	CategoryProgramming = "programming"
	CategoryLanguage    = "language"
	CategoryMathematics = "mathematics"
	CategoryScience     = "science"
	CategoryBusiness    = "business"
	CategoryCreative    = "creative"
	CategoryOther       = "other"
)

// Goal is a user-defined learning objective broken down into ordered milestones.
type Goal struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"index:idx_goals_user_status;not null" json:"user_id"`
	Title           string         `gorm:"size:200;not null" json:"title"`
	Description     string         `gorm:"size:1000" json:"description"`
	Category        string         `gorm:"size:32;not null" json:"category"`
	Difficulty      string         `gorm:"size:32;not null;default:beginner" json:"difficulty"`
	TargetDate      time.Time      `gorm:"not null;index" json:"target_date"`
	Status          string         `gorm:"size:32;not null;default:not_started;index:idx_goals_user_status" json:"status"`
	Progress        int            `gorm:"not null;default:0" json:"progress"`
	EstimatedHours  int            `gorm:"default:0" json:"estimated_hours"`
	ActualHours     int            `gorm:"default:0" json:"actual_hours"`
	LessonsRequired int            `gorm:"default:0" json:"lessons_required"`
	LessonsDone     int            `gorm:"default:0" json:"lessons_completed"`
	Priority        string         `gorm:"size:16;not null;default:medium" json:"priority"`
	TagsRaw         string         `gorm:"column:tags;type:text" json:"-"`
	AISuggestions   datatypes.JSON `gorm:"type:json" json:"ai_suggestions,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Tags            []string       `gorm:"-" json:"tags"`
	Milestones      []Milestone    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"milestones"`
}

// BeforeSave normalises tag data before persisting.
func (g *Goal) BeforeSave(tx *gorm.DB) error {
	g.TagsRaw = encodeTags(g.Tags)
	return nil
}

// AfterFind hydrates the tag list after retrieval.
func (g *Goal) AfterFind(tx *gorm.DB) error {
	g.Tags = decodeTags(g.TagsRaw)
	return nil
}

// CompletedMilestones counts milestones flagged as completed.
func (g Goal) CompletedMilestones() int {
	count := 0
	for _, m := range g.Milestones {
		if m.Completed {
			count++
		}
	}
	return count
}

// Milestone is an ordered, binary-completable sub-step of a goal.
type Milestone struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	GoalID      uint       `gorm:"not null;uniqueIndex:idx_milestones_goal_order" json:"goal_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"size:1000" json:"description"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	SortOrder   int        `gorm:"not null;uniqueIndex:idx_milestones_goal_order" json:"order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Package ledger holds the pure state-transition rules for goal, milestone
// and lesson progress. Nothing in here touches the database; services apply
// these functions inside a row-locked transaction and persist the result.
package ledger

import (
	"errors"
	"math"
	"time"

	"github.com/dzakyhdr/learntrack-api/internal/models"
)

// ErrProgressOutOfRange indicates a progress value outside [0,100].
var ErrProgressOutOfRange = errors.New("progress must be between 0 and 100")

// ErrMilestoneNotFound indicates a milestone index outside the goal's list.
var ErrMilestoneNotFound = errors.New("milestone not found")

// CompletionEvent is emitted on a lesson's transition into completed. The
// stats updater keys its at-most-once increment on LessonID+CompletedAt.
type CompletionEvent struct {
	LessonID    uint
	UserID      uint
	CompletedAt time.Time
	Minutes     int
}

// StatusForProgress is the single progress-to-status mapping used by every
// mutation path.
func StatusForProgress(progress int) string {
	switch {
	case progress >= 100:
		return models.GoalStatusCompleted
	case progress > 0:
		return models.GoalStatusInProgress
	default:
		return models.GoalStatusNotStarted
	}
}

// SetGoalProgress sets the goal progress directly and recomputes its status.
func SetGoalProgress(goal *models.Goal, progress int) error {
	if progress < 0 || progress > 100 {
		return ErrProgressOutOfRange
	}
	goal.Progress = progress
	goal.Status = StatusForProgress(progress)
	return nil
}

// MilestonePatch carries the fields a caller may change on a milestone.
type MilestonePatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// ApplyMilestonePatch mutates the milestone at index and recomputes the
// goal's progress and status. CompletedAt is stamped exactly once, on the
// first transition into completed; re-marking a completed milestone leaves
// the original timestamp intact.
func ApplyMilestonePatch(goal *models.Goal, index int, patch MilestonePatch, now time.Time) error {
	if index < 0 || index >= len(goal.Milestones) {
		return ErrMilestoneNotFound
	}

	milestone := &goal.Milestones[index]
	if patch.Title != nil {
		milestone.Title = *patch.Title
	}
	if patch.Description != nil {
		milestone.Description = *patch.Description
	}
	if patch.Completed != nil {
		if *patch.Completed && milestone.CompletedAt == nil {
			stamp := now
			milestone.CompletedAt = &stamp
		}
		milestone.Completed = *patch.Completed
	}

	RecomputeGoalProgress(goal)
	return nil
}

// RecomputeGoalProgress derives progress from milestone completion. A goal
// without milestones keeps whatever progress it already has, since the
// percentage is undefined there.
func RecomputeGoalProgress(goal *models.Goal) {
	total := len(goal.Milestones)
	if total == 0 {
		return
	}
	goal.Progress = roundPercentage(goal.CompletedMilestones(), total)
	goal.Status = StatusForProgress(goal.Progress)
}

// roundPercentage computes round-half-up(100*completed/total).
func roundPercentage(completed, total int) int {
	return int(math.Floor(float64(completed)/float64(total)*100 + 0.5))
}

// StartLesson moves a lesson into in_progress. Already-completed lessons are
// left alone apart from the access timestamp; StartedAt is stamped only the
// first time.
func StartLesson(lesson *models.Lesson, now time.Time) {
	if !lesson.IsCompleted() {
		lesson.Status = models.LessonStatusInProgress
	}
	if lesson.StartedAt == nil {
		stamp := now
		lesson.StartedAt = &stamp
	}
	touch := now
	lesson.LastAccessedAt = &touch
}

// UpdateLessonProgress applies a completion percentage and/or a time delta.
// The percentage is clamped to [0,100] and time only ever accumulates. A
// transition into 100% returns the completion event exactly once; repeated
// 100% updates on an already-completed lesson return nil.
func UpdateLessonProgress(lesson *models.Lesson, completionPct *int, timeSpentDelta int, now time.Time) *CompletionEvent {
	if timeSpentDelta > 0 {
		lesson.TimeSpent += timeSpentDelta
	}
	if completionPct != nil {
		lesson.CompletionPct = clampPercentage(*completionPct)
	}

	touch := now
	lesson.LastAccessedAt = &touch

	if lesson.CompletionPct == 100 && !lesson.IsCompleted() {
		return completeLesson(lesson, timeSpentDelta, now)
	}

	if lesson.CompletionPct > 0 && lesson.Status == models.LessonStatusNotStarted {
		lesson.Status = models.LessonStatusInProgress
		if lesson.StartedAt == nil {
			stamp := now
			lesson.StartedAt = &stamp
		}
	}

	return nil
}

// CompleteLesson forces the lesson into completed and always reports the
// completion event. Duplicate-completion suppression happens downstream in
// the stats updater, keyed on the completion timestamp.
func CompleteLesson(lesson *models.Lesson, timeSpentDelta int, rating *int, now time.Time) CompletionEvent {
	if timeSpentDelta > 0 {
		lesson.TimeSpent += timeSpentDelta
	}
	if rating != nil {
		lesson.UserRating = rating
	}

	touch := now
	lesson.LastAccessedAt = &touch
	lesson.CompletionPct = 100

	if event := completeLesson(lesson, timeSpentDelta, now); event != nil {
		return *event
	}

	// Already completed: re-report the original transition so the event key
	// stays stable and the stats updater treats it as a replay.
	completedAt := now
	if lesson.CompletedAt != nil {
		completedAt = *lesson.CompletedAt
	}
	return CompletionEvent{
		LessonID:    lesson.ID,
		UserID:      lesson.UserID,
		CompletedAt: completedAt,
		Minutes:     timeSpentDelta,
	}
}

func completeLesson(lesson *models.Lesson, timeSpentDelta int, now time.Time) *CompletionEvent {
	if lesson.IsCompleted() {
		return nil
	}

	lesson.Status = models.LessonStatusCompleted
	if lesson.StartedAt == nil {
		stamp := now
		lesson.StartedAt = &stamp
	}
	if lesson.CompletedAt == nil {
		stamp := now
		lesson.CompletedAt = &stamp
	}

	return &CompletionEvent{
		LessonID:    lesson.ID,
		UserID:      lesson.UserID,
		CompletedAt: *lesson.CompletedAt,
		Minutes:     timeSpentDelta,
	}
}

func clampPercentage(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

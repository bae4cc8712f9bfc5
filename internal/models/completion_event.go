package models

import "time"

// CompletionEvent records a single lesson-completion transition. The unique
// (lesson_id, completed_epoch) pair is what makes stats increments
// at-most-once: replaying the same transition inserts nothing.
type CompletionEvent struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	LessonID       uint      `gorm:"not null;uniqueIndex:idx_completion_lesson_epoch" json:"lesson_id"`
	CompletedEpoch int64     `gorm:"not null;uniqueIndex:idx_completion_lesson_epoch" json:"completed_epoch"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	Minutes        int       `gorm:"not null;default:0" json:"minutes"`
	CreatedAt      time.Time `json:"created_at"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Skill levels shared by user profiles and goal difficulty.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// User is an account holder with a learning profile and derived stats counters.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"size:160;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:128;not null" json:"-"`

	FirstName  string `gorm:"size:100" json:"first_name"`
	LastName   string `gorm:"size:100" json:"last_name"`
	Bio        string `gorm:"size:500" json:"bio"`
	AvatarURL  string `gorm:"size:512" json:"avatar_url"`
	SkillLevel string `gorm:"size:32;not null;default:beginner" json:"skill_level"`

	LearnPrefsRaw string   `gorm:"column:learning_preferences;type:text" json:"-"`
	LearnPrefs    []string `gorm:"-" json:"learning_preferences"`

	DailyGoalMinutes int    `gorm:"not null;default:30" json:"daily_goal_minutes"`
	Theme            string `gorm:"size:16;not null;default:light" json:"theme"`

	Stats UserStats `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserStats holds the monotonically adjusted counters maintained by the stats
// updater. Each counter moves at most once per qualifying completion event.
type UserStats struct {
	TotalLessonsCompleted int `gorm:"not null;default:0" json:"total_lessons_completed"`
	TotalTimeSpent        int `gorm:"not null;default:0" json:"total_time_spent"`
	CurrentStreak         int `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak         int `gorm:"not null;default:0" json:"longest_streak"`
	TotalGoalsAchieved    int `gorm:"not null;default:0" json:"total_goals_achieved"`
}

// BeforeSave normalises the learning preference list before persisting.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.LearnPrefsRaw = encodeTags(u.LearnPrefs)
	return nil
}

// AfterFind hydrates the learning preference list after retrieval.
func (u *User) AfterFind(tx *gorm.DB) error {
	u.LearnPrefs = decodeTags(u.LearnPrefsRaw)
	return nil
}

// DisplayName returns the preferred human-readable name for the user.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		if u.LastName != "" {
			return u.FirstName + " " + u.LastName
		}
		return u.FirstName
	}
	return u.Username
}

package dto

import (
	"time"

	"github.com/dzakyhdr/learntrack-api/internal/models"
)

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued token and the authenticated user.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ProfileUpdateRequest captures a partial profile update.
type ProfileUpdateRequest struct {
	FirstName        *string  `json:"first_name" validate:"omitempty,max=100"`
	LastName         *string  `json:"last_name" validate:"omitempty,max=100"`
	Bio              *string  `json:"bio" validate:"omitempty,max=500"`
	SkillLevel       *string  `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	LearnPrefs       []string `json:"learning_preferences" validate:"omitempty,dive,oneof=visual auditory kinesthetic reading"`
	DailyGoalMinutes *int     `json:"daily_goal_minutes" validate:"omitempty,gte=0,lte=1440"`
	Theme            *string  `json:"theme" validate:"omitempty,oneof=light dark auto"`
}

// UserStatsResponse serialises the derived counters.
type UserStatsResponse struct {
	TotalLessonsCompleted int `json:"total_lessons_completed"`
	TotalTimeSpent        int `json:"total_time_spent"`
	CurrentStreak         int `json:"current_streak"`
	LongestStreak         int `json:"longest_streak"`
	TotalGoalsAchieved    int `json:"total_goals_achieved"`
}

// UserResponse serialises an account without credentials.
type UserResponse struct {
	ID               uint              `json:"id"`
	Username         string            `json:"username"`
	Email            string            `json:"email"`
	FirstName        string            `json:"first_name,omitempty"`
	LastName         string            `json:"last_name,omitempty"`
	Bio              string            `json:"bio,omitempty"`
	AvatarURL        string            `json:"avatar_url,omitempty"`
	SkillLevel       string            `json:"skill_level"`
	LearnPrefs       []string          `json:"learning_preferences"`
	DailyGoalMinutes int               `json:"daily_goal_minutes"`
	Theme            string            `json:"theme"`
	Stats            UserStatsResponse `json:"stats"`
	CreatedAt        time.Time         `json:"created_at"`
}

// NewUserResponse converts a user model into its API representation.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Bio:              user.Bio,
		AvatarURL:        user.AvatarURL,
		SkillLevel:       user.SkillLevel,
		LearnPrefs:       user.LearnPrefs,
		DailyGoalMinutes: user.DailyGoalMinutes,
		Theme:            user.Theme,
		Stats: UserStatsResponse{
			TotalLessonsCompleted: user.Stats.TotalLessonsCompleted,
			TotalTimeSpent:        user.Stats.TotalTimeSpent,
			CurrentStreak:         user.Stats.CurrentStreak,
			LongestStreak:         user.Stats.LongestStreak,
			TotalGoalsAchieved:    user.Stats.TotalGoalsAchieved,
		},
		CreatedAt: user.CreatedAt,
	}
}

// DashboardResponse aggregates the landing-page metrics.
type DashboardResponse struct {
	Goals            int              `json:"goals"`
	CompletedGoals   int              `json:"completed_goals"`
	InProgressGoals  int              `json:"in_progress_goals"`
	TotalLessons     int64            `json:"total_lessons"`
	CompletedLessons int64            `json:"completed_lessons"`
	TotalTimeSpent   int              `json:"total_time_spent"`
	TimeThisWeek     int              `json:"time_this_week"`
	CurrentStreak    int              `json:"current_streak"`
	LongestStreak    int              `json:"longest_streak"`
	RecentGoals      []GoalResponse   `json:"recent_goals"`
	RecentLessons    []LessonResponse `json:"recent_lessons"`
}

// AvatarResponse carries the stored avatar location.
type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

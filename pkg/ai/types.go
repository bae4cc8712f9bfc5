package ai

import "context"

// UserProfile summarises the learner for prompt construction.
type UserProfile struct {
	SkillLevel          string   `json:"skill_level"`
	LearningPreferences []string `json:"learning_preferences"`
	DailyGoalMinutes    int      `json:"daily_goal_minutes"`
}

// GoalSummary is the slice of a goal the advisor needs.
type GoalSummary struct {
	Title      string `json:"title"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Progress   int    `json:"progress"`
}

// LessonSummary is the slice of a completed lesson the advisor needs.
type LessonSummary struct {
	Title   string `json:"title"`
	Minutes int    `json:"minutes"`
}

// StatsSnapshot carries the user's derived counters.
type StatsSnapshot struct {
	TotalLessonsCompleted int `json:"total_lessons_completed"`
	TotalTimeSpent        int `json:"total_time_spent"`
	CurrentStreak         int `json:"current_streak"`
	TotalGoalsAchieved    int `json:"total_goals_achieved"`
}

// ScheduleEntry is one slot in a weekly study schedule.
type ScheduleEntry struct {
	Day     string `json:"day"`
	Focus   string `json:"focus"`
	Minutes int    `json:"minutes"`
}

// StudyPlan is the structured plan returned by the advisor.
type StudyPlan struct {
	Summary  string          `json:"summary"`
	Schedule []ScheduleEntry `json:"schedule"`
	Sequence []string        `json:"sequence"`
}

// LessonRecommendation is a single suggested next lesson.
type LessonRecommendation struct {
	Title            string `json:"title"`
	Objective        string `json:"objective"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Difficulty       string `json:"difficulty"`
	Reason           string `json:"reason"`
}

// ProgressAnalysis is the structured feedback on recent learning activity.
type ProgressAnalysis struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	MotivationTips  []string `json:"motivation_tips"`
	Recommendations []string `json:"recommendations"`
}

// MilestoneSuggestion is a proposed sub-step for a goal.
type MilestoneSuggestion struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	EstimatedHours int    `json:"estimated_hours"`
}

// MilestoneRequest describes the goal the advisor should break down.
type MilestoneRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
}

// Advisor is the AI suggestion collaborator. Implementations may fail or
// time out; callers own the retry budget and fallback policy.
type Advisor interface {
	StudyPlan(ctx context.Context, profile UserProfile, goals []GoalSummary) (StudyPlan, error)
	RecommendLessons(ctx context.Context, completed []LessonSummary, goals []GoalSummary, profile UserProfile) ([]LessonRecommendation, error)
	AnalyzeProgress(ctx context.Context, stats StatsSnapshot, recent []LessonSummary) (ProgressAnalysis, error)
	SuggestMilestones(ctx context.Context, request MilestoneRequest) ([]MilestoneSuggestion, error)
}

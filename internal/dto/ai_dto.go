package dto

import "github.com/dzakyhdr/learntrack-api/pkg/ai"

// MilestoneGenerateRequest asks the advisor to break a goal into milestones.
type MilestoneGenerateRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Category    string `json:"category" validate:"required,oneof=programming language mathematics science business creative other"`
	Difficulty  string `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
}

// GoalProgressSummary condenses goal completion state for insight payloads.
type GoalProgressSummary struct {
	Total           int `json:"total"`
	Completed       int `json:"completed"`
	InProgress      int `json:"in_progress"`
	AverageProgress int `json:"average_progress"`
}

// CategoryMinutes is one slice of the time-distribution breakdown.
type CategoryMinutes struct {
	Category string `json:"category"`
	Minutes  int    `json:"minutes"`
}

// InsightsResponse is the rule-based insight payload, optionally enriched
// with an AI analysis when the advisor is reachable.
type InsightsResponse struct {
	LearningVelocity int                  `json:"learning_velocity"`
	GoalProgress     GoalProgressSummary  `json:"goal_progress"`
	TimeDistribution []CategoryMinutes    `json:"time_distribution"`
	Recommendations  []string             `json:"recommendations"`
	Strengths        []string             `json:"strengths"`
	Improvements     []string             `json:"improvements"`
	AIAnalysis       *ai.ProgressAnalysis `json:"ai_analysis,omitempty"`
}

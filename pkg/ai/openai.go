package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	advisorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "learntrack",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI advisor requests",
	}, []string{"operation", "model"})

	advisorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learntrack",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of AI advisor failures after retries",
	}, []string{"operation", "model"})
)

// OpenAIConfig defines configuration options for the OpenAI advisor.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	MaxRetries  int
	Logger      zerolog.Logger
}

// OpenAIAdvisor implements Advisor against the OpenAI chat completion API.
type OpenAIAdvisor struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAdvisor builds an advisor using the provided configuration.
func NewOpenAIAdvisor(cfg OpenAIConfig) (*OpenAIAdvisor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIAdvisor{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/dzakyhdr/learntrack-api/pkg/ai/openai"),
		logger: logger.With().Str("component", "openai_advisor").Logger(),
	}, nil
}

const advisorSystemPrompt = "You are a learning coach for a personal study tracker. " +
	"Always respond with a single valid JSON object matching the structure requested by the user. " +
	"Do not wrap the JSON in markdown fences or add commentary."

// StudyPlan asks the model for a personalised weekly study plan.
func (a *OpenAIAdvisor) StudyPlan(ctx context.Context, profile UserProfile, goals []GoalSummary) (StudyPlan, error) {
	prompt := strings.Builder{}
	prompt.WriteString("Create a personalised study plan for this learner.\n\n")
	writeProfile(&prompt, profile)
	writeGoals(&prompt, goals)
	prompt.WriteString("\nRespond with JSON: {\"summary\": string, \"schedule\": [{\"day\": string, \"focus\": string, \"minutes\": int}], \"sequence\": [string]}.")

	var plan StudyPlan
	if err := a.complete(ctx, "study_plan", prompt.String(), studyPlanResponseSchema, &plan); err != nil {
		return StudyPlan{}, err
	}
	return plan, nil
}

// RecommendLessons asks the model for next-lesson suggestions.
func (a *OpenAIAdvisor) RecommendLessons(ctx context.Context, completed []LessonSummary, goals []GoalSummary, profile UserProfile) ([]LessonRecommendation, error) {
	prompt := strings.Builder{}
	prompt.WriteString("Recommend the next 5 lessons for this learner.\n\n")
	writeProfile(&prompt, profile)
	writeGoals(&prompt, goals)
	prompt.WriteString("\nRecently completed lessons:\n")
	for _, lesson := range completed {
		fmt.Fprintf(&prompt, "- %s (%d min)\n", lesson.Title, lesson.Minutes)
	}
	prompt.WriteString("\nRespond with JSON: {\"recommendations\": [{\"title\": string, \"objective\": string, \"estimated_minutes\": int, \"difficulty\": string, \"reason\": string}]}.")

	var payload struct {
		Recommendations []LessonRecommendation `json:"recommendations"`
	}
	if err := a.complete(ctx, "recommend_lessons", prompt.String(), recommendationsResponseSchema, &payload); err != nil {
		return nil, err
	}
	return payload.Recommendations, nil
}

// AnalyzeProgress asks the model to review recent learning activity.
func (a *OpenAIAdvisor) AnalyzeProgress(ctx context.Context, stats StatsSnapshot, recent []LessonSummary) (ProgressAnalysis, error) {
	prompt := strings.Builder{}
	prompt.WriteString("Analyse this learner's recent progress.\n\n")
	fmt.Fprintf(&prompt, "Totals: %d lessons completed, %d minutes spent, current streak %d days, %d goals achieved.\n",
		stats.TotalLessonsCompleted, stats.TotalTimeSpent, stats.CurrentStreak, stats.TotalGoalsAchieved)
	prompt.WriteString("Recent lessons:\n")
	for _, lesson := range recent {
		fmt.Fprintf(&prompt, "- %s (%d min)\n", lesson.Title, lesson.Minutes)
	}
	prompt.WriteString("\nRespond with JSON: {\"summary\": string, \"strengths\": [string], \"improvements\": [string], \"motivation_tips\": [string], \"recommendations\": [string]}.")

	var analysis ProgressAnalysis
	if err := a.complete(ctx, "analyze_progress", prompt.String(), analysisResponseSchema, &analysis); err != nil {
		return ProgressAnalysis{}, err
	}
	return analysis, nil
}

// SuggestMilestones asks the model to break a goal into ordered milestones.
func (a *OpenAIAdvisor) SuggestMilestones(ctx context.Context, request MilestoneRequest) ([]MilestoneSuggestion, error) {
	prompt := strings.Builder{}
	prompt.WriteString("Break this learning goal into 5-8 progressive milestones.\n\n")
	fmt.Fprintf(&prompt, "Title: %s\nDescription: %s\nCategory: %s\nDifficulty: %s\n",
		request.Title, request.Description, request.Category, request.Difficulty)
	prompt.WriteString("\nRespond with JSON: {\"milestones\": [{\"title\": string, \"description\": string, \"estimated_hours\": int}]}.")

	var payload struct {
		Milestones []MilestoneSuggestion `json:"milestones"`
	}
	if err := a.complete(ctx, "suggest_milestones", prompt.String(), milestonesResponseSchema, &payload); err != nil {
		return nil, err
	}
	return payload.Milestones, nil
}

// complete performs the chat completion with bounded retries and exponential
// backoff, validates the raw JSON against the schema, then unmarshals into out.
func (a *OpenAIAdvisor) complete(parent context.Context, operation, userPrompt string, schema schemaValidator, out interface{}) error {
	ctx, span := a.tracer.Start(parent, "openai."+operation, trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: advisorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	content, err := a.completeWithRetry(ctx, operation, request)
	advisorDuration.WithLabelValues(operation, a.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		advisorFailures.WithLabelValues(operation, a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	var document interface{}
	if err := json.Unmarshal([]byte(content), &document); err != nil {
		advisorFailures.WithLabelValues(operation, a.cfg.Model).Inc()
		span.RecordError(err)
		return fmt.Errorf("parse %s response: %w", operation, err)
	}
	if err := schema.Validate(document); err != nil {
		advisorFailures.WithLabelValues(operation, a.cfg.Model).Inc()
		span.RecordError(err)
		return fmt.Errorf("invalid %s response: %w", operation, err)
	}

	return json.Unmarshal([]byte(content), out)
}

func (a *OpenAIAdvisor) completeWithRetry(ctx context.Context, operation string, request openai.ChatCompletionRequest) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= a.cfg.MaxRetries; attempt++ {
		resp, err := a.client.CreateChatCompletion(ctx, request)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("no choices returned for %s", operation)
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		lastErr = err
		a.logger.Warn().Err(err).Str("operation", operation).Int("attempt", attempt).Msg("advisor request failed")

		if attempt == a.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(1<<attempt) * time.Second):
		}
	}
	return "", fmt.Errorf("%s failed after %d attempts: %w", operation, a.cfg.MaxRetries, lastErr)
}

type schemaValidator interface {
	Validate(v interface{}) error
}

func writeProfile(builder *strings.Builder, profile UserProfile) {
	fmt.Fprintf(builder, "Skill level: %s\n", profile.SkillLevel)
	if len(profile.LearningPreferences) > 0 {
		fmt.Fprintf(builder, "Learning preferences: %s\n", strings.Join(profile.LearningPreferences, ", "))
	}
	fmt.Fprintf(builder, "Daily goal: %d minutes\n", profile.DailyGoalMinutes)
}

func writeGoals(builder *strings.Builder, goals []GoalSummary) {
	if len(goals) == 0 {
		return
	}
	builder.WriteString("Active goals:\n")
	for _, goal := range goals {
		fmt.Fprintf(builder, "- %s (%s, %s, %d%% done)\n", goal.Title, goal.Category, goal.Difficulty, goal.Progress)
	}
}

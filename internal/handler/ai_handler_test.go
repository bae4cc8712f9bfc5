package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/handler"
	"github.com/dzakyhdr/learntrack-api/internal/service"
	"github.com/dzakyhdr/learntrack-api/internal/utils"
	"github.com/dzakyhdr/learntrack-api/pkg/ai"
)

type stubAIService struct {
	plan ai.StudyPlan
	err  error
}

func (s stubAIService) StudyPlan(context.Context, uint) (ai.StudyPlan, error) {
	return s.plan, s.err
}

func (s stubAIService) RecommendLessons(context.Context, uint) ([]ai.LessonRecommendation, error) {
	return nil, s.err
}

func (s stubAIService) AnalyzeProgress(context.Context, uint) (ai.ProgressAnalysis, error) {
	return ai.ProgressAnalysis{}, s.err
}

func (s stubAIService) GenerateMilestones(context.Context, uint, dto.MilestoneGenerateRequest) ([]ai.MilestoneSuggestion, error) {
	return nil, s.err
}

type stubInsightService struct {
	insights dto.InsightsResponse
	err      error
}

func (s stubInsightService) Insights(context.Context, uint) (dto.InsightsResponse, error) {
	return s.insights, s.err
}

func newAIApp(aiSvc service.AIService, insights service.InsightService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(42))
		return c.Next()
	})
	handler.NewAIHandler(aiSvc, insights, zerolog.Nop()).Register(app.Group("/api/v1/ai"))
	return app
}

func TestAIHandlerAdvisorOutageReturns503(t *testing.T) {
	app := newAIApp(stubAIService{err: service.ErrAdvisorUnavailable}, stubInsightService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/study-plan", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.False(t, body.Success)
	require.Equal(t, "ai advisor unavailable, try again later", body.Message)
}

func TestAIHandlerStudyPlanSucceeds(t *testing.T) {
	plan := ai.StudyPlan{Summary: "Focus on goroutines this week"}
	app := newAIApp(stubAIService{plan: plan}, stubInsightService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/study-plan", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAIHandlerInsightsSurviveAdvisorOutage(t *testing.T) {
	insights := dto.InsightsResponse{LearningVelocity: 2}
	app := newAIApp(stubAIService{err: service.ErrAdvisorUnavailable}, stubInsightService{insights: insights})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ai/insights", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Success)
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/service"
	"github.com/dzakyhdr/learntrack-api/internal/utils"
)

// AIHandler wires advisor-backed generation routes plus insights.
type AIHandler struct {
	ai       service.AIService
	insights service.InsightService
	logger   zerolog.Logger
}

// NewAIHandler constructs the handler.
func NewAIHandler(ai service.AIService, insights service.InsightService, logger zerolog.Logger) *AIHandler {
	return &AIHandler{
		ai:       ai,
		insights: insights,
		logger:   logger.With().Str("component", "ai_handler").Logger(),
	}
}

// Register attaches AI endpoints to the router group.
func (h *AIHandler) Register(router fiber.Router) {
	router.Post("/study-plan", h.studyPlan)
	router.Post("/recommend-lessons", h.recommendLessons)
	router.Post("/analyze-progress", h.analyzeProgress)
	router.Post("/generate-milestones", h.generateMilestones)
	router.Get("/insights", h.getInsights)
}

func (h *AIHandler) studyPlan(c *fiber.Ctx) error {
	plan, err := h.ai.StudyPlan(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "study plan generated", plan)
}

func (h *AIHandler) recommendLessons(c *fiber.Ctx) error {
	recommendations, err := h.ai.RecommendLessons(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson recommendations generated", recommendations)
}

func (h *AIHandler) analyzeProgress(c *fiber.Ctx) error {
	analysis, err := h.ai.AnalyzeProgress(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "progress analysis generated", analysis)
}

func (h *AIHandler) generateMilestones(c *fiber.Ctx) error {
	var payload dto.MilestoneGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	suggestions, err := h.ai.GenerateMilestones(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "milestones generated", suggestions)
}

// getInsights always succeeds when the database is reachable; the rule-based
// generator covers advisor downtime.
func (h *AIHandler) getInsights(c *fiber.Ctx) error {
	insights, err := h.insights.Insights(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "insights generated", insights)
}

func (h *AIHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAdvisorUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "ai advisor unavailable, try again later")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

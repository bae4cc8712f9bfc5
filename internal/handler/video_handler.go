package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/service"
	"github.com/dzakyhdr/learntrack-api/internal/utils"
)

// VideoHandler wires video catalog routes.
type VideoHandler struct {
	service service.VideoService
	logger  zerolog.Logger
}

// NewVideoHandler constructs the handler.
func NewVideoHandler(service service.VideoService, logger zerolog.Logger) *VideoHandler {
	return &VideoHandler{
		service: service,
		logger:  logger.With().Str("component", "video_handler").Logger(),
	}
}

// Register attaches video endpoints to the router group.
func (h *VideoHandler) Register(router fiber.Router) {
	router.Get("/search", h.search)
	router.Get("/trending", h.trending)
	router.Get("/:id", h.details)
	router.Post("/save", h.save)
}

func (h *VideoHandler) search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "query parameter q is required")
	}

	maxResults, err := parseQueryInt(c, "max_results")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid max_results")
	}

	videos, err := h.service.Search(c.Context(), query, int64(maxResults))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "videos retrieved", videos)
}

func (h *VideoHandler) trending(c *fiber.Ctx) error {
	videos, err := h.service.Trending(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "trending videos retrieved", videos)
}

func (h *VideoHandler) details(c *fiber.Ctx) error {
	videoID := strings.TrimSpace(c.Params("id"))
	if videoID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "video id is required")
	}

	video, err := h.service.Details(c.Context(), videoID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "video retrieved", video)
}

func (h *VideoHandler) save(c *fiber.Ctx) error {
	var payload dto.SaveVideoRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	lesson, err := h.service.SaveAsLesson(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "video saved as lesson", lesson)
}

func (h *VideoHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrLessonExists):
		return utils.SendError(c, fiber.StatusConflict, "video already saved as a lesson")
	case errors.Is(err, service.ErrVideoNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "video not found")
	case errors.Is(err, service.ErrGoalNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "goal not found")
	case errors.Is(err, service.ErrCatalogUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "video catalog unavailable")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

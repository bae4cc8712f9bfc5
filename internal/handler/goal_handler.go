package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
	"github.com/dzakyhdr/learntrack-api/internal/service"
	"github.com/dzakyhdr/learntrack-api/internal/utils"
)

// GoalHandler wires goal and milestone HTTP routes.
type GoalHandler struct {
	service service.GoalService
	logger  zerolog.Logger
}

// NewGoalHandler constructs the handler.
func NewGoalHandler(service service.GoalService, logger zerolog.Logger) *GoalHandler {
	return &GoalHandler{
		service: service,
		logger:  logger.With().Str("component", "goal_handler").Logger(),
	}
}

// Register attaches goal endpoints to the router group.
func (h *GoalHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Patch("/:id/progress", h.setProgress)
	router.Patch("/:id/milestones/:index", h.updateMilestone)
}

func (h *GoalHandler) list(c *fiber.Ctx) error {
	filter := repository.GoalFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	}

	goals, err := h.service.List(c.Context(), userIDFromContext(c), filter)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "goals retrieved", goals)
}

func (h *GoalHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	goal, err := h.service.Get(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goal retrieved", goal)
}

func (h *GoalHandler) create(c *fiber.Ctx) error {
	var payload dto.GoalCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	goal, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "goal created", goal)
}

func (h *GoalHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GoalUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	goal, err := h.service.Update(c.Context(), id, userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goal updated", goal)
}

func (h *GoalHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id, userIDFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goal deleted", fiber.Map{"id": id})
}

func (h *GoalHandler) setProgress(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GoalProgressRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Progress == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "progress is required")
	}

	goal, err := h.service.SetProgress(c.Context(), id, userIDFromContext(c), *payload.Progress)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "goal progress updated", goal)
}

func (h *GoalHandler) updateMilestone(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	index, err := parseIntParam(c, "index")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.MilestonePatchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	goal, err := h.service.UpdateMilestone(c.Context(), id, userIDFromContext(c), index, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "milestone updated", goal)
}

func (h *GoalHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "goal not found")
	case errors.Is(err, service.ErrMilestoneNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "milestone not found")
	case errors.Is(err, service.ErrInvalidProgress):
		return utils.SendError(c, fiber.StatusBadRequest, "progress must be between 0 and 100")
	case errors.Is(err, service.ErrInvalidTargetDate):
		return utils.SendError(c, fiber.StatusBadRequest, "target date must be RFC 3339")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *GoalHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

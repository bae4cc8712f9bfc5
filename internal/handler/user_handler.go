package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/service"
	"github.com/dzakyhdr/learntrack-api/internal/utils"
)

// UserHandler wires profile, dashboard and analytics routes.
type UserHandler struct {
	users     service.UserService
	dashboard service.DashboardService
	analytics service.AnalyticsService
	logger    zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(users service.UserService, dashboard service.DashboardService, analytics service.AnalyticsService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		dashboard: dashboard,
		analytics: analytics,
		logger:    logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches user endpoints to the router group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("/profile", h.profile)
	router.Patch("/profile", h.updateProfile)
	router.Post("/avatar", h.uploadAvatar)
	router.Get("/dashboard", h.getDashboard)
	router.Get("/analytics", h.getAnalytics)
}

func (h *UserHandler) profile(c *fiber.Ctx) error {
	user, err := h.users.Profile(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile retrieved", user)
}

func (h *UserHandler) updateProfile(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.UpdateProfile(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile updated", user)
}

func (h *UserHandler) uploadAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "avatar file is required")
	}

	avatar, err := h.users.UploadAvatar(c.Context(), userIDFromContext(c), file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAvatarTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "avatar exceeds maximum allowed size")
		case errors.Is(err, service.ErrAvatarTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "avatar must be a jpeg, png or webp image")
		default:
			return h.handleError(c, err)
		}
	}

	return utils.SendSuccess(c, "avatar updated", avatar)
}

func (h *UserHandler) getDashboard(c *fiber.Ctx) error {
	dashboard, err := h.dashboard.GetDashboard(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *UserHandler) getAnalytics(c *fiber.Ctx) error {
	analytics, err := h.analytics.Window(c.Context(), userIDFromContext(c), c.Query("period"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "analytics retrieved", analytics)
}

func (h *UserHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/handler"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
	"github.com/dzakyhdr/learntrack-api/internal/service"
	"github.com/dzakyhdr/learntrack-api/internal/utils"
)

type stubGoalService struct {
	goal dto.GoalResponse
	err  error

	lastUserID   uint
	lastProgress int
}

func (s *stubGoalService) List(ctx context.Context, userID uint, filter repository.GoalFilter) ([]dto.GoalResponse, error) {
	s.lastUserID = userID
	if s.err != nil {
		return nil, s.err
	}
	return []dto.GoalResponse{s.goal}, nil
}

func (s *stubGoalService) Get(ctx context.Context, id, userID uint) (dto.GoalResponse, error) {
	s.lastUserID = userID
	return s.goal, s.err
}

func (s *stubGoalService) Create(ctx context.Context, userID uint, payload dto.GoalCreateRequest) (dto.GoalResponse, error) {
	s.lastUserID = userID
	return s.goal, s.err
}

func (s *stubGoalService) Update(ctx context.Context, id, userID uint, payload dto.GoalUpdateRequest) (dto.GoalResponse, error) {
	return s.goal, s.err
}

func (s *stubGoalService) Delete(ctx context.Context, id, userID uint) error {
	return s.err
}

func (s *stubGoalService) SetProgress(ctx context.Context, id, userID uint, progress int) (dto.GoalResponse, error) {
	s.lastProgress = progress
	return s.goal, s.err
}

func (s *stubGoalService) UpdateMilestone(ctx context.Context, goalID, userID uint, index int, payload dto.MilestonePatchRequest) (dto.GoalResponse, error) {
	return s.goal, s.err
}

func newGoalApp(svc service.GoalService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(42))
		return c.Next()
	})
	handler.NewGoalHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/goals"))
	return app
}

func TestGoalHandlerListScopesToAuthenticatedUser(t *testing.T) {
	svc := &stubGoalService{goal: dto.GoalResponse{ID: 1, Title: "Learn Go"}}
	app := newGoalApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/goals?status=in_progress", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, uint(42), svc.lastUserID)

	var body utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Success)
}

func TestGoalHandlerCreateReturnsCreated(t *testing.T) {
	svc := &stubGoalService{goal: dto.GoalResponse{ID: 7, Title: "Learn Go"}}
	app := newGoalApp(svc)

	payload := `{"title":"Learn Go","category":"programming","target_date":"2026-12-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/goals", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestGoalHandlerNotFoundMapsTo404(t *testing.T) {
	svc := &stubGoalService{err: service.ErrGoalNotFound}
	app := newGoalApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/goals/99", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.False(t, body.Success)
	require.Equal(t, "goal not found", body.Message)
}

func TestGoalHandlerProgressRequiresValue(t *testing.T) {
	svc := &stubGoalService{goal: dto.GoalResponse{ID: 1}}
	app := newGoalApp(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/goals/1/progress", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/goals/1/progress", strings.NewReader(`{"progress":60}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 60, svc.lastProgress)
}

func TestGoalHandlerRejectsBadID(t *testing.T) {
	svc := &stubGoalService{}
	app := newGoalApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/goals/not-a-number", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

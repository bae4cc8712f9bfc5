package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
)

const testSecret = "test-secret"

func newAuthFixture(t *testing.T, name string) AuthService {
	t.Helper()
	db := openTestDB(t, name)
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAuthService(repository.NewUserRepository(db), testSecret, validate, zerolog.Nop())
}

func TestRegisterIssuesValidToken(t *testing.T) {
	svc := newAuthFixture(t, "auth_register")

	response, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "newcomer",
		Email:    "newcomer@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotEmpty(t, response.Token)
	require.Equal(t, "newcomer", response.User.Username)
	require.Equal(t, "beginner", response.User.SkillLevel)

	token, err := jwt.Parse(response.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, float64(response.User.ID), claims["sub"])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthFixture(t, "auth_duplicate")
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "first", Email: "dup@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, dto.RegisterRequest{Username: "second", Email: "dup@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, dto.RegisterRequest{Username: "first", Email: "other@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc := newAuthFixture(t, "auth_login")
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "logan", Email: "logan@example.com", Password: "hunter22"})
	require.NoError(t, err)

	response, err := svc.Login(ctx, dto.LoginRequest{Email: "logan@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.NotEmpty(t, response.Token)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "logan@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidatesPayload(t *testing.T) {
	svc := newAuthFixture(t, "auth_validate")

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "ab",
		Email:    "not-an-email",
		Password: "123",
	})
	require.Error(t, err)

	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

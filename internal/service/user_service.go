package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/dzakyhdr/learntrack-api/internal/dto"
	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/observability"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
)

var (
	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAvatarTooLarge indicates the avatar exceeded the size limit.
	ErrAvatarTooLarge = errors.New("avatar exceeds maximum allowed size")
	// ErrAvatarTypeNotAllowed indicates the sniffed MIME type is not an image.
	ErrAvatarTypeNotAllowed = errors.New("avatar must be a jpeg, png or webp image")
)

const maxAvatarBytes = 5 * 1024 * 1024

// FileStorage abstracts avatar upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UserService exposes profile management and avatar upload.
type UserService interface {
	Profile(ctx context.Context, userID uint) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uint, payload dto.ProfileUpdateRequest) (dto.UserResponse, error)
	UploadAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.AvatarResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	storage   FileStorage
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService builds a user service. Storage is optional; without it
// avatar upload reports an error.
func NewUserService(repo repository.UserRepository, storage FileStorage, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		storage:   storage,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Profile(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, payload dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.repo.UpdateWithLock(ctx, userID, func(user *models.User) error {
		if payload.FirstName != nil {
			user.FirstName = *payload.FirstName
		}
		if payload.LastName != nil {
			user.LastName = *payload.LastName
		}
		if payload.Bio != nil {
			user.Bio = *payload.Bio
		}
		if payload.SkillLevel != nil {
			user.SkillLevel = *payload.SkillLevel
		}
		if payload.LearnPrefs != nil {
			user.LearnPrefs = payload.LearnPrefs
		}
		if payload.DailyGoalMinutes != nil {
			user.DailyGoalMinutes = *payload.DailyGoalMinutes
		}
		if payload.Theme != nil {
			user.Theme = *payload.Theme
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.AvatarResponse, error) {
	if file == nil {
		return dto.AvatarResponse{}, errors.New("avatar file is required")
	}
	if s.storage == nil {
		return dto.AvatarResponse{}, errors.New("avatar storage not configured")
	}
	if file.Size > maxAvatarBytes {
		observability.AvatarRejected().WithLabelValues("size").Inc()
		return dto.AvatarResponse{}, ErrAvatarTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return dto.AvatarResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxAvatarBytes+1)); err != nil {
		return dto.AvatarResponse{}, err
	}
	if int64(buf.Len()) > maxAvatarBytes {
		observability.AvatarRejected().WithLabelValues("size").Inc()
		return dto.AvatarResponse{}, ErrAvatarTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	if !isAllowedAvatarType(mime.String()) {
		observability.AvatarRejected().WithLabelValues("type").Inc()
		return dto.AvatarResponse{}, ErrAvatarTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, file.Filename, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.AvatarRejected().WithLabelValues("storage").Inc()
		return dto.AvatarResponse{}, err
	}

	if _, err := s.repo.UpdateWithLock(ctx, userID, func(user *models.User) error {
		user.AvatarURL = url
		return nil
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AvatarResponse{}, ErrUserNotFound
		}
		return dto.AvatarResponse{}, err
	}

	s.logger.Info().Uint("user_id", userID).Msg("avatar updated")
	return dto.AvatarResponse{AvatarURL: url}, nil
}

func isAllowedAvatarType(mime string) bool {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

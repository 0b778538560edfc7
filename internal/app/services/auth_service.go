package services

import (
	"context"
	"errors"
	"time"

	"github.com/mertz/schooladmin/internal/app/models"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
	"github.com/mertz/schooladmin/internal/pkg/auth"
	"github.com/mertz/schooladmin/internal/pkg/logger"
)

// userStore is the subset of UserRepository the auth service depends on
type userStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
}

// AuthService handles platform staff authentication. Student and teacher
// logins are not served here; those accounts live in the external identity
// service.
type AuthService struct {
	users      userStore
	schools    schoolStore
	jwtService *auth.JWTService
}

// NewAuthService creates a new AuthService
func NewAuthService(users userStore, schools schoolStore, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		users:      users,
		schools:    schools,
		jwtService: jwtService,
	}
}

// Login authenticates a staff user and issues a token pair. Lookup misses and
// password mismatches are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		logger.Warn().Str("email", req.Email).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate token pair")
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to stamp last login")
	}

	logger.Info().Int64("userID", user.ID).Str("roleType", string(user.RoleType)).Msg("User logged in")
	return &dto.TokenResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        int64(expiresIn),
		RefreshExpiresIn: int64(refreshExpiresIn),
	}, nil
}

// GetProfile retrieves the profile of the authenticated staff user
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*dto.UserProfile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &dto.UserProfile{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RoleType:  string(user.RoleType),
		SchoolID:  user.SchoolID,
	}

	if user.SchoolID != nil {
		school, err := s.schools.GetByID(ctx, *user.SchoolID)
		if err == nil {
			profile.SchoolName = &school.Name
		}
	}
	return profile, nil
}

package services

import (
	"context"
	"strings"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/domain/providers"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

// RegisterRequest is the inbound registration payload
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
	Role      string `json:"role"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token,omitempty"`
	SetCookie   string `json:"-"`
}

// UserService handles user registration and profiles. Credential checks are
// delegated to the external auth provider entirely.
type UserService struct {
	repo repositories.UserRepository
	auth providers.AuthProvider
}

// NewUserService creates a new user service
func NewUserService(repo repositories.UserRepository, auth providers.AuthProvider) *UserService {
	return &UserService{
		repo: repo,
		auth: auth,
	}
}

// Register proxies registration to the auth service, then creates the local
// profile row with the auth-issued identifier. Upstream rejections pass
// through untouched; the local row is only written after upstream success.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, apperrors.NewValidationError("first_name is required")
	}
	if s.auth == nil {
		return nil, apperrors.NewExternalError("registration is not available", nil)
	}

	name := strings.TrimSpace(req.FirstName + " " + req.LastName)
	result, err := s.auth.Register(ctx, providers.RegistrationRequest{
		Name:      name,
		Email:     req.Email,
		Password1: req.Password1,
		Password2: req.Password2,
		Role:      req.Role,
	})
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		ID:        result.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// The auth account exists either way; an existing local row is fine.
		if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Type != apperrors.ErrorTypeConflict {
			return nil, err
		}
	}

	return &RegisterResponse{
		UserID:      result.UserID,
		AccessToken: result.AccessToken,
		SetCookie:   result.SetCookie,
	}, nil
}

// OAuthRegister upserts a local profile row for an externally authenticated
// user. Idempotent on the auth-issued identifier.
func (s *UserService) OAuthRegister(ctx context.Context, user *entities.User) error {
	if strings.TrimSpace(user.ID) == "" {
		return apperrors.NewValidationError("id is required")
	}
	if strings.TrimSpace(user.FirstName) == "" {
		return apperrors.NewValidationError("first_name is required")
	}
	return s.repo.Upsert(ctx, user)
}

// GetByID retrieves a user profile
func (s *UserService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return s.repo.GetByID(ctx, id)
}

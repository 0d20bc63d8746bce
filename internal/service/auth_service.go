package service

import (
	"context"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
)

// LoginRequest represents the login form payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the registration form payload
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// UpdateProfileRequest represents the profile form payload
type UpdateProfileRequest struct {
	FirstName string              `json:"firstName,omitempty"`
	LastName  string              `json:"lastName,omitempty"`
	Phone     string              `json:"phone,omitempty" validate:"omitempty,e164"`
	Profile   *domain.UserProfile `json:"profile,omitempty"`
}

// ChangePasswordRequest represents the password change form payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,nefield=CurrentPassword"`
}

// AuthResult is returned by login and registration
type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// AuthService wraps the /auth endpoints
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
}

type authService struct {
	client *apiclient.Client
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(client *apiclient.Client) AuthService {
	return &authService{client: client}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	var result AuthResult
	if _, err := s.client.Post(ctx, "/auth/login", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var result AuthResult
	if _, err := s.client.Post(ctx, "/auth/register", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *authService) Logout(ctx context.Context) error {
	_, err := s.client.Post(ctx, "/auth/logout", nil, nil)
	return err
}

func (s *authService) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if _, err := s.client.Get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*domain.User, error) {
	var user domain.User
	if _, err := s.client.Put(ctx, "/auth/profile", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *authService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	_, err := s.client.Put(ctx, "/auth/change-password", req, nil)
	return err
}

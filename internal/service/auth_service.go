package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "communication/internal/errors"
	"communication/internal/repository"
)

// AuthService checks credentials. It issues no tokens.
type AuthService interface {
	CheckLogin(ctx context.Context, username, password string) (bool, error)
}

type authService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// CheckLogin treats username as the email address. An unknown email and a
// wrong password both yield ErrInvalidCredentials.
func (s *authService) CheckLogin(ctx context.Context, username, password string) (bool, error) {
	user, err := s.userRepo.FindByEmail(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, apperrors.ErrInvalidCredentials
		}
		return false, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return false, apperrors.ErrInvalidCredentials
	}
	return true, nil
}

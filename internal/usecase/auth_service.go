package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// AuthService passes credentials through to the script backend. The portal
// keeps no user store of its own.
type AuthService struct {
	backend AuthBackend
}

func NewAuthService(backend AuthBackend) *AuthService {
	return &AuthService{backend: backend}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	ctx, span := startUsecaseSpan(ctx, "AuthService.Login")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	session, err := s.backend.Login(ctx, username, password)
	if err != nil {
		// The script answers bad credentials with an error envelope, not
		// a status code.
		if errors.Is(err, ErrBackend) {
			return Session{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return Session{}, fmt.Errorf("login: %w", err)
	}
	return session, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	ctx, span := startUsecaseSpan(ctx, "AuthService.ResetPassword")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if err := s.backend.ResetPassword(ctx, email); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/geocoder89/plantdoctor/internal/notifications"
	"github.com/geocoder89/plantdoctor/internal/security"
)

// Register creates a COMMON user. Email uniqueness is left to the store's
// unique constraint so concurrent sign-ups for one address yield exactly one
// account.
func (s *Service) Register(ctx context.Context, name, email, password string) (user.User, error) {
	name = strings.TrimSpace(name)
	email = user.NormalizeEmail(email)

	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return user.User{}, ErrInvalidInput
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return user.User{}, ErrInvalidInput
		}
		return user.User{}, err
	}

	u := user.New(name, email, hash, user.RoleCommon)

	if err := s.users.Create(ctx, u); err != nil {
		return user.User{}, err
	}

	s.dispatcher.Dispatch(notifications.WelcomeMessage(u.Name, u.Email))

	return u, nil
}

// Login answers ErrInvalidCredentials for both an unknown email and a wrong
// password.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.issuer.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, User: u}, nil
}

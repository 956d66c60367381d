package db

import (
	"context"
	"errors"

	"github.com/geocoder89/plantdoctor/internal/config"
	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/geocoder89/plantdoctor/internal/security"
)

type AdminUsers interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) error
	UpdateRole(ctx context.Context, id string, role user.Role) (user.User, error)
}

// EnsureAdminUser creates the configured admin account, or promotes it when
// it already exists with another role. A blank ADMIN_EMAIL/ADMIN_PASSWORD
// disables it.
func EnsureAdminUser(ctx context.Context, users AdminUsers, cfg config.Config) (bool, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	email := user.NormalizeEmail(cfg.AdminEmail)

	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role.IsAdmin() {
			return false, nil
		}
		_, err = users.UpdateRole(ctx, existing.ID, user.RoleAdmin)
		return err == nil, err
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return false, err
	}

	err = users.Create(ctx, user.New(cfg.AdminName, email, hash, user.RoleAdmin))
	if errors.Is(err, user.ErrEmailTaken) {
		// another instance won the race
		return false, nil
	}
	return err == nil, err
}

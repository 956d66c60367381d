package accounts

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/plantdoctor/internal/domain/resettoken"
	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/geocoder89/plantdoctor/internal/notifications"
	"github.com/geocoder89/plantdoctor/internal/security"
)

const resetTokenBytes = 32

func newResetToken() (raw, hash string, err error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}

	raw = hex.EncodeToString(b)
	return raw, HashResetToken(raw), nil
}

// HashResetToken is the only form of a reset token that is persisted.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset returns nil for unknown emails so callers cannot tell
// whether an account exists.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	s.sweep(ctx)

	email = user.NormalizeEmail(email)
	if email == "" {
		return ErrInvalidInput
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return err
	}

	raw, hash, err := newResetToken()
	if err != nil {
		return err
	}

	tx, err := s.tokens.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// a fresh request invalidates any link sent earlier
	if err := s.tokens.DeleteForUserTx(ctx, tx, u.ID); err != nil {
		return err
	}

	if err := s.tokens.CreateTx(ctx, tx, resettoken.New(u.ID, hash, s.now(), s.resetTTL)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	link := notifications.BuildResetLink(s.resetURLBase, raw)
	s.dispatcher.Dispatch(notifications.PasswordResetMessage(u.Name, u.Email, link))

	return nil
}

// ResetPassword consumes a reset token. The row is locked for the duration,
// so of two concurrent calls with the same token only one can succeed.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	s.sweep(ctx)

	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" || strings.TrimSpace(newPassword) == "" {
		return ErrInvalidInput
	}

	newHash, err := security.HashPassword(newPassword)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return ErrInvalidInput
		}
		return err
	}

	tx, err := s.tokens.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tok, err := s.tokens.GetByHashForUpdate(ctx, tx, HashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, resettoken.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	if tok.IsExpired(s.now()) {
		if err := s.tokens.DeleteTx(ctx, tx, tok.ID); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		return ErrResetTokenExpired
	}

	err = s.users.UpdatePasswordTx(ctx, tx, tok.UserID, newHash)
	if errors.Is(err, user.ErrNotFound) {
		if err := s.tokens.DeleteTx(ctx, tx, tok.ID); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		return user.ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.tokens.DeleteForUserTx(ctx, tx, tok.UserID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SweepExpired deletes every reset token whose expiry has passed.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	s.prom.ObserveSweep(n, err)
	return n, err
}

func (s *Service) sweep(ctx context.Context) {
	n, err := s.SweepExpired(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "reset token sweep failed", "err", err)
		return
	}
	if n > 0 {
		s.log.DebugContext(ctx, "reset tokens swept", "count", n)
	}
}

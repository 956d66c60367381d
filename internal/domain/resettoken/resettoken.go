package resettoken

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("reset token not found")

// Token is the stored half of a password reset credential. The raw token
// only ever travels in the email link; TokenHash is what gets persisted.
type Token struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func New(userID, tokenHash string, now time.Time, ttl time.Duration) Token {
	now = now.UTC()

	return Token{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// IsExpired treats the expiry instant itself as expired.
func (t Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

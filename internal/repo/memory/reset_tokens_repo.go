package memory

import (
	"context"
	"time"

	"github.com/geocoder89/plantdoctor/internal/domain/resettoken"
	"github.com/geocoder89/plantdoctor/internal/repo"
)

type ResetTokensRepo struct {
	s *Store
}

func (r *ResetTokensRepo) BeginTx(_ context.Context) (repo.Tx, error) {
	return r.s.begin(), nil
}

func (r *ResetTokensRepo) CreateTx(_ context.Context, tx repo.Tx, t resettoken.Token) error {
	if _, err := r.s.own(tx); err != nil {
		return err
	}

	r.s.tokens[t.ID] = t
	return nil
}

// GetByHashForUpdate needs no extra locking: the open transaction already
// holds the store.
func (r *ResetTokensRepo) GetByHashForUpdate(_ context.Context, tx repo.Tx, tokenHash string) (resettoken.Token, error) {
	if _, err := r.s.own(tx); err != nil {
		return resettoken.Token{}, err
	}

	for _, t := range r.s.tokens {
		if t.TokenHash == tokenHash {
			return t, nil
		}
	}
	return resettoken.Token{}, resettoken.ErrNotFound
}

func (r *ResetTokensRepo) DeleteTx(_ context.Context, tx repo.Tx, id string) error {
	if _, err := r.s.own(tx); err != nil {
		return err
	}

	delete(r.s.tokens, id)
	return nil
}

func (r *ResetTokensRepo) DeleteForUserTx(_ context.Context, tx repo.Tx, userID string) error {
	if _, err := r.s.own(tx); err != nil {
		return err
	}

	for id, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, id)
		}
	}
	return nil
}

func (r *ResetTokensRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.tokens {
		if t.IsExpired(now) {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}

// CountForUser reports how many tokens are outstanding for a user.
func (r *ResetTokensRepo) CountForUser(_ context.Context, userID string) int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, t := range r.s.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

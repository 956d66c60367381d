package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/plantdoctor/internal/domain/resettoken"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/geocoder89/plantdoctor/internal/repo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResetTokensRepo struct {
	base
}

func NewResetTokensRepo(pool *pgxpool.Pool, prom *observability.Prom) *ResetTokensRepo {
	return &ResetTokensRepo{base{pool: pool, prom: prom}}
}

func (r *ResetTokensRepo) CreateTx(ctx context.Context, tx repo.Tx, t resettoken.Token) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	return r.observe("reset_tokens.create_tx", func() error {
		_, e := ptx.Exec(ctx, `
			INSERT INTO reset_tokens (id, user_id, token_hash, expires_at, created_at)
			VALUES ($1,$2,$3,$4,$5)
		`, t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
		return e
	})
}

// GetByHashForUpdate locks the row so two concurrent resets with the same
// token serialize and only the first one finds it.
func (r *ResetTokensRepo) GetByHashForUpdate(ctx context.Context, tx repo.Tx, tokenHash string) (resettoken.Token, error) {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return resettoken.Token{}, err
	}

	var t resettoken.Token
	err = r.observe("reset_tokens.get_for_update", func() error {
		return ptx.QueryRow(ctx, `
			SELECT id, user_id, token_hash, expires_at, created_at
			FROM reset_tokens
			WHERE token_hash = $1
			FOR UPDATE
		`, tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resettoken.Token{}, resettoken.ErrNotFound
		}
		return resettoken.Token{}, err
	}
	return t, nil
}

func (r *ResetTokensRepo) DeleteTx(ctx context.Context, tx repo.Tx, id string) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	return r.observe("reset_tokens.delete_tx", func() error {
		_, e := ptx.Exec(ctx, `DELETE FROM reset_tokens WHERE id = $1`, id)
		return e
	})
}

func (r *ResetTokensRepo) DeleteForUserTx(ctx context.Context, tx repo.Tx, userID string) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	return r.observe("reset_tokens.delete_for_user_tx", func() error {
		_, e := ptx.Exec(ctx, `DELETE FROM reset_tokens WHERE user_id = $1`, userID)
		return e
	})
}

func (r *ResetTokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.observe("reset_tokens.delete_expired", func() error {
		tag, e := r.pool.Exec(ctx, `DELETE FROM reset_tokens WHERE expires_at <= $1`, now)
		if e != nil {
			return e
		}
		n = tag.RowsAffected()
		return nil
	})
	return n, err
}

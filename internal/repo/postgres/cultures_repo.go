package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/plantdoctor/internal/domain/culture"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CulturesRepo struct {
	base
}

func NewCulturesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CulturesRepo {
	return &CulturesRepo{base{pool: pool, prom: prom}}
}

func collectCultures(rows pgx.Rows) ([]culture.Culture, error) {
	defer rows.Close()

	out := make([]culture.Culture, 0)
	for rows.Next() {
		var c culture.Culture
		if err := rows.Scan(&c.ID, &c.Name, &c.CycleDays, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CulturesRepo) List(ctx context.Context) ([]culture.Culture, error) {
	var rows pgx.Rows
	err := r.observe("cultures.list", func() error {
		var e error
		rows, e = r.pool.Query(ctx, `SELECT id, name, cycle_days, created_at FROM cultures ORDER BY name ASC`)
		return e
	})
	if err != nil {
		return nil, err
	}
	return collectCultures(rows)
}

func (r *CulturesRepo) GetByID(ctx context.Context, id string) (culture.Culture, error) {
	var c culture.Culture
	err := r.observe("cultures.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, cycle_days, created_at FROM cultures WHERE id = $1`, id,
		).Scan(&c.ID, &c.Name, &c.CycleDays, &c.CreatedAt)
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return culture.Culture{}, culture.ErrNotFound
	}
	return c, err
}

func (r *CulturesRepo) ListForUser(ctx context.Context, userID string) ([]culture.Culture, error) {
	var rows pgx.Rows
	err := r.observe("cultures.list_for_user", func() error {
		var e error
		rows, e = r.pool.Query(ctx, `
			SELECT c.id, c.name, c.cycle_days, c.created_at
			FROM user_cultures uc
			JOIN cultures c ON c.id = uc.culture_id
			WHERE uc.user_id = $1
			ORDER BY c.name ASC
		`, userID)
		return e
	})
	if err != nil {
		return nil, err
	}
	return collectCultures(rows)
}

func (r *CulturesRepo) HasInterests(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.observe("cultures.has_interests", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM user_cultures WHERE user_id = $1)`, userID,
		).Scan(&exists)
	})
	return exists, err
}

// ReplaceInterests deletes the user's interest rows and inserts the new set
// in one transaction. Unknown culture ids abort the whole swap.
func (r *CulturesRepo) ReplaceInterests(ctx context.Context, userID string, cultureIDs []string) ([]culture.Culture, error) {
	ids := dedupe(cultureIDs)

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if len(ids) > 0 {
			var known int
			err := r.observe("cultures.replace_interests.check", func() error {
				return tx.QueryRow(ctx, `SELECT COUNT(*) FROM cultures WHERE id = ANY($1)`, ids).Scan(&known)
			})
			if err != nil {
				return err
			}
			if known != len(ids) {
				return culture.ErrUnknownCulture
			}
		}

		err := r.observe("cultures.replace_interests.delete", func() error {
			_, e := tx.Exec(ctx, `DELETE FROM user_cultures WHERE user_id = $1`, userID)
			return e
		})
		if err != nil {
			return err
		}

		if len(ids) == 0 {
			return nil
		}

		return r.observe("cultures.replace_interests.insert", func() error {
			_, e := tx.Exec(ctx, `
				INSERT INTO user_cultures (user_id, culture_id)
				SELECT $1, unnest($2::uuid[])
			`, userID, ids)
			return e
		})
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, culture.ErrUnknownCulture
		}
		return nil, err
	}

	return r.ListForUser(ctx, userID)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

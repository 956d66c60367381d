package postgres

import (
	"context"

	"github.com/geocoder89/plantdoctor/internal/domain/post"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsRepo struct {
	base
}

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{base{pool: pool, prom: prom}}
}

func (r *PostsRepo) Create(ctx context.Context, p post.Post) error {
	return r.observe("posts.create", func() error {
		_, e := r.pool.Exec(ctx, `
			INSERT INTO posts (id, user_id, kind, title, body, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, p.ID, p.UserID, p.Kind, p.Title, p.Body, p.CreatedAt)
		return e
	})
}

func (r *PostsRepo) List(ctx context.Context, f post.ListFilter) ([]post.Post, error) {
	q := `SELECT id, user_id, kind, title, body, created_at FROM posts`
	args := []any{f.Limit}

	if f.Kind != nil {
		q += ` WHERE kind = $2`
		args = append(args, *f.Kind)
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT $1`

	var rows pgx.Rows
	err := r.observe("posts.list", func() error {
		var e error
		rows, e = r.pool.Query(ctx, q, args...)
		return e
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]post.Post, 0, f.Limit)
	for rows.Next() {
		var p post.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Kind, &p.Title, &p.Body, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/geocoder89/plantdoctor/internal/repo"
	"github.com/geocoder89/plantdoctor/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, password_hash, name, role, created_at, updated_at`

type UsersRepo struct {
	base
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{base{pool: pool, prom: prom}}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create relies on users_email_key alone: concurrent inserts of one email
// race inside postgres and exactly one wins.
func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	err := r.observe("users.create", func() error {
		_, e := r.pool.Exec(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt, u.UpdatedAt)
		return e
	})

	if isUniqueViolation(err, "users_email_key") {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = r.observe("users.get_by_email", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return e
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	return u, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (u user.User, err error) {
	err = r.observe("users.get_by_id", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return e
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	return u, err
}

func (r *UsersRepo) UpdateName(ctx context.Context, id, name string) (user.User, error) {
	return r.updateReturning(ctx, "users.update_name", `SET name = $2, updated_at = NOW()`, id, name)
}

func (r *UsersRepo) UpdateRole(ctx context.Context, id string, role user.Role) (user.User, error) {
	return r.updateReturning(ctx, "users.update_role", `SET role = $2, updated_at = NOW()`, id, role)
}

func (r *UsersRepo) updateReturning(ctx context.Context, op, set, id string, val any) (u user.User, err error) {
	err = r.observe(op, func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx, `UPDATE users `+set+` WHERE id = $1 RETURNING `+userColumns, id, val))
		return e
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	return u, err
}

func (r *UsersRepo) UpdatePasswordTx(ctx context.Context, tx repo.Tx, id, passwordHash string) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	var affected int64
	err = r.observe("users.update_password_tx", func() error {
		tag, e := ptx.Exec(ctx, `
			UPDATE users SET password_hash = $2, updated_at = NOW()
			WHERE id = $1
		`, id, passwordHash)
		affected = tag.RowsAffected()
		return e
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) ListPage(ctx context.Context, limit int, after *utils.UserCursor) (items []user.User, nextCursor *string, hasMore bool, err error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, id ASC LIMIT $1`
	args := []any{limit + 1}

	if after != nil {
		q = `SELECT ` + userColumns + ` FROM users
			WHERE (created_at, id) > ($2, $3)
			ORDER BY created_at ASC, id ASC
			LIMIT $1`
		args = append(args, after.CreatedAt, after.ID)
	}

	var rows pgx.Rows
	err = r.observe("users.list_page", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, q, args...)
		return qerr
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	out := make([]user.User, 0, limit)
	for rows.Next() {
		u, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, nil, false, scanErr
		}
		out = append(out, u)
	}
	if rows.Err() != nil {
		return nil, nil, false, rows.Err()
	}

	if len(out) > limit {
		hasMore = true
		out = out[:limit]
		last := out[len(out)-1]
		cur, encErr := utils.EncodeUserCursor(last.CreatedAt, last.ID)
		if encErr != nil {
			return nil, nil, false, encErr
		}
		nextCursor = &cur
	}

	return out, nextCursor, hasMore, nil
}

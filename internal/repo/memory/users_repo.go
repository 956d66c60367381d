package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/geocoder89/plantdoctor/internal/repo"
	"github.com/geocoder89/plantdoctor/internal/utils"
)

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) Create(_ context.Context, u user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.emails[u.Email]; taken {
		return user.ErrEmailTaken
	}

	r.s.users[u.ID] = u
	r.s.emails[u.Email] = u.ID
	return nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.emails[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.s.users[id], nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) UpdateName(_ context.Context, id, name string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.update(id, func(u *user.User) { u.Name = name })
}

func (r *UsersRepo) UpdateRole(_ context.Context, id string, role user.Role) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.update(id, func(u *user.User) { u.Role = role })
}

func (r *UsersRepo) UpdatePasswordTx(_ context.Context, tx repo.Tx, id, passwordHash string) error {
	if _, err := r.s.own(tx); err != nil {
		return err
	}

	_, err := r.update(id, func(u *user.User) { u.PasswordHash = passwordHash })
	return err
}

// update expects the store lock to be held.
func (r *UsersRepo) update(id string, mutate func(*user.User)) (user.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	mutate(&u)
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return u, nil
}

func (r *UsersRepo) ListPage(_ context.Context, limit int, after *utils.UserCursor) ([]user.User, *string, bool, error) {
	r.s.mu.Lock()
	all := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if after == nil || after.After(u.CreatedAt, u.ID) {
			all = append(all, u)
		}
	}
	r.s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	if len(all) <= limit {
		return all, nil, false, nil
	}

	page := all[:limit]
	last := page[len(page)-1]
	cur, err := utils.EncodeUserCursor(last.CreatedAt, last.ID)
	if err != nil {
		return nil, nil, false, err
	}
	return page, &cur, true, nil
}

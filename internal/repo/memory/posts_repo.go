package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/plantdoctor/internal/domain/post"
)

type PostsRepo struct {
	s *Store
}

func (r *PostsRepo) Create(_ context.Context, p post.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.posts[p.ID] = p
	return nil
}

func (r *PostsRepo) List(_ context.Context, f post.ListFilter) ([]post.Post, error) {
	r.s.mu.Lock()
	out := make([]post.Post, 0)
	for _, p := range r.s.posts {
		if f.Kind != nil && p.Kind != *f.Kind {
			continue
		}
		out = append(out, p)
	}
	r.s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/plantdoctor/internal/domain/culture"
)

type CulturesRepo struct {
	s *Store
}

func (r *CulturesRepo) List(_ context.Context) ([]culture.Culture, error) {
	r.s.mu.Lock()
	out := make([]culture.Culture, 0, len(r.s.cultures))
	for _, c := range r.s.cultures {
		out = append(out, c)
	}
	r.s.mu.Unlock()

	sortByName(out)
	return out, nil
}

func (r *CulturesRepo) GetByID(_ context.Context, id string) (culture.Culture, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.cultures[id]
	if !ok {
		return culture.Culture{}, culture.ErrNotFound
	}
	return c, nil
}

func (r *CulturesRepo) ListForUser(_ context.Context, userID string) ([]culture.Culture, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.interestsOf(userID), nil
}

func (r *CulturesRepo) HasInterests(_ context.Context, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.s.interests[userID]) > 0, nil
}

// ReplaceInterests swaps the whole interest set or leaves it untouched when
// any id is unknown.
func (r *CulturesRepo) ReplaceInterests(ctx context.Context, userID string, cultureIDs []string) ([]culture.Culture, error) {
	var out []culture.Culture

	err := r.s.withTx(ctx, func() error {
		set := make(map[string]struct{}, len(cultureIDs))
		for _, id := range cultureIDs {
			if _, ok := r.s.cultures[id]; !ok {
				return culture.ErrUnknownCulture
			}
			set[id] = struct{}{}
		}

		r.s.interests[userID] = set
		out = r.interestsOf(userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CulturesRepo) interestsOf(userID string) []culture.Culture {
	set := r.s.interests[userID]
	out := make([]culture.Culture, 0, len(set))
	for id := range set {
		out = append(out, r.s.cultures[id])
	}
	sortByName(out)
	return out
}

func sortByName(cs []culture.Culture) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
}

package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/plantdoctor/internal/domain/culture"
	"github.com/geocoder89/plantdoctor/internal/domain/diagnosis"
)

type DiagnosesRepo struct {
	s *Store
}

func (r *DiagnosesRepo) Create(_ context.Context, d diagnosis.Diagnosis) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if d.CultureID != nil {
		if _, ok := r.s.cultures[*d.CultureID]; !ok {
			return culture.ErrUnknownCulture
		}
	}

	r.s.diagnoses[d.ID] = d
	return nil
}

func (r *DiagnosesRepo) ListByUser(_ context.Context, userID string) ([]diagnosis.Diagnosis, error) {
	r.s.mu.Lock()
	out := make([]diagnosis.Diagnosis, 0)
	for _, d := range r.s.diagnoses {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	r.s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].AnalysisDate.After(out[j].AnalysisDate)
	})
	return out, nil
}

package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/plantdoctor/internal/domain/planting"
)

type PlantingsRepo struct {
	s *Store
}

func (r *PlantingsRepo) Create(_ context.Context, p planting.Planting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.plantings[p.ID] = p
	return nil
}

func (r *PlantingsRepo) ListByUser(_ context.Context, userID string) ([]planting.Planting, error) {
	r.s.mu.Lock()
	out := make([]planting.Planting, 0)
	for _, p := range r.s.plantings {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	r.s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].PlantingDate.Equal(out[j].PlantingDate.Time) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].PlantingDate.After(out[j].PlantingDate.Time)
	})
	return out, nil
}

// Delete removes the planting's history first, then the planting itself.
func (r *PlantingsRepo) Delete(ctx context.Context, userID, id string) error {
	return r.s.withTx(ctx, func() error {
		if _, err := r.owned(userID, id); err != nil {
			return err
		}

		for hid, ev := range r.s.history {
			if ev.PlantingID == id {
				delete(r.s.history, hid)
			}
		}
		delete(r.s.plantings, id)
		return nil
	})
}

func (r *PlantingsRepo) AddHistory(_ context.Context, userID string, ev planting.HistoryEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, err := r.owned(userID, ev.PlantingID); err != nil {
		return err
	}

	r.s.history[ev.ID] = ev
	return nil
}

func (r *PlantingsRepo) ListHistory(_ context.Context, userID, plantingID string) ([]planting.HistoryEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, err := r.owned(userID, plantingID); err != nil {
		return nil, err
	}

	out := make([]planting.HistoryEvent, 0)
	for _, ev := range r.s.history {
		if ev.PlantingID == plantingID {
			out = append(out, ev)
		}
	}
	sortHistory(out)
	return out, nil
}

func (r *PlantingsRepo) ListHistoryForUser(_ context.Context, userID string) ([]planting.UserHistoryEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	events := make([]planting.HistoryEvent, 0)
	for _, ev := range r.s.history {
		if p, ok := r.s.plantings[ev.PlantingID]; ok && p.UserID == userID {
			events = append(events, ev)
		}
	}
	sortHistory(events)

	out := make([]planting.UserHistoryEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, planting.UserHistoryEvent{
			HistoryEvent: ev,
			CultureName:  r.s.plantings[ev.PlantingID].CultureName,
		})
	}
	return out, nil
}

// owned expects the store lock to be held. Another user's planting is
// reported as not found.
func (r *PlantingsRepo) owned(userID, id string) (planting.Planting, error) {
	p, ok := r.s.plantings[id]
	if !ok || p.UserID != userID {
		return planting.Planting{}, planting.ErrNotFound
	}
	return p, nil
}

func sortHistory(evs []planting.HistoryEvent) {
	sort.Slice(evs, func(i, j int) bool {
		if evs[i].EventDate.Equal(evs[j].EventDate.Time) {
			return evs[i].CreatedAt.After(evs[j].CreatedAt)
		}
		return evs[i].EventDate.After(evs[j].EventDate.Time)
	})
}

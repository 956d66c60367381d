package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/plantdoctor/internal/domain/culture"
	"github.com/geocoder89/plantdoctor/internal/domain/planting"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlantingsRepo struct {
	base
}

func NewPlantingsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PlantingsRepo {
	return &PlantingsRepo{base{pool: pool, prom: prom}}
}

func (r *PlantingsRepo) Create(ctx context.Context, p planting.Planting) error {
	err := r.observe("plantings.create", func() error {
		_, e := r.pool.Exec(ctx, `
			INSERT INTO plantings (id, user_id, culture_id, planting_date, predicted_harvest_date, notes, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, p.ID, p.UserID, p.CultureID, p.PlantingDate.Time, p.PredictedHarvestDate.Time, p.Notes, p.CreatedAt)
		return e
	})

	if isForeignKeyViolation(err) {
		return culture.ErrUnknownCulture
	}
	return err
}

func (r *PlantingsRepo) ListByUser(ctx context.Context, userID string) ([]planting.Planting, error) {
	var rows pgx.Rows
	err := r.observe("plantings.list_by_user", func() error {
		var e error
		rows, e = r.pool.Query(ctx, `
			SELECT p.id, p.user_id, p.culture_id, c.name, p.planting_date, p.predicted_harvest_date, p.notes, p.created_at
			FROM plantings p
			JOIN cultures c ON c.id = p.culture_id
			WHERE p.user_id = $1
			ORDER BY p.planting_date DESC, p.created_at DESC
		`, userID)
		return e
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]planting.Planting, 0)
	for rows.Next() {
		var p planting.Planting
		var plantedOn, harvestOn time.Time
		if err := rows.Scan(&p.ID, &p.UserID, &p.CultureID, &p.CultureName, &plantedOn, &harvestOn, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.PlantingDate = planting.DateOf(plantedOn)
		p.PredictedHarvestDate = planting.DateOf(harvestOn)
		out = append(out, p)
	}
	return out, rows.Err()
}

// lockOwned locks the planting row when it belongs to userID.
func (r *PlantingsRepo) lockOwned(ctx context.Context, tx pgx.Tx, userID, id string) error {
	var found string
	err := r.observe("plantings.lock_owned", func() error {
		return tx.QueryRow(ctx, `
			SELECT id FROM plantings WHERE id = $1 AND user_id = $2 FOR UPDATE
		`, id, userID).Scan(&found)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return planting.ErrNotFound
	}
	return err
}

// Delete removes history rows before the planting, inside one transaction.
func (r *PlantingsRepo) Delete(ctx context.Context, userID, id string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := r.lockOwned(ctx, tx, userID, id); err != nil {
			return err
		}

		err := r.observe("plantings.delete.history", func() error {
			_, e := tx.Exec(ctx, `DELETE FROM planting_history WHERE planting_id = $1`, id)
			return e
		})
		if err != nil {
			return err
		}

		return r.observe("plantings.delete", func() error {
			_, e := tx.Exec(ctx, `DELETE FROM plantings WHERE id = $1`, id)
			return e
		})
	})
}

func (r *PlantingsRepo) AddHistory(ctx context.Context, userID string, ev planting.HistoryEvent) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := r.lockOwned(ctx, tx, userID, ev.PlantingID); err != nil {
			return err
		}

		return r.observe("plantings.add_history", func() error {
			_, e := tx.Exec(ctx, `
				INSERT INTO planting_history (id, planting_id, event_type, description, event_date, created_at)
				VALUES ($1,$2,$3,$4,$5,$6)
			`, ev.ID, ev.PlantingID, ev.EventType, ev.Description, ev.EventDate.Time, ev.CreatedAt)
			return e
		})
	})
}

func (r *PlantingsRepo) ListHistory(ctx context.Context, userID, plantingID string) ([]planting.HistoryEvent, error) {
	var owned bool
	err := r.observe("plantings.history.check_owner", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM plantings WHERE id = $1 AND user_id = $2)`, plantingID, userID,
		).Scan(&owned)
	})
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, planting.ErrNotFound
	}

	events, err := r.queryHistory(ctx, "plantings.list_history", `
		SELECT h.id, h.planting_id, h.event_type, h.description, h.event_date, h.created_at, ''
		FROM planting_history h
		WHERE h.planting_id = $1
		ORDER BY h.event_date DESC, h.created_at DESC
	`, plantingID)
	if err != nil {
		return nil, err
	}

	out := make([]planting.HistoryEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.HistoryEvent)
	}
	return out, nil
}

func (r *PlantingsRepo) ListHistoryForUser(ctx context.Context, userID string) ([]planting.UserHistoryEvent, error) {
	return r.queryHistory(ctx, "plantings.list_history_for_user", `
		SELECT h.id, h.planting_id, h.event_type, h.description, h.event_date, h.created_at, c.name
		FROM planting_history h
		JOIN plantings p ON p.id = h.planting_id
		JOIN cultures c ON c.id = p.culture_id
		WHERE p.user_id = $1
		ORDER BY h.event_date DESC, h.created_at DESC
	`, userID)
}

func (r *PlantingsRepo) queryHistory(ctx context.Context, op, q string, arg string) ([]planting.UserHistoryEvent, error) {
	var rows pgx.Rows
	err := r.observe(op, func() error {
		var e error
		rows, e = r.pool.Query(ctx, q, arg)
		return e
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]planting.UserHistoryEvent, 0)
	for rows.Next() {
		var ev planting.UserHistoryEvent
		var on time.Time
		if err := rows.Scan(&ev.ID, &ev.PlantingID, &ev.EventType, &ev.Description, &on, &ev.CreatedAt, &ev.CultureName); err != nil {
			return nil, err
		}
		ev.EventDate = planting.DateOf(on)
		out = append(out, ev)
	}
	return out, rows.Err()
}

package postgres

import (
	"context"

	"github.com/geocoder89/plantdoctor/internal/domain/culture"
	"github.com/geocoder89/plantdoctor/internal/domain/diagnosis"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DiagnosesRepo struct {
	base
}

func NewDiagnosesRepo(pool *pgxpool.Pool, prom *observability.Prom) *DiagnosesRepo {
	return &DiagnosesRepo{base{pool: pool, prom: prom}}
}

func (r *DiagnosesRepo) Create(ctx context.Context, d diagnosis.Diagnosis) error {
	err := r.observe("diagnoses.create", func() error {
		_, e := r.pool.Exec(ctx, `
			INSERT INTO diagnoses (id, user_id, culture_id, diagnosis_name, observation, photo_path, analysis_date)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, d.ID, d.UserID, d.CultureID, d.DiagnosisName, d.Observation, d.PhotoPath, d.AnalysisDate)
		return e
	})

	if isForeignKeyViolation(err) {
		return culture.ErrUnknownCulture
	}
	return err
}

func (r *DiagnosesRepo) ListByUser(ctx context.Context, userID string) ([]diagnosis.Diagnosis, error) {
	var rows pgx.Rows
	err := r.observe("diagnoses.list_by_user", func() error {
		var e error
		rows, e = r.pool.Query(ctx, `
			SELECT id, user_id, culture_id, diagnosis_name, observation, photo_path, analysis_date
			FROM diagnoses
			WHERE user_id = $1
			ORDER BY analysis_date DESC, id DESC
		`, userID)
		return e
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]diagnosis.Diagnosis, 0)
	for rows.Next() {
		var d diagnosis.Diagnosis
		if err := rows.Scan(&d.ID, &d.UserID, &d.CultureID, &d.DiagnosisName, &d.Observation, &d.PhotoPath, &d.AnalysisDate); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

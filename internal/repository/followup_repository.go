package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/sei-backend/internal/model"
)

const followUpColumns = `id, intervention_id, observations, progress, created_at`

// PostgresFollowUpRepository handles follow-up data access on PostgreSQL.
type PostgresFollowUpRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresFollowUpRepository creates a new PostgresFollowUpRepository.
func NewPostgresFollowUpRepository(pool *pgxpool.Pool) *PostgresFollowUpRepository {
	return &PostgresFollowUpRepository{pool: pool}
}

// Create inserts a new follow-up.
func (r *PostgresFollowUpRepository) Create(ctx context.Context, f *model.FollowUp) error {
	assignIdentity(&f.ID, &f.CreatedAt)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO follow_ups (`+followUpColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		f.ID, f.InterventionID, f.Observations, f.Progress, f.CreatedAt,
	)
	return err
}

// List retrieves follow-ups in chronological order, optionally for one intervention.
func (r *PostgresFollowUpRepository) List(ctx context.Context, interventionID string) ([]model.FollowUp, error) {
	query := `SELECT ` + followUpColumns + ` FROM follow_ups`
	var args []interface{}
	if interventionID != "" {
		query += ` WHERE intervention_id = $1`
		args = append(args, interventionID)
	}
	query += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	followUps := []model.FollowUp{}
	for rows.Next() {
		var f model.FollowUp
		if err := rows.Scan(&f.ID, &f.InterventionID, &f.Observations, &f.Progress, &f.CreatedAt); err != nil {
			return nil, err
		}
		followUps = append(followUps, f)
	}
	return followUps, rows.Err()
}

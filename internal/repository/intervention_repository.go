package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/sei-backend/internal/model"
)

const interventionColumns = `id, student_id, objective, planned_actions, start_date, responsible, status, created_at`

// PostgresInterventionRepository handles intervention data access on PostgreSQL.
type PostgresInterventionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresInterventionRepository creates a new PostgresInterventionRepository.
func NewPostgresInterventionRepository(pool *pgxpool.Pool) *PostgresInterventionRepository {
	return &PostgresInterventionRepository{pool: pool}
}

func scanIntervention(row pgx.Row) (*model.Intervention, error) {
	i := &model.Intervention{}
	err := row.Scan(&i.ID, &i.StudentID, &i.Objective, &i.PlannedActions, &i.StartDate,
		&i.Responsible, &i.Status, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

// Create inserts a new intervention.
func (r *PostgresInterventionRepository) Create(ctx context.Context, i *model.Intervention) error {
	assignIdentity(&i.ID, &i.CreatedAt)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO interventions (`+interventionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		i.ID, i.StudentID, i.Objective, i.PlannedActions, i.StartDate, i.Responsible, i.Status, i.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// GetByID retrieves an intervention by ID.
func (r *PostgresInterventionRepository) GetByID(ctx context.Context, id string) (*model.Intervention, error) {
	return scanIntervention(r.pool.QueryRow(ctx,
		`SELECT `+interventionColumns+` FROM interventions WHERE id = $1`, id))
}

// List retrieves interventions, newest first, optionally for one student.
func (r *PostgresInterventionRepository) List(ctx context.Context, studentID string) ([]model.Intervention, error) {
	query := `SELECT ` + interventionColumns + ` FROM interventions`
	var args []interface{}
	if studentID != "" {
		query += ` WHERE student_id = $1`
		args = append(args, studentID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interventions := []model.Intervention{}
	for rows.Next() {
		i, err := scanIntervention(rows)
		if err != nil {
			return nil, err
		}
		interventions = append(interventions, *i)
	}
	return interventions, rows.Err()
}

// UpdateStatus sets the status column and returns the updated row.
func (r *PostgresInterventionRepository) UpdateStatus(ctx context.Context, id string, status model.InterventionStatus) (*model.Intervention, error) {
	return scanIntervention(r.pool.QueryRow(ctx,
		`UPDATE interventions SET status = $1 WHERE id = $2 RETURNING `+interventionColumns,
		status, id))
}

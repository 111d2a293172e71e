package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/sei-backend/internal/model"
)

const checkinColumns = `id, student_id, week_number, motivation, stress, focus, organization, created_at`

// PostgresCheckinRepository handles check-in data access on PostgreSQL.
type PostgresCheckinRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCheckinRepository creates a new PostgresCheckinRepository.
func NewPostgresCheckinRepository(pool *pgxpool.Pool) *PostgresCheckinRepository {
	return &PostgresCheckinRepository{pool: pool}
}

// Append inserts a check-in. Rows are never updated.
func (r *PostgresCheckinRepository) Append(ctx context.Context, c *model.Checkin) error {
	assignIdentity(&c.ID, &c.CreatedAt)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO checkins (`+checkinColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.StudentID, c.WeekNumber, c.Motivation, c.Stress, c.Focus, c.Organization, c.CreatedAt,
	)
	return err
}

// ListByStudent retrieves a student's check-ins. Callers sort by week themselves.
func (r *PostgresCheckinRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Checkin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+checkinColumns+` FROM checkins WHERE student_id = $1 ORDER BY created_at`, studentID)
	if err != nil {
		return nil, err
	}
	return collectCheckins(rows)
}

// ListAll retrieves every check-in.
func (r *PostgresCheckinRepository) ListAll(ctx context.Context) ([]model.Checkin, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+checkinColumns+` FROM checkins ORDER BY student_id, week_number`)
	if err != nil {
		return nil, err
	}
	return collectCheckins(rows)
}

func collectCheckins(rows pgx.Rows) ([]model.Checkin, error) {
	defer rows.Close()

	checkins := []model.Checkin{}
	for rows.Next() {
		var c model.Checkin
		if err := rows.Scan(&c.ID, &c.StudentID, &c.WeekNumber, &c.Motivation, &c.Stress,
			&c.Focus, &c.Organization, &c.CreatedAt); err != nil {
			return nil, err
		}
		checkins = append(checkins, c)
	}
	return checkins, rows.Err()
}

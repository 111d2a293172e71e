package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/sei-backend/internal/model"
)

const studentColumns = `id, name, email, grade, average_grade, attendance, ava_participation,
	late_assignments, risk_index, created_at, updated_at`

// PostgresStudentRepository handles student data access on PostgreSQL.
type PostgresStudentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStudentRepository creates a new PostgresStudentRepository.
func NewPostgresStudentRepository(pool *pgxpool.Pool) *PostgresStudentRepository {
	return &PostgresStudentRepository{pool: pool}
}

func scanStudent(row pgx.Row) (*model.Student, error) {
	s := &model.Student{}
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Grade, &s.AverageGrade, &s.Attendance,
		&s.AVAParticipation, &s.LateAssignments, &s.RiskIndex, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// Create inserts a new student.
func (r *PostgresStudentRepository) Create(ctx context.Context, s *model.Student) error {
	assignIdentity(&s.ID, &s.CreatedAt)
	s.UpdatedAt = s.CreatedAt

	_, err := r.pool.Exec(ctx,
		`INSERT INTO students (`+studentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.Name, s.Email, s.Grade, s.AverageGrade, s.Attendance,
		s.AVAParticipation, s.LateAssignments, s.RiskIndex, s.CreatedAt, s.UpdatedAt,
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

// GetByID retrieves a student by ID.
func (r *PostgresStudentRepository) GetByID(ctx context.Context, id string) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
}

// ListAll retrieves every student ordered by name.
func (r *PostgresStudentRepository) ListAll(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+studentColumns+` FROM students ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

// ApplyPartialUpdate builds an UPDATE touching only the patched columns.
func (r *PostgresStudentRepository) ApplyPartialUpdate(ctx context.Context, id string, patch StudentPatch) (*model.Student, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Grade != nil {
		add("grade", *patch.Grade)
	}
	if patch.AverageGrade != nil {
		add("average_grade", *patch.AverageGrade)
	}
	if patch.Attendance != nil {
		add("attendance", *patch.Attendance)
	}
	if patch.AVAParticipation != nil {
		add("ava_participation", *patch.AVAParticipation)
	}
	if patch.LateAssignments != nil {
		add("late_assignments", *patch.LateAssignments)
	}
	if patch.RiskIndex != nil {
		add("risk_index", *patch.RiskIndex)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := `UPDATE students SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + studentColumns

	return scanStudent(r.pool.QueryRow(ctx, query, args...))
}

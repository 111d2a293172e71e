package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/stemsi/sei-backend/internal/model"
)

// SQLite implementations share the schema created by database.NewSQLiteDB
// and map rows through the db struct tags on the model types.

func sqliteErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return ErrDuplicateID
	}
	return err
}

// SQLiteStudentRepository handles student data access on SQLite.
type SQLiteStudentRepository struct {
	db *sqlx.DB
}

func NewSQLiteStudentRepository(db *sqlx.DB) *SQLiteStudentRepository {
	return &SQLiteStudentRepository{db: db}
}

func (r *SQLiteStudentRepository) Create(ctx context.Context, s *model.Student) error {
	assignIdentity(&s.ID, &s.CreatedAt)
	s.UpdatedAt = s.CreatedAt

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO students (`+studentColumns+`)
		 VALUES (:id, :name, :email, :grade, :average_grade, :attendance, :ava_participation,
		         :late_assignments, :risk_index, :created_at, :updated_at)`, s)
	return sqliteErr(err)
}

func (r *SQLiteStudentRepository) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var s model.Student
	if err := r.db.GetContext(ctx, &s, `SELECT `+studentColumns+` FROM students WHERE id = ?`, id); err != nil {
		return nil, sqliteErr(err)
	}
	return &s, nil
}

func (r *SQLiteStudentRepository) ListAll(ctx context.Context) ([]model.Student, error) {
	students := []model.Student{}
	err := r.db.SelectContext(ctx, &students, `SELECT `+studentColumns+` FROM students ORDER BY name`)
	return students, err
}

// ApplyPartialUpdate reads, merges and writes back inside one transaction.
func (r *SQLiteStudentRepository) ApplyPartialUpdate(ctx context.Context, id string, patch StudentPatch) (*model.Student, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var s model.Student
	if err := tx.GetContext(ctx, &s, `SELECT `+studentColumns+` FROM students WHERE id = ?`, id); err != nil {
		return nil, sqliteErr(err)
	}
	if patch.IsEmpty() {
		return &s, nil
	}

	patch.Apply(&s)
	s.UpdatedAt = time.Now().UTC()

	_, err = tx.NamedExecContext(ctx,
		`UPDATE students SET name = :name, email = :email, grade = :grade,
		        average_grade = :average_grade, attendance = :attendance,
		        ava_participation = :ava_participation, late_assignments = :late_assignments,
		        risk_index = :risk_index, updated_at = :updated_at
		 WHERE id = :id`, &s)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &s, nil
}

// SQLiteCheckinRepository handles check-in data access on SQLite.
type SQLiteCheckinRepository struct {
	db *sqlx.DB
}

func NewSQLiteCheckinRepository(db *sqlx.DB) *SQLiteCheckinRepository {
	return &SQLiteCheckinRepository{db: db}
}

func (r *SQLiteCheckinRepository) Append(ctx context.Context, c *model.Checkin) error {
	assignIdentity(&c.ID, &c.CreatedAt)

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO checkins (`+checkinColumns+`)
		 VALUES (:id, :student_id, :week_number, :motivation, :stress, :focus, :organization, :created_at)`, c)
	return sqliteErr(err)
}

func (r *SQLiteCheckinRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Checkin, error) {
	checkins := []model.Checkin{}
	err := r.db.SelectContext(ctx, &checkins,
		`SELECT `+checkinColumns+` FROM checkins WHERE student_id = ? ORDER BY created_at`, studentID)
	return checkins, err
}

func (r *SQLiteCheckinRepository) ListAll(ctx context.Context) ([]model.Checkin, error) {
	checkins := []model.Checkin{}
	err := r.db.SelectContext(ctx, &checkins,
		`SELECT `+checkinColumns+` FROM checkins ORDER BY student_id, week_number`)
	return checkins, err
}

// SQLiteInterventionRepository handles intervention data access on SQLite.
type SQLiteInterventionRepository struct {
	db *sqlx.DB
}

func NewSQLiteInterventionRepository(db *sqlx.DB) *SQLiteInterventionRepository {
	return &SQLiteInterventionRepository{db: db}
}

func (r *SQLiteInterventionRepository) Create(ctx context.Context, i *model.Intervention) error {
	assignIdentity(&i.ID, &i.CreatedAt)

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO interventions (`+interventionColumns+`)
		 VALUES (:id, :student_id, :objective, :planned_actions, :start_date, :responsible, :status, :created_at)`, i)
	return sqliteErr(err)
}

func (r *SQLiteInterventionRepository) GetByID(ctx context.Context, id string) (*model.Intervention, error) {
	var i model.Intervention
	if err := r.db.GetContext(ctx, &i, `SELECT `+interventionColumns+` FROM interventions WHERE id = ?`, id); err != nil {
		return nil, sqliteErr(err)
	}
	return &i, nil
}

func (r *SQLiteInterventionRepository) List(ctx context.Context, studentID string) ([]model.Intervention, error) {
	var (
		where strings.Builder
		args  []interface{}
	)
	if studentID != "" {
		where.WriteString(` WHERE student_id = ?`)
		args = append(args, studentID)
	}

	interventions := []model.Intervention{}
	err := r.db.SelectContext(ctx, &interventions,
		`SELECT `+interventionColumns+` FROM interventions`+where.String()+` ORDER BY created_at DESC`, args...)
	return interventions, err
}

func (r *SQLiteInterventionRepository) UpdateStatus(ctx context.Context, id string, status model.InterventionStatus) (*model.Intervention, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE interventions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// SQLiteFollowUpRepository handles follow-up data access on SQLite.
type SQLiteFollowUpRepository struct {
	db *sqlx.DB
}

func NewSQLiteFollowUpRepository(db *sqlx.DB) *SQLiteFollowUpRepository {
	return &SQLiteFollowUpRepository{db: db}
}

func (r *SQLiteFollowUpRepository) Create(ctx context.Context, f *model.FollowUp) error {
	assignIdentity(&f.ID, &f.CreatedAt)

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO follow_ups (`+followUpColumns+`)
		 VALUES (:id, :intervention_id, :observations, :progress, :created_at)`, f)
	return sqliteErr(err)
}

func (r *SQLiteFollowUpRepository) List(ctx context.Context, interventionID string) ([]model.FollowUp, error) {
	followUps := []model.FollowUp{}
	if interventionID == "" {
		err := r.db.SelectContext(ctx, &followUps, `SELECT `+followUpColumns+` FROM follow_ups ORDER BY created_at`)
		return followUps, err
	}
	err := r.db.SelectContext(ctx, &followUps,
		`SELECT `+followUpColumns+` FROM follow_ups WHERE intervention_id = ? ORDER BY created_at`, interventionID)
	return followUps, err
}

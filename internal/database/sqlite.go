package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/config"
)

// sqliteSchema mirrors migrations/000001_init.up.sql for single-file deployments
// where golang-migrate is not run.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS students (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	email             TEXT NOT NULL,
	grade             TEXT NOT NULL,
	average_grade     INTEGER NOT NULL,
	attendance        INTEGER NOT NULL,
	ava_participation INTEGER NOT NULL,
	late_assignments  INTEGER NOT NULL,
	risk_index        INTEGER NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS checkins (
	id           TEXT PRIMARY KEY,
	student_id   TEXT NOT NULL,
	week_number  INTEGER NOT NULL,
	motivation   INTEGER NOT NULL,
	stress       INTEGER NOT NULL,
	focus        INTEGER NOT NULL,
	organization INTEGER NOT NULL,
	created_at   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checkins_student ON checkins (student_id, week_number);

CREATE TABLE IF NOT EXISTS interventions (
	id              TEXT PRIMARY KEY,
	student_id      TEXT NOT NULL,
	objective       TEXT NOT NULL,
	planned_actions TEXT NOT NULL,
	start_date      TEXT NOT NULL,
	responsible     TEXT NOT NULL,
	status          TEXT NOT NULL,
	created_at      DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_interventions_student ON interventions (student_id);

CREATE TABLE IF NOT EXISTS follow_ups (
	id              TEXT PRIMARY KEY,
	intervention_id TEXT NOT NULL,
	observations    TEXT NOT NULL,
	progress        INTEGER NOT NULL,
	created_at      DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_follow_ups_intervention ON follow_ups (intervention_id);
`

// NewSQLiteDB opens the SQLite database file and ensures the schema exists.
func NewSQLiteDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sqlx.DB, error) {
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", cfg.SQLitePath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	log.Info().
		Str("path", cfg.SQLitePath).
		Msg("SQLite opened")

	return db, nil
}

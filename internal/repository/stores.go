package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/config"
	"github.com/stemsi/sei-backend/internal/database"
)

// Stores bundles one implementation of every repository. Close releases the
// underlying connection, if any.
type Stores struct {
	Students      StudentRepository
	Checkins      CheckinRepository
	Interventions InterventionRepository
	FollowUps     FollowUpRepository
	Close         func()
}

func NewMemoryStores() *Stores {
	return &Stores{
		Students:      NewMemoryStudentRepository(),
		Checkins:      NewMemoryCheckinRepository(),
		Interventions: NewMemoryInterventionRepository(),
		FollowUps:     NewMemoryFollowUpRepository(),
		Close:         func() {},
	}
}

func NewPostgresStores(pool *pgxpool.Pool) *Stores {
	return &Stores{
		Students:      NewPostgresStudentRepository(pool),
		Checkins:      NewPostgresCheckinRepository(pool),
		Interventions: NewPostgresInterventionRepository(pool),
		FollowUps:     NewPostgresFollowUpRepository(pool),
		Close:         pool.Close,
	}
}

func NewSQLiteStores(db *sqlx.DB) *Stores {
	return &Stores{
		Students:      NewSQLiteStudentRepository(db),
		Checkins:      NewSQLiteCheckinRepository(db),
		Interventions: NewSQLiteInterventionRepository(db),
		FollowUps:     NewSQLiteFollowUpRepository(db),
		Close:         func() { _ = db.Close() },
	}
}

// Open connects the storage backend selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewPostgresStores(pool), nil
	case config.StorageSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStores(db), nil
	case config.StorageMemory:
		log.Warn().Msg("Using in-memory storage, data is lost on exit")
		return NewMemoryStores(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

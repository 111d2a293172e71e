// Package scheduler runs the periodic full risk re-scan.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/config"
	"github.com/stemsi/sei-backend/internal/service"
)

// lockTTL bounds how long one instance may hold the re-scan lock.
const lockTTL = 30 * time.Minute

// Rescanner is the part of the recalculation service the scheduler runs.
type Rescanner interface {
	RecalculateAll(ctx context.Context) (service.RescanResult, error)
}

// Scheduler triggers RecalculateAll on a cron expression. When a Redis
// client is given, a SETNX lock keeps replicas from rescanning concurrently.
type Scheduler struct {
	scheduler *gocron.Scheduler
	rescanner Rescanner
	rdb       *redis.Client
	cron      string
	log       zerolog.Logger
}

// New creates a scheduler in UTC. rdb may be nil.
func New(rescanner Rescanner, rdb *redis.Client, cron string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		rescanner: rescanner,
		rdb:       rdb,
		cron:      cron,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the re-scan job and runs the scheduler asynchronously.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.scheduler.Cron(s.cron).SingletonMode().Do(s.rescan, ctx); err != nil {
		return fmt.Errorf("schedule rescan %q: %w", s.cron, err)
	}
	s.scheduler.StartAsync()

	s.log.Info().Str("cron", s.cron).Msg("Scheduler started")
	return nil
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) rescan(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if s.rdb != nil {
		key := config.CacheKey.RescanLockKey()
		ok, err := s.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), lockTTL).Result()
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to acquire rescan lock")
			return
		}
		if !ok {
			s.log.Info().Msg("Rescan already running elsewhere, skipping")
			return
		}
		defer s.rdb.Del(context.Background(), key)
	}

	result, err := s.rescanner.RecalculateAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("failed", result.Failed).Msg("Scheduled rescan finished with errors")
		return
	}
	s.log.Info().
		Int("scanned", result.Scanned).
		Int("changed", result.Changed).
		Msg("Scheduled rescan done")
}

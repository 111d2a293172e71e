package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/config"
	"github.com/stemsi/sei-backend/internal/metrics"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/repository"
	"github.com/stemsi/sei-backend/internal/service"
)

const (
	RecalcBatchTimeout = 2 * time.Second
	RecalcPollTimeout  = 1 * time.Second

	enqueueChunk = 500
)

// Recalculator is the slice of RiskRecalculationService the worker drives.
type Recalculator interface {
	RecalculateMany(ctx context.Context, studentIDs []string) (service.RescanResult, error)
	RecalculateStudent(ctx context.Context, studentID string) (*model.Student, error)
}

// RecalculationQueue pushes student ids onto the Redis list drained by
// RecalculationWorker.
type RecalculationQueue struct {
	rdb *redis.Client
}

func NewRecalculationQueue(rdb *redis.Client) *RecalculationQueue {
	return &RecalculationQueue{rdb: rdb}
}

// Enqueue appends ids to the queue in pipelined chunks.
func (q *RecalculationQueue) Enqueue(ctx context.Context, studentIDs ...string) error {
	key := config.WorkerKey.RecalculateStudentsQueue
	for start := 0; start < len(studentIDs); start += enqueueChunk {
		end := min(start+enqueueChunk, len(studentIDs))

		pipe := q.rdb.Pipeline()
		for _, id := range studentIDs[start:end] {
			pipe.RPush(ctx, key, id)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RecalculationWorker drains the recalculation queue in batches.
type RecalculationWorker struct {
	recalc    Recalculator
	rdb       *redis.Client
	batchSize int
	log       zerolog.Logger
}

func NewRecalculationWorker(recalc Recalculator, rdb *redis.Client, batchSize int, log zerolog.Logger) *RecalculationWorker {
	if batchSize < 1 {
		batchSize = 50
	}
	return &RecalculationWorker{
		recalc:    recalc,
		rdb:       rdb,
		batchSize: batchSize,
		log:       log.With().Str("component", "recalculation_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *RecalculationWorker) Start(ctx context.Context) {
	w.log.Info().Int("batch_size", w.batchSize).Msg("RecalculationWorker started")

	batch := make([]string, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= RecalcBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, RecalcPollTimeout, config.WorkerKey.RecalculateStudentsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 || item[1] == "" {
				continue
			}

			batch = appendUnique(batch, item[1])
		}
	}
}

// appendUnique drops ids already waiting in the batch; one recalculation
// covers every signal change queued before it.
func appendUnique(batch []string, id string) []string {
	for _, existing := range batch {
		if existing == id {
			return batch
		}
	}
	return append(batch, id)
}

// ----------------------------------------------------------------
// Batch recalculation with per-student fallback
// ----------------------------------------------------------------

func (w *RecalculationWorker) flushSafe(ctx context.Context, batch []string) {
	if len(batch) == 0 {
		return
	}

	result, err := w.recalc.RecalculateMany(ctx, batch)
	if err == nil {
		metrics.QueueBatches.WithLabelValues(metrics.ResultOK).Inc()
		w.log.Debug().
			Int("scanned", result.Scanned).
			Int("changed", result.Changed).
			Msg("Batch recalculated")
		return
	}

	metrics.QueueBatches.WithLabelValues(metrics.ResultError).Inc()
	w.log.Warn().Err(err).Int("failed", result.Failed).Msg("Batch recalculation failed, retrying individually")

	var requeue []string
	for _, id := range batch {
		if _, err := w.recalc.RecalculateStudent(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			w.log.Error().Err(err).Str("student_id", id).Msg("Recalculation failed, requeueing")
			requeue = append(requeue, id)
		}
	}
	if len(requeue) > 0 {
		if err := NewRecalculationQueue(w.rdb).Enqueue(ctx, requeue...); err != nil {
			w.log.Error().Err(err).Int("count", len(requeue)).Msg("Requeue failed")
		}
	}
}

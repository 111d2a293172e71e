package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/config"
	"github.com/stemsi/sei-backend/internal/database"
	"github.com/stemsi/sei-backend/internal/handler"
	"github.com/stemsi/sei-backend/internal/logger"
	"github.com/stemsi/sei-backend/internal/middleware"
	"github.com/stemsi/sei-backend/internal/repository"
	"github.com/stemsi/sei-backend/internal/router"
	"github.com/stemsi/sei-backend/internal/scheduler"
	"github.com/stemsi/sei-backend/internal/seed"
	"github.com/stemsi/sei-backend/internal/service"
	"github.com/stemsi/sei-backend/internal/validator"
	"github.com/stemsi/sei-backend/internal/websocket"
	"github.com/stemsi/sei-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("storage", cfg.StorageDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting SEI Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Storage ──────────────────────────────────────────────────
	stores, err := repository.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer stores.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Initialize Services ──────────────────────────────────────────
	var publisher service.RiskPublisher
	var queue service.RescanEnqueuer
	if rdb != nil {
		publisher = websocket.NewRedisPublisher(rdb)
		queue = worker.NewRecalculationQueue(rdb)
	}

	recalcService := service.NewRiskRecalculationService(stores.Students, stores.Checkins, publisher, log)
	studentService := service.NewStudentService(stores.Students, recalcService, log)
	checkinService := service.NewCheckinService(stores.Checkins, recalcService, log)
	interventionService := service.NewInterventionService(stores.Interventions, stores.FollowUps, stores.Students, log)
	dashboardService := service.NewDashboardService(stores.Students, stores.Checkins, stores.Interventions, cfg.WeekEpoch, nil)
	importService := service.NewImportService(studentService, log)

	// ─── Seed Demo Data ────────────────────────────────────────────────
	if cfg.SeedDemoData {
		if err := seed.Load(ctx, stores, recalcService, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Health:       handler.NewHealthHandler(rdb),
		Student:      handler.NewStudentHandler(studentService, importService),
		Checkin:      handler.NewCheckinHandler(checkinService),
		Intervention: handler.NewInterventionHandler(interventionService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Risk:         handler.NewRiskHandler(recalcService, studentService, queue, rdb, cfg.AllowedOrigins, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	if rdb != nil {
		recalcWorker := worker.NewRecalculationWorker(recalcService, rdb, cfg.RescanBatchSize, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			recalcWorker.Start(workerCtx)
		}()
	}

	sched := scheduler.New(recalcService, rdb, cfg.RescanCron, log)
	if err := sched.Start(workerCtx); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.RescanCron).Msg("Failed to start re-scan scheduler")
	}

	heavyLimiter := middleware.NewRateLimiter(5, time.Minute)
	workers.Add(1)
	go func() {
		defer workers.Done()
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				heavyLimiter.Sweep(10 * time.Minute)
			}
		}
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, heavyLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the scheduler and let the worker finish its current batch.
	sched.Stop()
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

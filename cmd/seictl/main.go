// Command seictl runs operational tasks against the SEI storage backend:
// synchronous risk re-scans, spreadsheet imports and demo seeding.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stemsi/sei-backend/internal/config"
	"github.com/stemsi/sei-backend/internal/logger"
	"github.com/stemsi/sei-backend/internal/repository"
	"github.com/stemsi/sei-backend/internal/seed"
	"github.com/stemsi/sei-backend/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the storage and services a command runs against. Commands never
// publish to Redis: changes made here reach dashboards on their next refresh.
type app struct {
	stores   *repository.Stores
	recalc   *service.RiskRecalculationService
	students *service.StudentService
	log      zerolog.Logger
}

func openApp(ctx context.Context, logLevel string) (*app, error) {
	cfg := config.Load()
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	log := logger.New(os.Stderr, logLevel, cfg.LogFormat)

	stores, err := repository.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	recalc := service.NewRiskRecalculationService(stores.Students, stores.Checkins, nil, log)
	return &app{
		stores:   stores,
		recalc:   recalc,
		students: service.NewStudentService(stores.Students, recalc, log),
		log:      log,
	}, nil
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "seictl",
		Short:         "Operational tasks for the student risk index backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")

	cmd.AddCommand(rescanCmd(&logLevel), importCmd(&logLevel), seedCmd(&logLevel))
	return cmd
}

func rescanCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rescan",
		Short: "Recalculate every student's risk index now",
		Long: `Recalculates the risk index of every student from their current metrics
and latest check-in, writing back only values that changed. Safe to run
while the server is up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), *logLevel)
			if err != nil {
				return err
			}
			defer a.stores.Close()

			result, err := a.recalc.RecalculateAll(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func importCmd(logLevel *string) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Create or update students from a spreadsheet",
		Long: `Reads a roster from an .xlsx file. The first row is a header naming the
columns id, name, email, grade, average_grade, attendance, ava_participation
and late_assignments in any order. Rows whose id already exists update that
student's indicators; other rows create a student.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := openApp(cmd.Context(), *logLevel)
			if err != nil {
				return err
			}
			defer a.stores.Close()

			importer := service.NewImportService(a.students, a.log)
			result, err := importer.ImportXLSX(cmd.Context(), f, service.ImportOptions{Sheet: sheet})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name (defaults to the first sheet)")
	return cmd
}

func seedCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo roster, check-ins and interventions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), *logLevel)
			if err != nil {
				return err
			}
			defer a.stores.Close()

			if err := seed.Load(cmd.Context(), a.stores, a.recalc, a.log); err != nil {
				return err
			}
			students, err := a.stores.Students.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			views := make([]service.StudentView, len(students))
			for i := range students {
				views[i] = service.NewStudentView(students[i])
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

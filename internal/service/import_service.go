package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// Column headers recognised by the roster importer. Header matching is
// case-insensitive and column order is free.
var importColumns = []string{
	"id", "name", "email", "grade",
	"average_grade", "attendance", "ava_participation", "late_assignments",
}

// ImportOptions selects the sheet to read. An empty Sheet means the first one.
type ImportOptions struct {
	Sheet string
}

// ImportResult reports the outcome of a roster import.
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

// ImportService loads student rosters and metric snapshots from spreadsheets.
// Every imported row goes through StudentService so the risk index is
// recomputed for it.
type ImportService struct {
	students *StudentService
	log      zerolog.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(students *StudentService, log zerolog.Logger) *ImportService {
	return &ImportService{
		students: students,
		log:      log.With().Str("component", "import_service").Logger(),
	}
}

// ImportXLSX reads the workbook from r. Rows with an id that already exists
// update that student's metrics; other rows create a student. Invalid rows
// are reported in the result and skipped. Storage failures abort the import.
func (s *ImportService) ImportXLSX(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, validationError("sheet %q is empty", sheet)
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []string{}}
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		result.TotalProcessed++

		created, err := s.importRow(ctx, rowValues(row, index))
		switch {
		case errors.Is(err, ErrValidation):
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
		case err != nil:
			return result, fmt.Errorf("row %d: %w", line, err)
		case created:
			result.Created++
		default:
			result.Updated++
		}
	}

	s.log.Info().
		Str("sheet", sheet).
		Int("processed", result.TotalProcessed).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Msg("Roster import finished")

	return result, nil
}

func (s *ImportService) importRow(ctx context.Context, v map[string]string) (bool, error) {
	nums := make(map[string]*int, 4)
	for _, col := range importColumns[4:] {
		n, err := parseCell(col, v[col])
		if err != nil {
			return false, err
		}
		nums[col] = n
	}

	if id := v["id"]; id != "" {
		if _, err := s.students.GetByID(ctx, id); err == nil {
			_, err := s.students.UpdateMetrics(ctx, id, model.UpdateMetricsRequest{
				Name:             optionalString(v["name"]),
				Email:            optionalString(v["email"]),
				Grade:            optionalString(v["grade"]),
				AverageGrade:     nums["average_grade"],
				Attendance:       nums["attendance"],
				AVAParticipation: nums["ava_participation"],
				LateAssignments:  nums["late_assignments"],
			})
			return false, err
		} else if !errors.Is(err, ErrNotFound) {
			return false, err
		}
	}

	_, err := s.students.Create(ctx, model.CreateStudentRequest{
		ID:               v["id"],
		Name:             v["name"],
		Email:            v["email"],
		Grade:            v["grade"],
		AverageGrade:     nums["average_grade"],
		Attendance:       nums["attendance"],
		AVAParticipation: nums["ava_participation"],
		LateAssignments:  nums["late_assignments"],
	})
	return err == nil, err
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range importColumns[1:] {
		if _, ok := index[col]; !ok {
			return nil, validationError("missing column %q", col)
		}
	}
	return index, nil
}

func rowValues(row []string, index map[string]int) map[string]string {
	v := make(map[string]string, len(importColumns))
	for _, col := range importColumns {
		if i, ok := index[col]; ok && i < len(row) {
			v[col] = strings.TrimSpace(row[i])
		}
	}
	return v
}

func parseCell(col, raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return nil, validationError("%s: %q is not a number", col, raw)
		}
		f = math.Round(f)
		if math.IsNaN(f) || f < float64(math.MinInt) || f >= float64(math.MaxInt) {
			return nil, validationError("%s: %q is out of range", col, raw)
		}
		n = int(f)
	}
	return &n, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

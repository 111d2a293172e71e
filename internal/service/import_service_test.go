package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var rosterHeader = []interface{}{
	"ID", "Name", "Email", "Grade", "Average_Grade", "Attendance", "AVA_Participation", "Late_Assignments",
}

func TestImportService_CreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.putStudent(t, model.Student{ID: "student-1", Name: "João", Email: "joao@x", Grade: "9º A",
		AverageGrade: 85, Attendance: 92, AVAParticipation: 18, RiskIndex: 0})
	importer := NewImportService(env.students, zerolog.Nop())

	buf := workbook(t, "Turma", [][]interface{}{
		rosterHeader,
		{"student-1", "", "", "", "", 40, "", ""},
		{"student-9", "Nova Aluna", "nova@x", "9º B", 100, 100, 20, 0},
		{},
		{"", "Sem Notas", "sem@x", "9º B", "abc", 50, 1, 0},
	})

	result, err := importer.ImportXLSX(ctx, buf, ImportOptions{Sheet: "Turma"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 5")

	updated, err := env.stores.Students.GetByID(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Attendance)
	assert.Equal(t, "João", updated.Name)
	assert.NotZero(t, updated.RiskIndex)

	created, err := env.stores.Students.GetByID(ctx, "student-9")
	require.NoError(t, err)
	assert.Equal(t, 20, created.RiskIndex)
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		raw     string
		want    *int
		wantErr bool
	}{
		{raw: ""},
		{raw: "42", want: intPtr(42)},
		{raw: "72.5", want: intPtr(73)},
		{raw: "72.4", want: intPtr(72)},
		{raw: "-0.7", want: intPtr(-1)},
		{raw: "-3", want: intPtr(-3)},
		{raw: "1e300", wantErr: true},
		{raw: "-Inf", wantErr: true},
		{raw: "NaN", wantErr: true},
		{raw: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseCell("attendance", tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportService_NegativeFractionRejected(t *testing.T) {
	env := newTestEnv(t)
	importer := NewImportService(env.students, zerolog.Nop())

	buf := workbook(t, "Sheet1", [][]interface{}{
		rosterHeader,
		{"student-7", "Fração", "fr@x", "9º A", 80, "-0.7", 10, 0},
	})

	result, err := importer.ImportXLSX(context.Background(), buf, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Skipped)

	_, err = env.stores.Students.GetByID(context.Background(), "student-7")
	assert.Error(t, err)
}

func TestImportService_MissingColumn(t *testing.T) {
	env := newTestEnv(t)
	importer := NewImportService(env.students, zerolog.Nop())

	buf := workbook(t, "Sheet1", [][]interface{}{{"name", "email"}})

	_, err := importer.ImportXLSX(context.Background(), buf, ImportOptions{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestImportService_NotAWorkbook(t *testing.T) {
	env := newTestEnv(t)
	importer := NewImportService(env.students, zerolog.Nop())

	_, err := importer.ImportXLSX(context.Background(), bytes.NewBufferString("id,name"), ImportOptions{})
	assert.Error(t, err)
}

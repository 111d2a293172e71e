package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stemsi/sei-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LOG_FORMAT", "json")

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSeed(t *testing.T) {
	out, err := run(t, "seed")
	require.NoError(t, err)

	var views []service.StudentView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 5)

	scores := map[string]int{}
	for _, v := range views {
		scores[v.ID] = v.RiskIndex
	}
	assert.Equal(t, 69, scores["student-3"])
}

func TestRescan_EmptyStore(t *testing.T) {
	out, err := run(t, "rescan")
	require.NoError(t, err)

	var result service.RescanResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Zero(t, result.Scanned)
}

func TestImport(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"id", "name", "email", "grade", "average_grade", "attendance", "ava_participation", "late_assignments"},
		{"s-1", "Marina Rocha", "marina@escola.edu.br", "8º A", 70, 80, 10, 2},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))

	out, err := run(t, "import", path)
	require.NoError(t, err)

	var result service.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Errors)
}

func TestImport_MissingFile(t *testing.T) {
	_, err := run(t, "import", filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImport_RequiresArg(t *testing.T) {
	_, err := run(t, "import")
	assert.Error(t, err)
}

package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilefleet/genset-invoicer/internal/csvparser"
)

func writeCSV(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	content := csvparser.Header + "\n"
	for _, line := range lines {
		content += line + "\n"
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFiles_PreservesArgumentOrder(t *testing.T) {
	dir := t.TempDir()

	var paths []string
	for i := 0; i < 6; i++ {
		paths = append(paths, writeCSV(t, dir, fmt.Sprintf("f%d.csv", i),
			fmt.Sprintf("Acme,B%d-a,U,A,B,T,S,1,2026-01-01", i),
			fmt.Sprintf("Acme,B%d-b,U,A,B,T,S,1,2026-01-01", i),
		))
	}

	rows, err := LoadFiles(context.Background(), paths, csvparser.Options{TrimFields: true}, 3, nil)
	require.NoError(t, err)
	require.Len(t, rows, 12)

	for i := 0; i < 6; i++ {
		assert.Equal(t, fmt.Sprintf("B%d-a", i), rows[2*i].BookingRef)
		assert.Equal(t, fmt.Sprintf("B%d-b", i), rows[2*i+1].BookingRef)
	}
}

func TestLoadFiles_FailsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	good := writeCSV(t, dir, "good.csv", "Acme,B1,U,A,B,T,S,1,2026-01-01")

	_, err := LoadFiles(context.Background(), []string{good, filepath.Join(dir, "missing.csv")}, csvparser.Options{}, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestLoadFiles_Empty(t *testing.T) {
	rows, err := LoadFiles(context.Background(), nil, csvparser.Options{}, 2, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoadRecords_CSV(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "bookings.csv", "Acme,B1,U,A,B,T,S,1,2026-01-01")

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, "B1", records[0].Fields[csvparser.ColBookingRef])
}

func TestLoadRecords_MissingFile(t *testing.T) {
	_, err := LoadRecords(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

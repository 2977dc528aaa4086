package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutputFileName(t *testing.T) {
	params := map[string]string{"serial": "INV-2026-100", "customer": "Acme Ltd."}

	assert.Equal(t, "INV-2026-100_Acme_Ltd_.pdf", GenerateOutputFileName("", params, ".pdf"))
	assert.Equal(t, "INV-2026-100.pdf", GenerateOutputFileName("{serial}", params, ".pdf"))
	assert.Equal(t, "INV-2026-100.PDF", GenerateOutputFileName("{serial}.PDF", params, ".pdf"))

	name := GenerateOutputFileName("{serial}_{uuid}.pdf", params, ".pdf")
	id := strings.TrimSuffix(strings.TrimPrefix(name, "INV-2026-100_"), ".pdf")
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestGenerateOutputFileName_NoPathSeparators(t *testing.T) {
	name := GenerateOutputFileName("{serial}.pdf", map[string]string{"serial": "INV/2026/1"}, ".pdf")
	assert.NotContains(t, name, "/")
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Nile_Shipping_Co_", SanitizeName("Nile Shipping Co."))
	assert.Equal(t, "abc123", SanitizeName("abc123"))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.pdf")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0644))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()
	runAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	path, err := WriteErrorLog(nil, dir, runAt)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp: runAt, InvoiceID: "B2", Serial: "INV-2026-101", Customer: "Acme",
		ErrorType: "CAPTURE_FAILED", ErrorMessage: errors.New("boom").Error(), Attempts: 2,
	}}, dir, runAt)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "export_errors_20260301_093000.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total Errors: 1")
	assert.Contains(t, string(data), "INV-2026-101")
	assert.Contains(t, string(data), "Attempts:   2")
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	path, err := WriteSummaryLog(ExportSummary{
		RunID: "run-1", StartTime: start, EndTime: start.Add(3 * time.Second),
		Customer: "Acme", Backend: "pdf", Theme: "minimal", Total: 2, Processed: 2,
		Exported: []ExportedFileInfo{{Serial: "INV-2026-100", OutputFile: "a.pdf", Attempts: 1, ProcessTime: time.Second}},
		Failed:   []FailedFileInfo{{Serial: "INV-2026-101", ErrorMessage: "boom"}},
	}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Run ID:         run-1")
	assert.Contains(t, text, "Duration:       3s")
	assert.Contains(t, text, "Exported:       1")
	assert.Contains(t, text, "Failed:         1")
	assert.Contains(t, text, "Error:  boom")
}

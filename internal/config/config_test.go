package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilefleet/genset-invoicer/internal/invoicing"
	"github.com/nilefleet/genset-invoicer/internal/render"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "./invoicer-state.yaml", cfg.StateFile)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, render.ThemeMinimal, cfg.Theme())
	assert.Equal(t, invoicing.SerialPositional, cfg.SerialMode())
	assert.Equal(t, 15, cfg.Invoicing.DefaultDueDays)
	assert.Equal(t, "pdf", cfg.Export.Backend)
	assert.Equal(t, 60*time.Second, cfg.Export.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Export.InitialBackoff)
	assert.True(t, cfg.Export.Breaker)
	assert.Equal(t, "{serial}_{customer}.pdf", cfg.Export.FileFormat)
	assert.Equal(t, 4, cfg.Import.MaxConcurrency)
	assert.True(t, cfg.Import.TrimFields)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
output_dir: /tmp/invoices
render:
  theme: ledger-pro
invoicing:
  serial_mode: stable
  default_due_days: 30
export:
  backend: chromedp
  timeout: 90s
  max_retries: 2
chrome:
  no_sandbox: true
import:
  max_concurrency: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/invoices", cfg.OutputDir)
	assert.Equal(t, render.ThemeLedgerPro, cfg.Theme())
	assert.Equal(t, invoicing.SerialStable, cfg.SerialMode())
	assert.Equal(t, 30, cfg.Invoicing.DefaultDueDays)
	assert.Equal(t, "chromedp", cfg.Export.Backend)
	assert.Equal(t, 90*time.Second, cfg.Export.Timeout)
	assert.Equal(t, 2, cfg.Export.MaxRetries)
	assert.True(t, cfg.Chrome.NoSandbox)
	assert.Equal(t, 4, cfg.Import.MaxConcurrency)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("INVOICER_EXPORT_TIMEOUT", "5s")
	t.Setenv("INVOICER_RENDER_THEME", "bold")

	cfg, err := Load(writeConfig(t, "render:\n  theme: dark\n"))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Export.Timeout)
	assert.Equal(t, render.ThemeBold, cfg.Theme())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"theme", "render:\n  theme: neon\n"},
		{"serial mode", "invoicing:\n  serial_mode: random\n"},
		{"backend", "export:\n  backend: wkhtmltopdf\n"},
		{"retries", "export:\n  max_retries: -1\n"},
		{"yaml", "render: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

package common

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 3*time.Second, cfg.Database.DialTimeout)
	assert.Equal(t, "auto", cfg.Text.Method)
	assert.True(t, cfg.Text.OCRFallback)
	assert.Equal(t, "por", cfg.Text.OCRLanguage)
	assert.Equal(t, 300, cfg.Text.DPI)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, "Extracao", cfg.Export.SheetName)
	assert.Equal(t, "extracao_faturas", cfg.Export.BaseName)
	assert.Equal(t, "json", cfg.Log.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
database:
  driver: postgres
  dsn: postgres://localhost/faturas
  dial_timeout: 10s
batch:
  workers: 8
log:
  format: text
`
	require.NoError(t, os.WriteFile(dir+"/config.yaml", []byte(yaml), 0o644))
	t.Setenv("FATURAS_BATCH_WORKERS", "2")
	t.Setenv("FATURAS_TEXT_METHOD", "native")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.Database.DialTimeout)
	assert.Equal(t, 2, cfg.Batch.Workers, "env overrides file")
	assert.Equal(t, "native", cfg.Text.Method)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestConfig_Validate(t *testing.T) {
	chdirTemp(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Database.Driver = "mysql"
	cfg.Batch.Workers = 0
	cfg.Export.SheetName = ""

	err = cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "batch.workers")
	assert.Contains(t, err.Error(), "export.sheet_name")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JOURNAL_STATE_DIR", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11545", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 4, cfg.UploadConcurrency)
	assert.Equal(t, ":11545", cfg.DevAddr)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("JOURNAL_BASE_URL", "https://journal.example.com")
	t.Setenv("JOURNAL_PAGE_SIZE", "20")
	t.Setenv("JOURNAL_HTTP_TIMEOUT", "5s")
	t.Setenv("JOURNAL_DEBUG", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://journal.example.com", cfg.BaseURL)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestLoad_FileOverlayBelowEnv(t *testing.T) {
	p := writeFile(t, `
base_url = "https://from-file.example.com"
page_size = 10
http_timeout = "7s"
log_level = "warn"
`)
	t.Setenv("JOURNAL_PAGE_SIZE", "25")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "https://from-file.example.com", cfg.BaseURL)
	assert.Equal(t, 25, cfg.PageSize, "env wins over file")
	assert.Equal(t, 7*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 4, cfg.UploadConcurrency, "unset keys keep defaults")
}

func TestLoad_StateDirFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`upload_concurrency = 2`), 0o600))
	t.Setenv("JOURNAL_STATE_DIR", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.UploadConcurrency)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err, "explicit missing file is an error")

	_, err = Load(writeFile(t, `nonsense_key = 1`))
	require.Error(t, err)

	_, err = Load(writeFile(t, `page_size = 0`))
	require.Error(t, err)

	t.Setenv("JOURNAL_LOG_LEVEL", "chatty")
	_, err = Load("")
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "etlforge.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.DefaultRows)
	assert.Equal(t, 10, cfg.MaxErrors)
	assert.Equal(t, 0, cfg.RetryBudget)
	assert.Equal(t, "warn", cfg.LogLevel)

	_, ok, err := cfg.SeedValue()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ETLFORGE_SEED", "42")
	t.Setenv("ETLFORGE_DEFAULT_ROWS", "7")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load(filepath.Join(t.TempDir(), "etlforge.yaml"))
	require.NoError(t, err)
	seed, ok, err := cfg.SeedValue()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), seed)
	assert.Equal(t, 7, cfg.DefaultRows)
	assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etlforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_rows: 500\nmax_errors: 3\nlog_level: info\n"), 0o644))
	t.Setenv("ETLFORGE_MAX_ERRORS", "25")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.DefaultRows)
	assert.Equal(t, 25, cfg.MaxErrors)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	for name, env := range map[string][2]string{
		"negative rows":   {"ETLFORGE_DEFAULT_ROWS", "-1"},
		"bad seed":        {"ETLFORGE_SEED", "abc"},
		"bad level":       {"ETLFORGE_LOG_LEVEL", "loud"},
		"negative budget": {"ETLFORGE_RETRY_BUDGET", "-5"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := Load(filepath.Join(dir, "etlforge.yaml"))
			assert.Error(t, err)
		})
	}
}

func TestLogger(t *testing.T) {
	cfg := &Config{LogLevel: "error"}
	logger, err := cfg.Logger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = cfg.Logger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

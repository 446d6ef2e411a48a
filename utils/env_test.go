package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ETLFORGE_TEST_VALUE=from-file\nETLFORGE_TEST_KEEP=file\n"), 0o644))
	t.Setenv("ETLFORGE_TEST_KEEP", "env")

	loaded, err := LoadEnv(path)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "from-file", os.Getenv("ETLFORGE_TEST_VALUE"))
	assert.Equal(t, "env", os.Getenv("ETLFORGE_TEST_KEEP"))
	os.Unsetenv("ETLFORGE_TEST_VALUE")
}

func TestLoadEnvMissingFile(t *testing.T) {
	loaded, err := LoadEnv(filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
	assert.False(t, loaded)
}

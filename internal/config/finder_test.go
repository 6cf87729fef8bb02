package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLocalConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	configPath := filepath.Join(root, ".runx.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("timeout: 10\n"), 0o644))

	// Found by walking up from a nested directory
	assert.Equal(t, configPath, FindLocalConfig(nested))
}

func TestFindLocalConfig_NotFound(t *testing.T) {
	assert.Equal(t, "", FindLocalConfig(t.TempDir()))
}

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzzielvz/cartera-generator/internal/config"
)

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cartera.log")
	logger, closeFn, err := New(config.LogConfig{Level: "info", Format: "console", File: path})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("visible")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"visible"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_BadLevel(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_BadFile(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "info", File: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

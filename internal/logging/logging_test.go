package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	_, _, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_InvalidFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "xml"
	_, _, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_WritesFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.File = filepath.Join(t.TempDir(), "nodecloud.log")

	log, closeFn, err := New(cfg)
	require.NoError(t, err)
	log.Info("session opened")
	log.Debug("filtered out")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"session opened"`)
	assert.NotContains(t, string(data), "filtered out")
}

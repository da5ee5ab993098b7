package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"dispatch/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_ReleaseModeWritesRotatedFile(t *testing.T) {
	dir := t.TempDir()

	l := logger.New("release", logger.Options{Dir: dir, Filename: "test.log"})
	l.Info("order_created", zap.String("order_id", "abc"))
	_ = l.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"order_created"`)
	assert.Contains(t, string(data), `"order_id":"abc"`)
}

func TestNew_DebugModeEnablesDebugLevel(t *testing.T) {
	l := logger.New("debug", logger.Options{})

	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}

func TestNew_ReleaseModeSkipsDebug(t *testing.T) {
	l := logger.New("release", logger.Options{Dir: t.TempDir()})

	assert.False(t, l.Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
}

func TestInit_ReplacesGlobals(t *testing.T) {
	l := logger.Init("debug", logger.Options{})

	assert.Same(t, l, zap.L())
}

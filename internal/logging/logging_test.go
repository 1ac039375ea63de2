package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "memosum.log")

	logger, err := New(Options{File: path, JSON: true})
	require.NoError(t, err)
	logger.Info("tab saved", zap.String("tab", "abc"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"tab saved"`)
	assert.Contains(t, string(data), `"tab":"abc"`)
}

func TestNew_Levels(t *testing.T) {
	dir := t.TempDir()

	quiet, err := New(Options{File: filepath.Join(dir, "quiet.log")})
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zapcore.DebugLevel))

	verbose, err := New(Options{File: filepath.Join(dir, "verbose.log"), Verbose: true})
	require.NoError(t, err)
	assert.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
}

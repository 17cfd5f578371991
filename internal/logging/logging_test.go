package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/omochice/typing-chat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")

	log, err := logging.New("info", path)
	require.NoError(t, err)
	log.Info("connected")
	log.Debug("hidden at info level")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"connected"`)
	assert.NotContains(t, string(data), "hidden at info level")
}

func TestNew_EmptyFileIsNop(t *testing.T) {
	log, err := logging.New("info", "")
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := logging.New("loud", filepath.Join(t.TempDir(), "client.log"))
	assert.Error(t, err)
}

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "import.log")

	closer, logger, err := FileLogger(logrus.InfoLevel, path)
	require.NoError(t, err)
	logger.SetOutput(os.Stderr)

	logger.WithField("batch", 3).Info("batch committed")
	logger.Debug("not written")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"batch committed"`)
	assert.Contains(t, string(b), `"batch":3`)
	assert.NotContains(t, string(b), "not written")
}

func TestLevelsFrom(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}, levelsFrom(logrus.ErrorLevel))
}

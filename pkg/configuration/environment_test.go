package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "DMOC_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "cmd", "manifest-import")
	requireMkdirAll(t, sub)
	chdir(t, sub)

	_ = os.Unsetenv("DMOC_TEST_ENV_LOAD")
	t.Cleanup(func() { _ = os.Unsetenv("DMOC_TEST_ENV_LOAD") })

	n, err := LoadEnv([]string{".env", ".env.local"})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "ok", os.Getenv("DMOC_TEST_ENV_LOAD"))
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	c, err := Load(nil)
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	assert.Equal(t, 100, c.Import.BatchSize)
	assert.Equal(t, 1, c.Import.Workers)
	assert.Equal(t, 30*time.Second, c.Import.BatchTimeout)
	assert.Equal(t, time.UTC, c.Import.Location())
	assert.Equal(t, RLSModeDisabled, c.RLSEnforce)
	assert.Equal(t, logrus.InfoLevel, c.LogrusLogLevel())
	assert.NotNil(t, c.Logger())
	assert.Contains(t, c.Database.Opts, "dbname=dmoc")
}

func TestLoad_ImportOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("IMPORT_BATCH_SIZE", "250")
	t.Setenv("IMPORT_WORKERS", "4")
	t.Setenv("IMPORT_TIMEZONE", "Africa/Johannesburg")
	t.Setenv("IMPORT_ENCODING", "windows-1252")

	c, err := Load(nil)
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	assert.Equal(t, 250, c.Import.BatchSize)
	assert.Equal(t, 4, c.Import.Workers)
	assert.Equal(t, "Africa/Johannesburg", c.Import.Location().String())
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"zero batch size":    {"IMPORT_BATCH_SIZE": "0"},
		"zero workers":       {"IMPORT_WORKERS": "0"},
		"unknown encoding":   {"IMPORT_ENCODING": "ebcdic"},
		"unknown timezone":   {"IMPORT_TIMEZONE": "Mars/Olympus"},
		"invalid rls":        {"RLS_ENFORCE": "sometimes"},
		"rls with superuser": {"RLS_ENFORCE": "enforce", "DB_USER": "postgres"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load(nil)
			require.Error(t, err)
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(dir))
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjwprotozoa/dmoc-sub000/pkg/configuration"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/manifestfile"
)

func writeExport(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "active.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

func exportRow(id, client string) string {
	cells := make([]string, len(manifestfile.Columns))
	cells[0] = id
	cells[1] = client
	return strings.Join(cells, "\t")
}

var exportHeader = strings.Join(manifestfile.Columns, "\t")

func TestRunParse(t *testing.T) {
	path := writeExport(t,
		exportHeader,
		exportRow("54125", "ACME"),
		"Stopped at border",
		exportRow("", "NO ID"),
	)
	xlsx := filepath.Join(t.TempDir(), "out", "report.xlsx")

	var out bytes.Buffer
	err := runParse(context.Background(), &out, &configuration.Configuration{}, parseOptions{file: path, xlsxPath: xlsx})
	require.NoError(t, err)

	var got struct {
		Status string       `json:"status"`
		Parse  parseSummary `json:"parse"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "parsed", got.Status)
	assert.Equal(t, 2, got.Parse.Total)
	assert.Equal(t, 1, got.Parse.Parsed)
	assert.Equal(t, 1, got.Parse.Errors)
	assert.Equal(t, []string{"row 2 (line 4): Invalid manifest ID"}, got.Parse.Messages)

	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunParse_NoHeaderIsValidationError(t *testing.T) {
	path := writeExport(t, "Active manifests", "nothing tabular here")

	err := runParse(context.Background(), &bytes.Buffer{}, &configuration.Configuration{}, parseOptions{file: path})
	require.Error(t, err)
	assert.Equal(t, exitValidation, exitCode(err))
	assert.ErrorIs(t, err, manifestfile.ErrHeaderNotFound)
}

func TestRunParse_MissingFileIsUsageError(t *testing.T) {
	err := runParse(context.Background(), &bytes.Buffer{}, &configuration.Configuration{}, parseOptions{
		file: filepath.Join(t.TempDir(), "missing.txt"),
	})
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestRunParse_BadEncoding(t *testing.T) {
	path := writeExport(t, exportHeader)
	err := runParse(context.Background(), &bytes.Buffer{}, &configuration.Configuration{}, parseOptions{file: path, encoding: "ebcdic"})
	assert.Equal(t, exitUsage, exitCode(err))
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corepersistence "github.com/jjwprotozoa/dmoc-sub000/modules/core/infrastructure/persistence"
	"github.com/jjwprotozoa/dmoc-sub000/modules/manifests/services"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/configuration"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/manifestfile"
)

type fakeImporter struct {
	got services.ImportOptions
	n   int
	run *services.ImportRun
	err error
}

func (f *fakeImporter) Import(_ context.Context, records []manifestfile.Record, opts services.ImportOptions) (*services.ImportRun, error) {
	f.got = opts
	f.n = len(records)
	return f.run, f.err
}

func sampleReport() *manifestfile.Report {
	return &manifestfile.Report{
		Records: []manifestfile.Record{{Row: 1, ManifestID: 1}, {Row: 2, ManifestID: 2}},
		Errors:  []manifestfile.RowError{},
		Summary: manifestfile.Summary{TotalRows: 2, ParsedRows: 2},
	}
}

func TestRunImport_Summary(t *testing.T) {
	started := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	imp := &fakeImporter{run: &services.ImportRun{
		RunID:      uuid.New(),
		TenantName: "ACME",
		TenantID:   uuid.New(),
		Batches:    1,
		Inserted:   1,
		Updated:    1,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}}

	var out bytes.Buffer
	err := runImport(context.Background(), &out, sampleReport(), importOptions{tenant: "ACME", batchSize: 100, workers: 2}, imp)
	require.NoError(t, err)

	assert.Equal(t, services.ImportOptions{TenantName: "ACME", BatchSize: 100, Workers: 2}, imp.got)
	assert.Equal(t, 2, imp.n)

	var got struct {
		Status     string        `json:"status"`
		Tenant     string        `json:"tenant"`
		DurationMs int64         `json:"duration_ms"`
		Import     importSummary `json:"import"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "ACME", got.Tenant)
	assert.Equal(t, int64(1500), got.DurationMs)
	assert.Equal(t, 1, got.Import.Inserted)
	assert.Equal(t, 1, got.Import.Updated)
	assert.Empty(t, got.Import.Errors)
}

func TestRunImport_BatchErrors(t *testing.T) {
	run := &services.ImportRun{
		Batches:     2,
		Inserted:    1,
		BatchErrors: []*services.BatchError{{Batch: 2, Size: 1, Err: errors.New("deadlock detected")}},
	}

	t.Run("reported but exit ok", func(t *testing.T) {
		var out bytes.Buffer
		err := runImport(context.Background(), &out, sampleReport(), importOptions{tenant: "ACME", batchSize: 1}, &fakeImporter{run: run})
		require.NoError(t, err)
		assert.Contains(t, out.String(), `"status":"partial"`)
		assert.Contains(t, out.String(), "batch 2: deadlock detected")
	})

	t.Run("fail on batch errors", func(t *testing.T) {
		err := runImport(context.Background(), &bytes.Buffer{}, sampleReport(), importOptions{tenant: "ACME", batchSize: 1, failOnBatchErrors: true}, &fakeImporter{run: run})
		require.Error(t, err)
		assert.Equal(t, exitDBWrite, exitCode(err))
	})
}

func TestRunImport_ErrorCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown tenant", corepersistence.ErrTenantNotFound, exitValidation},
		{"ambiguous tenant", corepersistence.ErrTenantAmbiguous, exitValidation},
		{"invalid options", services.ErrInvalidImportOptions, exitUsage},
		{"database down", errors.New("connection refused"), exitDB},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := runImport(context.Background(), &bytes.Buffer{}, sampleReport(), importOptions{tenant: "ACME", batchSize: 10}, &fakeImporter{err: tc.err})
			assert.Equal(t, tc.want, exitCode(err))
		})
	}
}

func TestRunImport_UsageErrors(t *testing.T) {
	imp := &fakeImporter{}
	assert.Equal(t, exitUsage, exitCode(runImport(context.Background(), &bytes.Buffer{}, sampleReport(), importOptions{tenant: " ", batchSize: 1}, imp)))
	assert.Equal(t, exitUsage, exitCode(runImport(context.Background(), &bytes.Buffer{}, sampleReport(), importOptions{tenant: "ACME"}, imp)))
	assert.Equal(t, exitUsage, exitCode(runImport(context.Background(), &bytes.Buffer{}, sampleReport(), importOptions{tenant: "ACME", batchSize: 1, workers: -1}, imp)))
	assert.Equal(t, exitUsage, exitCode(runImport(context.Background(), &bytes.Buffer{}, sampleReport(), importOptions{tenant: "ACME", batchSize: 1, workers: 1 << 40}, imp)))
	assert.Zero(t, imp.n)
}

func TestApplyImportDefaults(t *testing.T) {
	conf := &configuration.Configuration{Import: configuration.ImportOptions{BatchSize: 100, Workers: 3, BatchTimeout: 30 * time.Second}}

	got := applyImportDefaults(importOptions{}, conf)
	assert.Equal(t, 100, got.batchSize)
	assert.Equal(t, 3, got.workers)
	assert.Equal(t, 30*time.Second, got.batchTimeout)

	got = applyImportDefaults(importOptions{batchSize: 7, workers: 1}, conf)
	assert.Equal(t, 7, got.batchSize)
	assert.Equal(t, 1, got.workers)
}

func TestPoolMaxConns(t *testing.T) {
	assert.Equal(t, int32(4), poolMaxConns(0, 4))
	assert.Equal(t, int32(9), poolMaxConns(8, 4))
	assert.Equal(t, int32(services.MaxWorkers+1), poolMaxConns(1<<40, 4))
	assert.Equal(t, int32(4), poolMaxConns(-5, 4))
}

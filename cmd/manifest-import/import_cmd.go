package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	corepersistence "github.com/jjwprotozoa/dmoc-sub000/modules/core/infrastructure/persistence"
	"github.com/jjwprotozoa/dmoc-sub000/modules/manifests/infrastructure/persistence"
	"github.com/jjwprotozoa/dmoc-sub000/modules/manifests/services"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/composables"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/configuration"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/manifestfile"
)

type importOptions struct {
	file              string
	tenant            string
	batchSize         int
	workers           int
	batchTimeout      time.Duration
	dryRun            bool
	failOnBatchErrors bool
	encoding          string
}

type importer interface {
	Import(ctx context.Context, records []manifestfile.Record, opts services.ImportOptions) (*services.ImportRun, error)
}

type importSummary struct {
	Batches  int      `json:"batches"`
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Parse an export and upsert its manifests for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportCmd(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Export file to import (required)")
	cmd.Flags().StringVar(&opts.tenant, "tenant", "", "Tenant name (required)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Records per transaction (default IMPORT_BATCH_SIZE)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent batches (default IMPORT_WORKERS)")
	cmd.Flags().DurationVar(&opts.batchTimeout, "batch-timeout", 0, "Per-batch timeout (default IMPORT_BATCH_TIMEOUT)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Count records without writing to the database")
	cmd.Flags().BoolVar(&opts.failOnBatchErrors, "fail-on-batch-errors", false, "Exit non-zero when any batch failed")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "", "Input encoding: auto|utf-8|utf-16le|windows-1252 (default IMPORT_ENCODING)")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runImportCmd(cmd *cobra.Command, opts importOptions) error {
	ctx := cmd.Context()
	conf := configuration.Use()
	opts = applyImportDefaults(opts, conf)
	if err := checkImportFlags(opts); err != nil {
		return err
	}

	report, err := parseExport(conf, opts.file, opts.encoding)
	if err != nil {
		return err
	}

	pool, err := connectDB(ctx, conf, opts.workers)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx = composables.WithPool(ctx, pool)
	ctx = composables.WithLogger(ctx, conf.Logger().WithField("cmd", "import"))

	svc := services.NewImportService(
		corepersistence.NewTenantRepository(),
		persistence.NewManifestRepository(),
	)
	runErr := runImport(ctx, cmd.OutOrStdout(), report, opts, svc)

	if err := services.PushMetrics(ctx, conf.Prometheus.PushgatewayURL, conf.Prometheus.Job, prometheus.DefaultGatherer); err != nil {
		composables.UseLogger(ctx).WithError(err).Warn("metrics push failed")
	}
	return runErr
}

func applyImportDefaults(opts importOptions, conf *configuration.Configuration) importOptions {
	if opts.batchSize == 0 {
		opts.batchSize = conf.Import.BatchSize
	}
	if opts.workers == 0 {
		opts.workers = conf.Import.Workers
	}
	if opts.batchTimeout == 0 {
		opts.batchTimeout = conf.Import.BatchTimeout
	}
	return opts
}

func checkImportFlags(opts importOptions) error {
	if strings.TrimSpace(opts.tenant) == "" {
		return withCode(exitUsage, fmt.Errorf("--tenant is required"))
	}
	if opts.batchSize <= 0 {
		return withCode(exitUsage, fmt.Errorf("--batch-size must be positive"))
	}
	if opts.workers < 0 || opts.workers > services.MaxWorkers {
		return withCode(exitUsage, fmt.Errorf("--workers must be between 0 and %d", services.MaxWorkers))
	}
	return nil
}

func runImport(ctx context.Context, w io.Writer, report *manifestfile.Report, opts importOptions, imp importer) error {
	if err := checkImportFlags(opts); err != nil {
		return err
	}

	run, err := imp.Import(ctx, report.Records, services.ImportOptions{
		TenantName:   opts.tenant,
		BatchSize:    opts.batchSize,
		DryRun:       opts.dryRun,
		Workers:      opts.workers,
		BatchTimeout: opts.batchTimeout,
	})
	if err != nil {
		switch {
		case errors.Is(err, corepersistence.ErrTenantNotFound), errors.Is(err, corepersistence.ErrTenantAmbiguous):
			return withCode(exitValidation, err)
		case errors.Is(err, services.ErrInvalidImportOptions):
			return withCode(exitUsage, err)
		default:
			return withCode(exitDB, err)
		}
	}

	status := "ok"
	if len(run.BatchErrors) > 0 {
		status = "partial"
	}
	if err := writeJSONLine(w, map[string]any{
		"status":      status,
		"run_id":      run.RunID.String(),
		"tenant":      run.TenantName,
		"tenant_id":   run.TenantID.String(),
		"dry_run":     run.DryRun,
		"duration_ms": run.Duration().Milliseconds(),
		"parse":       newParseSummary(report),
		"import": importSummary{
			Batches:  run.Batches,
			Inserted: run.Inserted,
			Updated:  run.Updated,
			Failed:   run.Failed(),
			Errors:   run.Errors(),
		},
	}); err != nil {
		return err
	}

	if opts.failOnBatchErrors && len(run.BatchErrors) > 0 {
		return withCode(exitDBWrite, fmt.Errorf("%d of %d batches failed", len(run.BatchErrors), run.Batches))
	}
	return nil
}

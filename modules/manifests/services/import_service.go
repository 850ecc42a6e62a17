package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jjwprotozoa/dmoc-sub000/modules/core/domain/entities/tenant"
	"github.com/jjwprotozoa/dmoc-sub000/modules/manifests/domain/manifest"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/composables"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/manifestfile"
)

// BatchError records one failed batch. The batch's transaction was rolled
// back, so none of its records were written.
type BatchError struct {
	Batch int
	Size  int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d: %v", e.Batch, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

type ImportRun struct {
	RunID      uuid.UUID
	TenantName string
	TenantID   uuid.UUID
	BatchSize  int
	DryRun     bool

	Batches  int
	Inserted int
	Updated  int

	BatchErrors []*BatchError

	StartedAt  time.Time
	FinishedAt time.Time
}

// Errors renders the batch errors in batch order.
func (r *ImportRun) Errors() []string {
	out := make([]string, 0, len(r.BatchErrors))
	for _, e := range r.BatchErrors {
		out = append(out, e.Error())
	}
	return out
}

func (r *ImportRun) Failed() int {
	n := 0
	for _, e := range r.BatchErrors {
		n += e.Size
	}
	return n
}

func (r *ImportRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Partition splits records into consecutive batches of at most size records.
// The batches share the backing array of records.
func Partition(records []manifestfile.Record, size int) [][]manifestfile.Record {
	if size <= 0 || len(records) == 0 {
		return nil
	}
	batches := make([][]manifestfile.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, records[start:end:end])
	}
	return batches
}

type ImportService struct {
	tenants   tenant.Repository
	manifests manifest.Repository

	runTx  TxRunner
	logger *logrus.Entry
	now    func() time.Time
}

func NewImportService(tenants tenant.Repository, manifests manifest.Repository, opts ...ImportServiceOption) *ImportService {
	s := &ImportService{
		tenants:   tenants,
		manifests: manifests,
		runTx:     SerializableTenantTx,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ImportService) log(ctx context.Context) *logrus.Entry {
	if s.logger != nil {
		return s.logger
	}
	return composables.UseLogger(ctx)
}

// Import writes records to the named tenant in batches. An unknown tenant
// or invalid options fail the whole run before any batch is attempted.
// Batch failures are collected on the returned run and never abort it.
func (s *ImportService) Import(ctx context.Context, records []manifestfile.Record, opts ImportOptions) (*ImportRun, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.setDefaults()
	m := getMetrics()

	run := &ImportRun{
		RunID:      uuid.New(),
		TenantName: opts.TenantName,
		BatchSize:  opts.BatchSize,
		DryRun:     opts.DryRun,
		StartedAt:  s.now(),
	}
	logger := s.log(ctx).WithFields(logrus.Fields{
		"run_id":     run.RunID.String(),
		"tenant":     opts.TenantName,
		"batch_size": opts.BatchSize,
		"dry_run":    opts.DryRun,
	})

	t, err := s.tenants.GetByName(ctx, opts.TenantName)
	if err != nil {
		m.runsTotal.WithLabelValues("failed").Inc()
		return nil, errors.Wrap(err, "resolve tenant")
	}
	run.TenantID = t.ID()
	ctx = composables.WithTenantID(ctx, t.ID())
	logger = logger.WithField("tenant_id", t.ID().String())

	batches := Partition(records, opts.BatchSize)
	run.Batches = len(batches)

	results := make([]batchResult, len(batches))
	if opts.Workers <= 1 || len(batches) <= 1 {
		for i, b := range batches {
			results[i] = s.runBatch(ctx, logger, run.TenantID, i+1, b, opts)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for i, b := range batches {
			g.Go(func() error {
				results[i] = s.runBatch(ctx, logger, run.TenantID, i+1, b, opts)
				return nil
			})
		}
		_ = g.Wait()
	}

	for _, r := range results {
		run.Inserted += r.result.Inserted
		run.Updated += r.result.Updated
		if r.err != nil {
			run.BatchErrors = append(run.BatchErrors, r.err)
		}
	}
	run.FinishedAt = s.now()

	outcome := "ok"
	if len(run.BatchErrors) > 0 {
		outcome = "partial"
	}
	m.runsTotal.WithLabelValues(outcome).Inc()

	entry := logger.WithFields(logrus.Fields{
		"records":     len(records),
		"batches":     run.Batches,
		"inserted":    run.Inserted,
		"updated":     run.Updated,
		"failed":      run.Failed(),
		"errors":      len(run.BatchErrors),
		"duration_ms": run.Duration().Milliseconds(),
	})
	if len(run.BatchErrors) > 0 {
		entry.Warn("manifest import finished with batch errors")
	} else {
		entry.Info("manifest import finished")
	}
	return run, nil
}

type batchResult struct {
	result manifest.UpsertResult
	err    *BatchError
}

func (s *ImportService) runBatch(
	ctx context.Context,
	logger *logrus.Entry,
	tenantID uuid.UUID,
	ordinal int,
	records []manifestfile.Record,
	opts ImportOptions,
) batchResult {
	m := getMetrics()
	logger = logger.WithFields(logrus.Fields{"batch": ordinal, "size": len(records)})

	if opts.DryRun {
		m.batchesTotal.WithLabelValues(batchResultDryRun).Inc()
		logger.Debug("dry run: batch skipped")
		return batchResult{result: manifest.UpsertResult{Inserted: len(records)}}
	}

	manifests := make([]*manifest.Manifest, 0, len(records))
	for _, r := range records {
		manifests = append(manifests, manifest.FromRecord(tenantID, r))
	}

	batchCtx := ctx
	if opts.BatchTimeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, opts.BatchTimeout)
		defer cancel()
	}

	start := time.Now()
	var res manifest.UpsertResult
	err := s.runTx(batchCtx, func(txCtx context.Context) error {
		var upsertErr error
		res, upsertErr = s.manifests.UpsertBatch(txCtx, tenantID, manifests)
		return upsertErr
	})
	elapsed := time.Since(start)

	if err != nil {
		m.batchesTotal.WithLabelValues(batchResultFailed).Inc()
		m.batchLatency.WithLabelValues(batchResultFailed).Observe(elapsed.Seconds())
		m.recordsTotal.WithLabelValues(recordOutcomeFailed).Add(float64(len(records)))
		logger.WithError(err).Warn("batch upsert failed")
		return batchResult{err: &BatchError{Batch: ordinal, Size: len(records), Err: err}}
	}

	m.batchesTotal.WithLabelValues(batchResultOK).Inc()
	m.batchLatency.WithLabelValues(batchResultOK).Observe(elapsed.Seconds())
	m.recordsTotal.WithLabelValues(recordOutcomeInserted).Add(float64(res.Inserted))
	m.recordsTotal.WithLabelValues(recordOutcomeUpdated).Add(float64(res.Updated))
	logger.WithFields(logrus.Fields{
		"inserted":    res.Inserted,
		"updated":     res.Updated,
		"duration_ms": elapsed.Milliseconds(),
	}).Debug("batch upserted")
	return batchResult{result: res}
}

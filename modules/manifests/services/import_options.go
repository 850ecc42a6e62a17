package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/jjwprotozoa/dmoc-sub000/pkg/composables"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/serrors"
)

var ErrInvalidImportOptions = serrors.NewError("IMPORT_INVALID_OPTIONS", "invalid import options", "")

// MaxWorkers bounds concurrent batch transactions per run.
const MaxWorkers = 64

var validate = validator.New()

type ImportOptions struct {
	TenantName string `validate:"required"`
	BatchSize  int    `validate:"gt=0"`
	DryRun     bool
	// Zero means one worker, i.e. batches run strictly in sequence.
	Workers int `validate:"gte=0,lte=64"`
	// Zero disables the per-batch timeout.
	BatchTimeout time.Duration `validate:"gte=0"`
}

func (o *ImportOptions) setDefaults() {
	if o.Workers == 0 {
		o.Workers = 1
	}
}

func (o ImportOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidImportOptions, serrors.ProcessValidatorErrors(verrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalidImportOptions, err)
	}
	return nil
}

// TxRunner runs fn inside a storage transaction.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

// SerializableTenantTx opens a serializable transaction scoped to the tenant
// in ctx.
func SerializableTenantTx(ctx context.Context, fn func(context.Context) error) error {
	return composables.InTenantTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
}

type ImportServiceOption func(*ImportService)

func WithTxRunner(run TxRunner) ImportServiceOption {
	return func(s *ImportService) {
		if run != nil {
			s.runTx = run
		}
	}
}

func WithLogger(logger *logrus.Entry) ImportServiceOption {
	return func(s *ImportService) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) ImportServiceOption {
	return func(s *ImportService) {
		if now != nil {
			s.now = now
		}
	}
}

package persistence

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/jjwprotozoa/dmoc-sub000/modules/core/domain/entities/tenant"
	"github.com/jjwprotozoa/dmoc-sub000/modules/core/infrastructure/persistence/models"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/composables"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/serrors"
)

var (
	ErrTenantNotFound  = serrors.NewError("TENANT_NOT_FOUND", "tenant not found", "Errors.TenantNotFound")
	ErrTenantAmbiguous = serrors.NewError("TENANT_AMBIGUOUS", "tenant name matches more than one tenant", "Errors.TenantAmbiguous")
)

const (
	tenantFindQuery = `SELECT id, name, created_at, updated_at FROM tenants`
)

type TenantRepository struct{}

func NewTenantRepository() tenant.Repository {
	return &TenantRepository{}
}

// GetByName matches names case-insensitively after trimming. An exact match
// wins; otherwise a name that folds onto several tenants is rejected.
func (r *TenantRepository) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTenantNotFound
	}

	query := tenantFindQuery + " WHERE lower(name) = lower($1) ORDER BY (name = $1) DESC, created_at LIMIT 2"
	tenants, err := r.queryTenants(ctx, query, name)
	if err != nil {
		return nil, err
	}
	switch {
	case len(tenants) == 0:
		return nil, errors.Wrapf(ErrTenantNotFound, "name %q", name)
	case tenants[0].Name() == name, len(tenants) == 1:
		return tenants[0], nil
	default:
		return nil, errors.Wrapf(ErrTenantAmbiguous, "name %q", name)
	}
}

func (r *TenantRepository) queryTenants(ctx context.Context, query string, args ...interface{}) ([]*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan tenant row")
		}
		mapped, err := toDomainTenant(&t)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, mapped)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return tenants, nil
}

func toDomainTenant(t *models.Tenant) (*tenant.Tenant, error) {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "tenant id %q", t.ID)
	}
	return tenant.New(
		t.Name,
		tenant.WithID(id),
		tenant.WithCreatedAt(t.CreatedAt),
		tenant.WithUpdatedAt(t.UpdatedAt),
	), nil
}

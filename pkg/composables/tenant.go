package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jjwprotozoa/dmoc-sub000/pkg/constants"
)

var ErrNoTenantID = errors.New("tenant id not found in context")

func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, tenantID)
}

func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(constants.TenantIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoTenantID
	}
	return id, nil
}

package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository resolves the tenant an import run writes to.
type Repository interface {
	GetByName(ctx context.Context, name string) (*Tenant, error)
}

type Tenant struct {
	id        uuid.UUID
	name      string
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Tenant)

func WithID(id uuid.UUID) Option {
	return func(t *Tenant) {
		t.id = id
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(t *Tenant) {
		t.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(t *Tenant) {
		t.updatedAt = updatedAt
	}
}

func New(name string, opts ...Option) *Tenant {
	t := &Tenant{
		id:        uuid.New(),
		name:      name,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tenant) ID() uuid.UUID {
	return t.id
}

func (t *Tenant) Name() string {
	return t.name
}

func (t *Tenant) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Tenant) UpdatedAt() time.Time {
	return t.updatedAt
}

package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jjwprotozoa/dmoc-sub000/modules/manifests/domain/manifest"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/composables"
)

// Title and status are only set by the INSERT branch. xmax is zero for a
// freshly inserted row and non-zero for one rewritten by DO UPDATE.
const manifestUpsertQuery = `
INSERT INTO manifests (
	tenant_id, manifest_id, title, status,
	client, transporter, officer, driver, horse, tracker, wa_connected, location,
	trailer1, type1, seal1, weight1, trailer2, type2, seal2, weight2,
	route, rmn, job_number, convoy, controller, status_note,
	started_at, last_update_at, ended_at, since_last_update_ms, trip_duration_ms,
	created_at, modified_at
) VALUES (
	$1, $2, $3, $4,
	$5, $6, $7, $8, $9, $10, $11, $12,
	$13, $14, $15, $16, $17, $18, $19, $20,
	$21, $22, $23, $24, $25, $26,
	$27, $28, $29, $30, $31,
	now(), now()
)
ON CONFLICT (tenant_id, manifest_id) DO UPDATE SET
	client = EXCLUDED.client,
	transporter = EXCLUDED.transporter,
	officer = EXCLUDED.officer,
	driver = EXCLUDED.driver,
	horse = EXCLUDED.horse,
	tracker = EXCLUDED.tracker,
	wa_connected = EXCLUDED.wa_connected,
	location = EXCLUDED.location,
	trailer1 = EXCLUDED.trailer1,
	type1 = EXCLUDED.type1,
	seal1 = EXCLUDED.seal1,
	weight1 = EXCLUDED.weight1,
	trailer2 = EXCLUDED.trailer2,
	type2 = EXCLUDED.type2,
	seal2 = EXCLUDED.seal2,
	weight2 = EXCLUDED.weight2,
	route = EXCLUDED.route,
	rmn = EXCLUDED.rmn,
	job_number = EXCLUDED.job_number,
	convoy = EXCLUDED.convoy,
	controller = EXCLUDED.controller,
	status_note = EXCLUDED.status_note,
	started_at = EXCLUDED.started_at,
	last_update_at = EXCLUDED.last_update_at,
	ended_at = EXCLUDED.ended_at,
	since_last_update_ms = EXCLUDED.since_last_update_ms,
	trip_duration_ms = EXCLUDED.trip_duration_ms,
	modified_at = now()
RETURNING (xmax = 0) AS inserted`

const manifestFindQuery = `
SELECT tenant_id, manifest_id, title, status,
	client, transporter, officer, driver, horse, tracker, wa_connected, location,
	trailer1, type1, seal1, weight1, trailer2, type2, seal2, weight2,
	route, rmn, job_number, convoy, controller, status_note,
	started_at, last_update_at, ended_at, since_last_update_ms, trip_duration_ms,
	created_at, modified_at
FROM manifests`

type ManifestRepository struct{}

func NewManifestRepository() *ManifestRepository {
	return &ManifestRepository{}
}

func (r *ManifestRepository) UpsertBatch(ctx context.Context, tenantID uuid.UUID, manifests []*manifest.Manifest) (manifest.UpsertResult, error) {
	if len(manifests) == 0 {
		return manifest.UpsertResult{}, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return manifest.UpsertResult{}, errors.Wrap(err, "failed to get transaction")
	}

	batch := &pgx.Batch{}
	for _, m := range manifests {
		batch.Queue(manifestUpsertQuery, upsertArgs(tenantID, m)...)
	}

	br := tx.SendBatch(ctx, batch)
	var result manifest.UpsertResult
	for _, m := range manifests {
		var inserted bool
		if err := br.QueryRow().Scan(&inserted); err != nil {
			_ = br.Close()
			return manifest.UpsertResult{}, errors.Wrapf(err, "upsert manifest %d", m.ManifestID)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
	if err := br.Close(); err != nil {
		return manifest.UpsertResult{}, errors.Wrap(err, "close batch")
	}
	return result, nil
}

// GetByManifestID returns nil, nil when no row exists.
func (r *ManifestRepository) GetByManifestID(ctx context.Context, tenantID uuid.UUID, manifestID int64) (*manifest.Manifest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	row := tx.QueryRow(ctx, manifestFindQuery+" WHERE tenant_id = $1 AND manifest_id = $2", tenantID, manifestID)
	m, err := scanManifest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get manifest %d", manifestID)
	}
	return m, nil
}

func (r *ManifestRepository) Count(ctx context.Context, tenantID uuid.UUID) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	var n int
	if err := tx.QueryRow(ctx, "SELECT count(*) FROM manifests WHERE tenant_id = $1", tenantID).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count manifests")
	}
	return n, nil
}

func upsertArgs(tenantID uuid.UUID, m *manifest.Manifest) []any {
	return []any{
		tenantID, m.ManifestID, m.Title, string(m.Status),
		m.Client, m.Transporter, m.Officer, m.Driver, m.Horse, m.Tracker, m.WAConnected, m.Location,
		m.Trailer1, m.Type1, m.Seal1, m.Weight1, m.Trailer2, m.Type2, m.Seal2, m.Weight2,
		m.Route, m.RMN, m.JobNumber, m.Convoy, m.Controller, m.StatusNote,
		m.StartedAt, m.LastUpdateAt, m.EndedAt, m.SinceLastUpdateMs, m.TripDurationMs,
	}
}

func scanManifest(row pgx.Row) (*manifest.Manifest, error) {
	var (
		m      manifest.Manifest
		status string
	)
	if err := row.Scan(
		&m.TenantID, &m.ManifestID, &m.Title, &status,
		&m.Client, &m.Transporter, &m.Officer, &m.Driver, &m.Horse, &m.Tracker, &m.WAConnected, &m.Location,
		&m.Trailer1, &m.Type1, &m.Seal1, &m.Weight1, &m.Trailer2, &m.Type2, &m.Seal2, &m.Weight2,
		&m.Route, &m.RMN, &m.JobNumber, &m.Convoy, &m.Controller, &m.StatusNote,
		&m.StartedAt, &m.LastUpdateAt, &m.EndedAt, &m.SinceLastUpdateMs, &m.TripDurationMs,
		&m.CreatedAt, &m.ModifiedAt,
	); err != nil {
		return nil, err
	}
	m.Status = manifest.Status(status)
	return &m, nil
}

// Package manifest is the stored form of a parsed manifest record.
package manifest

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jjwprotozoa/dmoc-sub000/pkg/manifestfile"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Repository writes manifests for a single tenant. UpsertBatch must run
// inside the caller's transaction; it does not commit.
type Repository interface {
	UpsertBatch(ctx context.Context, tenantID uuid.UUID, manifests []*Manifest) (UpsertResult, error)
}

type UpsertResult struct {
	Inserted int
	Updated  int
}

func (r UpsertResult) Total() int {
	return r.Inserted + r.Updated
}

func (r *UpsertResult) Add(other UpsertResult) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
}

// Manifest is keyed by (TenantID, ManifestID). Title and Status are only
// written when the row is first created.
type Manifest struct {
	TenantID   uuid.UUID
	ManifestID int64
	Title      string
	Status     Status

	Client      string
	Transporter string
	Officer     string
	Driver      string
	Horse       string
	Tracker     string
	WAConnected bool
	Location    string

	Trailer1 string
	Type1    string
	Seal1    string
	Weight1  float64
	Trailer2 string
	Type2    string
	Seal2    string
	Weight2  float64

	Route      string
	RMN        string
	JobNumber  string
	Convoy     string
	Controller string
	StatusNote string

	StartedAt         *time.Time
	LastUpdateAt      *time.Time
	EndedAt           *time.Time
	SinceLastUpdateMs *int64
	TripDurationMs    *int64

	CreatedAt  time.Time
	ModifiedAt time.Time
}

func FromRecord(tenantID uuid.UUID, r manifestfile.Record) *Manifest {
	return &Manifest{
		TenantID:          tenantID,
		ManifestID:        r.ManifestID,
		Title:             DeriveTitle(r),
		Status:            DeriveStatus(r),
		Client:            r.Client,
		Transporter:       r.Transporter,
		Officer:           r.Officer,
		Driver:            r.Driver,
		Horse:             r.Horse,
		Tracker:           r.Tracker,
		WAConnected:       r.WAConnected,
		Location:          r.Location,
		Trailer1:          r.Trailer1,
		Type1:             r.Type1,
		Seal1:             r.Seal1,
		Weight1:           r.Weight1,
		Trailer2:          r.Trailer2,
		Type2:             r.Type2,
		Seal2:             r.Seal2,
		Weight2:           r.Weight2,
		Route:             r.Route,
		RMN:               r.RMN,
		JobNumber:         r.JobNumber,
		Convoy:            r.Convoy,
		Controller:        r.Controller,
		StatusNote:        r.StatusNote,
		StartedAt:         r.Started,
		LastUpdateAt:      r.Updated,
		EndedAt:           r.Ended,
		SinceLastUpdateMs: r.SinceLastUpdateMs,
		TripDurationMs:    r.TripDurationMs,
	}
}

// DeriveTitle joins the client with the RMN, or the job number when the RMN
// is empty. A record with neither falls back to its manifest id.
func DeriveTitle(r manifestfile.Record) string {
	ref := r.RMN
	if ref == "" {
		ref = r.JobNumber
	}
	parts := make([]string, 0, 2)
	if r.Client != "" {
		parts = append(parts, r.Client)
	}
	if ref != "" {
		parts = append(parts, ref)
	}
	if len(parts) == 0 {
		return "Manifest " + strconv.FormatInt(r.ManifestID, 10)
	}
	return strings.Join(parts, " - ")
}

func DeriveStatus(r manifestfile.Record) Status {
	if r.Ended != nil {
		return StatusCompleted
	}
	return StatusInProgress
}

package manifestfile

import (
	"strings"
	"time"
)

type builder struct {
	header []string
	idx    map[string]int
	loc    *time.Location
}

func newBuilder(header []string, loc *time.Location) *builder {
	return &builder{
		header: header,
		idx:    headerIndex(header),
		loc:    loc,
	}
}

// headerIndex maps a column name to its position; the first occurrence of a
// repeated name wins.
func headerIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := m[name]; ok {
			continue
		}
		m[name] = i
	}
	return m
}

// build turns one record's cells and narrative lines into a Record. The only
// failure is an unusable manifest id; every other column is normalized
// leniently.
func (b *builder) build(cells []string, narrative []string) (Record, error) {
	get := func(name string) string {
		i, ok := b.idx[name]
		if !ok || i >= len(cells) {
			return ""
		}
		return cells[i]
	}

	id := parseManifestID(get(ColID))
	if id <= 0 {
		return Record{}, ErrInvalidManifestID
	}

	return Record{
		ManifestID:  id,
		Client:      CleanString(get(ColClient)),
		Transporter: CleanString(get(ColTransporter)),
		Officer:     CleanString(get(ColOfficer)),
		Driver:      CleanString(get(ColDriver)),
		Horse:       CleanString(get(ColHorse)),
		Tracker:     CleanString(get(ColTracker)),
		WAConnected: ParseBoolean(get(ColWAConnected)),
		Location:    CleanString(get(ColLocation)),

		Trailer1: CleanString(get(ColTrailer1)),
		Type1:    CleanString(get(ColType1)),
		Seal1:    CleanString(get(ColSeal1)),
		Weight1:  ParseFloatSafe(get(ColWeight1)),
		Trailer2: CleanString(get(ColTrailer2)),
		Type2:    CleanString(get(ColType2)),
		Seal2:    CleanString(get(ColSeal2)),
		Weight2:  ParseFloatSafe(get(ColWeight2)),

		Route:      CleanString(get(ColRoute)),
		RMN:        CleanString(get(ColRMN)),
		JobNumber:  CleanString(get(ColJobNumber)),
		Convoy:     CleanString(get(ColConvoy)),
		Controller: CleanString(get(ColController)),

		Started:           ParseFlexibleDate(get(ColStarted), b.loc),
		Updated:           ParseFlexibleDate(get(ColUpdated), b.loc),
		Ended:             ParseFlexibleDate(get(ColEnded), b.loc),
		SinceLastUpdateMs: ParseDuration(get(ColSinceLastUpdate)),
		TripDurationMs:    ParseDuration(get(ColTripDuration)),

		StatusNote: strings.TrimSpace(strings.Join(narrative, "\n")),
	}, nil
}

// parseManifestID reads the leading integer of the id cell, matching the
// digit-prefix rule used to detect record starts. Zero means unusable.
func parseManifestID(cell string) int64 {
	v := strings.TrimSpace(cell)
	if v == "" || !isDigit(v[0]) {
		return 0
	}
	return leadingInt(v)
}

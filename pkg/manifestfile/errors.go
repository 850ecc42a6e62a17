package manifestfile

import (
	"fmt"

	"github.com/jjwprotozoa/dmoc-sub000/pkg/serrors"
)

var (
	ErrHeaderNotFound    = serrors.NewError("MANIFEST_HEADER_NOT_FOUND", "no header row found", "")
	ErrInvalidManifestID = serrors.NewError("MANIFEST_INVALID_ID", "Invalid manifest ID", "")
	ErrCountMismatch     = serrors.NewError("MANIFEST_COUNT_MISMATCH", "row counters disagree with parse output", "")
)

// RowError describes one rejected record. Row is the 1-based ordinal of the
// record in the file; the manifest id is not used since it may be the
// missing piece.
type RowError struct {
	Row    int    `json:"row"`
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (line %d): %s", e.Row, e.Line, e.Reason)
}

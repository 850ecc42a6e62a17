package manifestfile

import "strings"

// MinHeaderFields is the tab field count a line needs to be taken as the
// header row.
const MinHeaderFields = 10

// IsRecordStart decides whether line opens a new record or continues the
// narrative of the current one. A line starts a record when its first
// non-blank character is a digit or when it carries at least 80% of the
// header's tab fields.
//
// Narrative lines that happen to start with digits (truck registrations such
// as "944 ...") are classified as record starts. That is a property of the
// export format and is kept as is: tightening the rule changes which text
// attaches to which manifest.
func IsRecordStart(line string, headerFieldCount int) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if isDigit(trimmed[0]) {
		return true
	}
	fields := strings.Count(line, "\t") + 1
	return headerFieldCount > 0 && fields*5 >= headerFieldCount*4
}

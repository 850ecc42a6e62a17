package manifestfile

import "fmt"

type Summary struct {
	TotalRows  int `json:"total_rows"`
	ParsedRows int `json:"parsed_rows"`
	ErrorRows  int `json:"error_rows"`
}

// Report is the outcome of one parse. Records and Errors are in file order.
type Report struct {
	Header  []string   `json:"header"`
	Records []Record   `json:"records"`
	Errors  []RowError `json:"errors"`
	Summary Summary    `json:"summary"`
}

// Messages renders the row errors as text.
func (r *Report) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Error())
	}
	return out
}

func (r *Report) accept(rec Record) {
	r.Records = append(r.Records, rec)
}

func (r *Report) reject(row, line int, err error) {
	r.Errors = append(r.Errors, RowError{Row: row, Line: line, Reason: err.Error()})
}

// finish fills the parsed/error counts and checks them against the number of
// record boundaries closed. There is no fallback: a disagreement is a bug in
// the assembler.
func (r *Report) finish(closed int) error {
	r.Summary = Summary{
		TotalRows:  closed,
		ParsedRows: len(r.Records),
		ErrorRows:  len(r.Errors),
	}
	if r.Summary.TotalRows != r.Summary.ParsedRows+r.Summary.ErrorRows {
		return fmt.Errorf("%w: total=%d parsed=%d errors=%d",
			ErrCountMismatch, r.Summary.TotalRows, r.Summary.ParsedRows, r.Summary.ErrorRows)
	}
	return nil
}

// Package manifestfile reads the "active manifests" export of the fleet
// tracking desktop application: a tab separated table whose rows are
// interleaved with free text narrative lines.
package manifestfile

import (
	"fmt"
	"os"
	"time"
)

type config struct {
	loc *time.Location
	enc Encoding
}

type Option func(*config)

// WithLocation sets the timezone the export's timestamps are written in.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func WithEncoding(enc Encoding) Option {
	return func(c *config) {
		c.enc = enc
	}
}

// Parse reads a whole export. A missing header row is the only file level
// failure; it returns ErrHeaderNotFound with an empty report. Rejected rows
// are reported in Report.Errors and never fail the parse.
func Parse(data []byte, opts ...Option) (*Report, error) {
	cfg := config{loc: time.UTC, enc: EncodingAuto}
	for _, o := range opts {
		o(&cfg)
	}

	text, err := decode(data, cfg.enc)
	if err != nil {
		return &Report{Records: []Record{}, Errors: []RowError{}}, err
	}
	return assemble(splitLines(text), cfg)
}

func ParseFile(path string, opts ...Option) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, opts...)
}

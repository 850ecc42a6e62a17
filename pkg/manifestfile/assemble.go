package manifestfile

import (
	"strings"
)

type openRecord struct {
	line      int
	cells     []string
	narrative []string
}

type assembler struct {
	report *Report
	b      *builder
	open   *openRecord
	closed int
}

// assemble walks the lines of an export: seek the header, then group every
// following line into records, then close the last record at end of input.
func assemble(lines []string, cfg config) (*Report, error) {
	report := &Report{
		Records: []Record{},
		Errors:  []RowError{},
	}

	headerAt := -1
	for i, line := range lines {
		if strings.Count(line, "\t")+1 >= MinHeaderFields {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return report, ErrHeaderNotFound
	}

	header := strings.Split(lines[headerAt], "\t")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	report.Header = header

	a := &assembler{report: report, b: newBuilder(header, cfg.loc)}
	for i := headerAt + 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if IsRecordStart(line, len(header)) {
			a.close()
			a.open = &openRecord{line: i + 1, cells: strings.Split(line, "\t")}
			continue
		}
		if a.open == nil {
			continue
		}
		a.open.narrative = append(a.open.narrative, line)
	}
	a.close()

	if err := report.finish(a.closed); err != nil {
		return report, err
	}
	return report, nil
}

func (a *assembler) close() {
	if a.open == nil {
		return
	}
	a.closed++
	rec, err := a.b.build(a.open.cells, a.open.narrative)
	if err != nil {
		a.report.reject(a.closed, a.open.line, err)
	} else {
		rec.Row = a.closed
		rec.Line = a.open.line
		a.report.accept(rec)
	}
	a.open = nil
}

// splitLines splits on \n and drops a trailing \r from each line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

package services

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jjwprotozoa/dmoc-sub000/pkg/manifestfile"
)

const (
	manifestsSheet = "Manifests"
	errorsSheet    = "Errors"
	excelTimestamp = "2006-01-02 15:04:05"
)

// ExcelExportService renders parse reports as workbooks for the controller
// desk to review rejected rows.
type ExcelExportService struct {
	loc *time.Location
}

// NewExcelExportService writes timestamps in loc; nil means UTC.
func NewExcelExportService(loc *time.Location) *ExcelExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExcelExportService{loc: loc}
}

// ExportParseReport returns an .xlsx with one row per parsed record on the
// Manifests sheet and one row per rejected record on the Errors sheet.
func (s *ExcelExportService) ExportParseReport(report *manifestfile.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", manifestsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(errorsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	header := make([]any, 0, len(manifestfile.Columns)+1)
	for _, c := range manifestfile.Columns {
		header = append(header, c)
	}
	header = append(header, "StatusNote")
	if err := setRow(f, manifestsSheet, 1, header); err != nil {
		return nil, err
	}
	if err := setRow(f, errorsSheet, 1, []any{"Row", "Line", "Reason"}); err != nil {
		return nil, err
	}

	if report != nil {
		for i, rec := range report.Records {
			if err := setRow(f, manifestsSheet, i+2, s.recordRow(rec)); err != nil {
				return nil, err
			}
		}
		for i, rowErr := range report.Errors {
			if err := setRow(f, errorsSheet, i+2, []any{rowErr.Row, rowErr.Line, rowErr.Reason}); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func (s *ExcelExportService) recordRow(r manifestfile.Record) []any {
	return []any{
		r.ManifestID, r.Client, r.Transporter, r.Officer, r.Driver, r.Horse, r.Tracker,
		r.WAConnected, r.Location, r.Trailer1, r.Type1, r.Seal1, r.Weight1,
		r.Trailer2, r.Type2, r.Seal2, r.Weight2, r.Route, r.RMN, r.JobNumber,
		r.Convoy, s.timestamp(r.Started), s.timestamp(r.Updated), s.timestamp(r.Ended),
		clock(r.SinceLastUpdateMs), clock(r.TripDurationMs), r.Controller,
		r.StatusNote,
	}
}

func (s *ExcelExportService) timestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format(excelTimestamp)
}

// clock renders milliseconds in the export's own D.HH:MM:SS notation.
func clock(ms *int64) string {
	if ms == nil {
		return ""
	}
	total := *ms / 1000
	days := total / 86400
	h := (total % 86400) / 3600
	m := (total % 3600) / 60
	sec := total % 60
	if days > 0 {
		return fmt.Sprintf("%d.%02d:%02d:%02d", days, h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

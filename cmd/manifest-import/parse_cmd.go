package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jjwprotozoa/dmoc-sub000/modules/manifests/services"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/configuration"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/manifestfile"
)

type parseOptions struct {
	file     string
	xlsxPath string
	encoding string
}

type parseSummary struct {
	Total    int      `json:"total"`
	Parsed   int      `json:"parsed"`
	Errors   int      `json:"errors"`
	Messages []string `json:"messages"`
}

func newParseSummary(r *manifestfile.Report) parseSummary {
	return parseSummary{
		Total:    r.Summary.TotalRows,
		Parsed:   r.Summary.ParsedRows,
		Errors:   r.Summary.ErrorRows,
		Messages: r.Messages(),
	}
}

func newParseCmd() *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse an export and report rows without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), cmd.OutOrStdout(), configuration.Use(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Export file to parse (required)")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "Also write the parse report as an .xlsx workbook")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "", "Input encoding: auto|utf-8|utf-16le|windows-1252 (default IMPORT_ENCODING)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runParse(_ context.Context, w io.Writer, conf *configuration.Configuration, opts parseOptions) error {
	report, err := parseExport(conf, opts.file, opts.encoding)
	if err != nil {
		return err
	}

	if opts.xlsxPath != "" {
		data, err := services.NewExcelExportService(conf.Import.Location()).ExportParseReport(report)
		if err != nil {
			return withCode(exitDB, fmt.Errorf("xlsx: %w", err))
		}
		if err := writeFile(opts.xlsxPath, data); err != nil {
			return err
		}
	}

	return writeJSONLine(w, map[string]any{
		"status": "parsed",
		"file":   opts.file,
		"parse":  newParseSummary(report),
	})
}

// parseExport maps parse failures to exit codes: an unreadable file is a
// usage error, a file without a header row fails validation.
func parseExport(conf *configuration.Configuration, path, encoding string) (*manifestfile.Report, error) {
	if strings.TrimSpace(path) == "" {
		return nil, withCode(exitUsage, fmt.Errorf("--file is required"))
	}
	if encoding == "" {
		encoding = conf.Import.Encoding
	}
	enc, err := manifestfile.ParseEncoding(encoding)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("invalid --encoding: %w", err))
	}

	report, err := manifestfile.ParseFile(path,
		manifestfile.WithLocation(conf.Import.Location()),
		manifestfile.WithEncoding(enc),
	)
	switch {
	case err == nil:
		return report, nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return nil, withCode(exitUsage, err)
	default:
		return nil, withCode(exitValidation, fmt.Errorf("parse %s: %w", path, err))
	}
}

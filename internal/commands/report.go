package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"smarttracker/internal/backend"
	"smarttracker/internal/report"
)

type reportOptions struct {
	formID int64
	month  int
	year   int
	format string
	out    string
}

func newReportCommand(open Opener) *cobra.Command {
	now := time.Now().UTC()
	opts := reportOptions{month: int(now.Month()), year: now.Year()}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the monthly report of a form as CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), open, func(b *backend.Backend) error {
				return runReport(cmd, b, opts)
			})
		},
	}

	cmd.Flags().Int64Var(&opts.formID, "form", 0, "form id (required)")
	_ = cmd.MarkFlagRequired("form")
	cmd.Flags().IntVar(&opts.month, "month", opts.month, "month 1-12")
	cmd.Flags().IntVar(&opts.year, "year", opts.year, "year")
	cmd.Flags().StringVar(&opts.format, "format", "csv", "output format: csv or pdf")
	cmd.Flags().StringVar(&opts.out, "out", "", "output file, - for stdout (default: generated name)")

	return cmd
}

func runReport(cmd *cobra.Command, b *backend.Backend, opts reportOptions) error {
	var (
		render func(io.Writer, report.MonthlyReport) error
		suffix string
	)
	switch opts.format {
	case "csv":
		render, suffix = b.Reports.WriteCSV, ".csv"
	case "pdf":
		render, suffix = b.Reports.WritePDF, "_Report.pdf"
	default:
		return fmt.Errorf("unknown format %q: want csv or pdf", opts.format)
	}

	rep, err := b.Reports.MonthlyReport(cmd.Context(), opts.formID, opts.month, opts.year)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render(&buf, rep); err != nil {
		return fmt.Errorf("rendering %s: %w", opts.format, err)
	}

	if opts.out == "-" {
		_, err := buf.WriteTo(cmd.OutOrStdout())
		return err
	}

	path := opts.out
	if path == "" {
		path = report.FileName(rep, suffix)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d entries, %s)\n", path, rep.EntryCount(), rep.Period.Label())
	return nil
}

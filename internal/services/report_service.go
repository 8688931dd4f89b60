package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"smarttracker/internal/core"
	"smarttracker/internal/report"
	"smarttracker/internal/storage"
)

// ReportService loads data and runs the aggregation engine.
type ReportService struct {
	forms    *FormService
	entries  *EntryService
	currency string
	now      func() time.Time
}

// NewReportService creates a report service. An empty currency uses the
// document default.
func NewReportService(forms *FormService, entries *EntryService, currency string) *ReportService {
	return &ReportService{forms: forms, entries: entries, currency: currency, now: time.Now}
}

// MonthlyReport aggregates the entries of a form for month (1-12) of year.
func (s *ReportService) MonthlyReport(ctx context.Context, formID int64, month, year int) (report.MonthlyReport, error) {
	period, err := report.NewPeriod(month, year)
	if err != nil {
		return report.MonthlyReport{}, err
	}
	form, err := s.forms.GetForm(ctx, formID)
	if err != nil {
		return report.MonthlyReport{}, err
	}
	entries, err := s.entries.ListEntries(ctx, formID)
	if err != nil {
		return report.MonthlyReport{}, err
	}
	return report.BuildMonthlyReport(form, entries, period), nil
}

// WriteCSV writes the entries of a monthly report as CSV.
func (s *ReportService) WriteCSV(w io.Writer, r report.MonthlyReport) error {
	return report.ToCSV(w, r.Entries, r.Form.Fields)
}

// WritePDF renders a monthly report as a PDF document.
func (s *ReportService) WritePDF(w io.Writer, r report.MonthlyReport) error {
	return report.ToReportDocument(w, r, report.DocumentOptions{
		Currency:    s.currency,
		GeneratedAt: s.now(),
	})
}

// Dashboard summarizes the latest activity across forms. Forms and entries
// are loaded concurrently.
func (s *ReportService) Dashboard(ctx context.Context) (report.Dashboard, error) {
	var (
		formCount int
		entries   []core.Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		forms, err := s.forms.ListForms(gctx)
		if err != nil {
			return err
		}
		formCount = len(forms)
		return nil
	})
	g.Go(func() error {
		all, err := s.entries.ListAllEntries(gctx, storage.DefaultListLimit)
		if err != nil {
			return err
		}
		entries = all
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	return report.BuildDashboard(formCount, entries, s.now()), nil
}

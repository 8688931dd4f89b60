package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"smarttracker/internal/core"
	"smarttracker/internal/log"
	"smarttracker/internal/report"
)

type fieldTotalResponse struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

type monthValueResponse struct {
	Month      string  `json:"month"`
	Value      float64 `json:"value"`
	EntryCount int     `json:"entryCount"`
}

type reportResponse struct {
	Form         core.Form            `json:"form"`
	Period       report.Period        `json:"period"`
	Label        string               `json:"label"`
	EntryCount   int                  `json:"entryCount"`
	Totals       []fieldTotalResponse `json:"totals"`
	NumericField string               `json:"numericField,omitempty"`
	Breakdown    []monthValueResponse `json:"breakdown"`
	BarHeights   []float64            `json:"barHeights"`
	Entries      []core.Entry         `json:"entries"`
}

func newReportResponse(r report.MonthlyReport) reportResponse {
	resp := reportResponse{
		Form:         r.Form,
		Period:       r.Period,
		Label:        r.Period.Label(),
		EntryCount:   r.EntryCount(),
		Totals:       make([]fieldTotalResponse, 0, len(r.Totals)),
		NumericField: r.NumericField,
		Breakdown:    make([]monthValueResponse, 0, len(r.Breakdown)),
		BarHeights:   r.BarHeights[:],
		Entries:      orEmpty(r.Entries),
	}
	for _, t := range r.Totals {
		resp.Totals = append(resp.Totals, fieldTotalResponse{Key: t.Key, Label: t.Label, Total: t.Total.InexactFloat64()})
	}
	for _, m := range r.Breakdown {
		resp.Breakdown = append(resp.Breakdown, monthValueResponse{Month: m.Month, Value: m.Value.InexactFloat64(), EntryCount: m.EntryCount})
	}
	return resp
}

type dashboardResponse struct {
	ActiveTrackers int           `json:"activeTrackers"`
	TotalLogs      int           `json:"totalLogs"`
	Period         report.Period `json:"period"`
	MonthlySpend   float64       `json:"monthlySpend"`
	Recent         []core.Entry  `json:"recent"`
}

// loadReport returns the monthly report for the request, through the cache.
func (s *Server) loadReport(ctx context.Context, r *http.Request) (report.MonthlyReport, error) {
	formID, err := pathID(r, "id")
	if err != nil {
		return report.MonthlyReport{}, err
	}
	params, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		return report.MonthlyReport{}, err
	}

	key := reportCacheKey(formID, params.Year, params.Month)
	var version uint64
	if s.reportCache != nil {
		if cached, ok := s.reportCache.Get(key); ok {
			atomic.AddInt64(&s.appMetrics.cacheHits, 1)
			return cached, nil
		}
		atomic.AddInt64(&s.appMetrics.cacheMisses, 1)
		version = s.formVersion(formID)
	}

	rep, err := s.reports.MonthlyReport(ctx, formID, params.Month, params.Year)
	if err != nil {
		return report.MonthlyReport{}, err
	}
	if s.reportCache != nil {
		s.storeReport(formID, version, key, rep)
	}
	return rep, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.loadReport(r.Context(), r)
	if err != nil {
		writeError(w, r, log.ComponentReport, log.OpReport, err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(rep))
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	s.writeReportFile(w, r, "text/csv; charset=utf-8", ".csv", s.reports.WriteCSV)
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	s.writeReportFile(w, r, "application/pdf", "_Report.pdf", s.reports.WritePDF)
}

// writeReportFile renders into memory first so a rendering failure still
// produces a JSON error.
func (s *Server) writeReportFile(w http.ResponseWriter, r *http.Request, contentType, suffix string, render func(io.Writer, report.MonthlyReport) error) {
	rep, err := s.loadReport(r.Context(), r)
	if err != nil {
		writeError(w, r, log.ComponentReport, log.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, rep); err != nil {
		writeError(w, r, log.ComponentReport, log.OpExport, fmt.Errorf("render %s: %w", suffix, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(rep, suffix)))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)

	log.FromContext(r.Context()).InfoContext(r.Context(), "Report exported",
		log.NewFields().WithForm(rep.Form.ID).WithPeriod(rep.Period.Month, rep.Period.Year).ToSlice()...)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.reports.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, log.ComponentReport, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		ActiveTrackers: d.ActiveTrackers,
		TotalLogs:      d.TotalLogs,
		Period:         d.Period,
		MonthlySpend:   d.MonthlySpend.InexactFloat64(),
		Recent:         orEmpty(d.Recent),
	})
}

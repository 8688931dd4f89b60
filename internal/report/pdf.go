package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"smarttracker/internal/core"
)

// DefaultCurrency prefixes amount totals in documents.
const DefaultCurrency = "INR"

// DocumentOptions tunes the PDF output.
type DocumentOptions struct {
	Currency    string
	GeneratedAt time.Time
}

const (
	pageMargin   = 14.0
	headerHeight = 40.0
	rowHeight    = 7.0
	footerOffset = -15.0
)

type rgb struct{ r, g, b int }

var (
	colorBand      = rgb{11, 4, 50}
	colorTitle     = rgb{192, 132, 252}
	colorSubtitle  = rgb{203, 213, 225}
	colorHeading   = rgb{30, 27, 75}
	colorTableHead = rgb{124, 58, 237}
	colorStripe    = rgb{245, 243, 255}
	colorText      = rgb{30, 41, 59}
	colorMuted     = rgb{148, 163, 184}
)

// ToReportDocument renders the report as a PDF: a header band, a summary
// table and a striped entries table, with a page footer on every page.
func ToReportDocument(w io.Writer, r MonthlyReport, opts DocumentOptions) error {
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("%s report %s", r.Form.Name, r.Period.Label()), true)
	pdf.SetCreator("Smart Tracker", false)
	if !opts.GeneratedAt.IsZero() {
		pdf.SetCreationDate(opts.GeneratedAt)
	}
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(footerOffset)
		pdf.SetFont("Helvetica", "", 8)
		setText(pdf, colorMuted)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated by Smart Tracker | Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	drawHeaderBand(pdf, tr, r)

	pdf.SetY(headerHeight + 10)
	drawSectionTitle(pdf, tr, "Summary")
	drawSummary(pdf, tr, r, opts.Currency)

	pdf.Ln(8)
	drawSectionTitle(pdf, tr, "Entries: "+r.Period.Label())
	if len(r.Entries) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		setText(pdf, colorMuted)
		pdf.CellFormat(0, rowHeight, "No entries for this period.", "", 1, "L", false, 0, "")
	} else {
		drawEntries(pdf, tr, r)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render report pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write report pdf: %w", err)
	}
	return nil
}

func drawHeaderBand(pdf *fpdf.Fpdf, tr func(string) string, r MonthlyReport) {
	pageW, _ := pdf.GetPageSize()
	setFill(pdf, colorBand)
	pdf.Rect(0, 0, pageW, headerHeight, "F")

	pdf.SetFont("Helvetica", "B", 20)
	setText(pdf, colorTitle)
	pdf.Text(pageMargin, 17, "Smart Tracker Report")

	pdf.SetFont("Helvetica", "", 11)
	setText(pdf, colorSubtitle)
	pdf.Text(pageMargin, 27, tr("Form: "+r.Form.Name))
	pdf.Text(pageMargin, 34, tr("Period: "+r.Period.Label()))
}

func drawSectionTitle(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	setText(pdf, colorHeading)
	pdf.CellFormat(0, 9, tr(title), "", 1, "L", false, 0, "")
}

func drawSummary(pdf *fpdf.Fpdf, tr func(string) string, r MonthlyReport, currency string) {
	rows := [][2]string{{"Total Entries", fmt.Sprint(r.EntryCount())}}
	for _, t := range r.Totals {
		rows = append(rows, [2]string{"Total " + t.Label, formatTotal(t, currency)})
	}

	const metricW, valueW = 90.0, 60.0
	drawTableHead(pdf, tr, []string{"Metric", "Value"}, []float64{metricW, valueW})
	pdf.SetFont("Helvetica", "", 10)
	for i, row := range rows {
		setText(pdf, colorText)
		setFill(pdf, stripe(i))
		pdf.CellFormat(metricW, rowHeight, tr(row[0]), "", 0, "L", true, 0, "")
		pdf.CellFormat(valueW, rowHeight, tr(row[1]), "", 1, "R", true, 0, "")
	}
}

func drawEntries(pdf *fpdf.Fpdf, tr func(string) string, r MonthlyReport) {
	pageW, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	usable := pageW - 2*pageMargin

	labels := core.Labels(r.Form.Fields)
	widths := make([]float64, len(labels))
	for i := range widths {
		widths[i] = usable / float64(len(labels))
	}

	drawTableHead(pdf, tr, labels, widths)
	pdf.SetFont("Helvetica", "", 9)
	for i, e := range r.Entries {
		if pdf.GetY()+rowHeight > pageH-bottom {
			pdf.AddPage()
			drawTableHead(pdf, tr, labels, widths)
			pdf.SetFont("Helvetica", "", 9)
		}
		setText(pdf, colorText)
		setFill(pdf, stripe(i))
		for j, k := range r.Form.Fields {
			ln := 0
			if j == len(widths)-1 {
				ln = 1
			}
			pdf.CellFormat(widths[j], rowHeight, fitText(pdf, tr(e.Display(k)), widths[j]-2), "", ln, "L", true, 0, "")
		}
	}
}

func drawTableHead(pdf *fpdf.Fpdf, tr func(string) string, labels []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 10)
	setFill(pdf, colorTableHead)
	pdf.SetTextColor(255, 255, 255)
	for i, label := range labels {
		ln := 0
		if i == len(labels)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], rowHeight+1, fitText(pdf, tr(label), widths[i]-2), "", ln, "L", true, 0, "")
	}
}

func formatTotal(t FieldTotal, currency string) string {
	if t.Key == core.FieldAmount {
		return currency + " " + t.Total.StringFixed(2)
	}
	return t.Total.String()
}

// fitText shortens s with a trailing ".." until it fits in width. s is
// already translated to a single-byte code page.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for n := len(s) - 1; n > 0; n-- {
		candidate := s[:n] + ".."
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}

func stripe(i int) rgb {
	if i%2 == 1 {
		return colorStripe
	}
	return rgb{255, 255, 255}
}

func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }

func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }

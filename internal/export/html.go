package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/2021147588/boheommian-rhapsody/internal/presentation"
	"github.com/2021147588/boheommian-rhapsody/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcMap = template.FuncMap{
	"isList":       func(v report.FormattedValue) bool { return v.Kind == report.KindList },
	"isEmphasized": func(v report.FormattedValue) bool { return v.Kind == report.KindEmphasized },
	"isMissing":    func(v report.FormattedValue) bool { return v.Kind == report.KindPlaceholder },
}

var reportTmpl = template.Must(template.New("report.html").Funcs(funcMap).ParseFS(templateFS, "templates/report.html"))

// ReportDocument is everything a standalone report page shows.
type ReportDocument struct {
	Title       string
	GeneratedAt string
	Customer    []presentation.InfoField
	Report      report.View
	// Message replaces the report body when no report could be found.
	Message    string
	Transcript []presentation.Message
}

// NewReportDocument assembles a document for one conversation's report view.
func NewReportDocument(view report.View, customer []presentation.InfoField, transcript []presentation.Message, now time.Time) ReportDocument {
	name := view.CustomerName
	if name == "" {
		name = "고객"
	}
	return ReportDocument{
		Title:       name + " 보험 상담 보고서",
		GeneratedAt: now.Format("2006-01-02 15:04"),
		Customer:    customer,
		Report:      view,
		Transcript:  transcript,
	}
}

// WriteReportHTML renders doc as a self-contained HTML page.
func WriteReportHTML(w io.Writer, doc ReportDocument) error {
	if err := reportTmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

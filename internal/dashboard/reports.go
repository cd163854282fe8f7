package dashboard

import (
	"context"
	"errors"
	"io"

	"github.com/2021147588/boheommian-rhapsody/internal/aggregator"
	"github.com/2021147588/boheommian-rhapsody/internal/export"
	"github.com/2021147588/boheommian-rhapsody/internal/presentation"
	"github.com/2021147588/boheommian-rhapsody/internal/report"
	"github.com/2021147588/boheommian-rhapsody/internal/transport"
	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

const (
	MessageReportNotFound  = "이 대화에 대한 최종 보고서 데이터를 찾을 수 없습니다."
	MessageReportLoadError = "최종 보고서 데이터를 불러오는 중 오류가 발생했습니다: "

	unknownCustomer = "Unknown"
)

const (
	SourceConversation = "conversation"
	SourceFetched      = "fetched"
)

// ReportView is one conversation's final report, or a message saying why
// none could be shown.
type ReportView struct {
	Index   int          `json:"index"`
	Source  string       `json:"source,omitempty"`
	Report  *report.View `json:"report,omitempty"`
	Message string       `json:"message,omitempty"`

	ProductFitChart *presentation.Chart `json:"product_fit_chart,omitempty"`
	MetricsChart    *presentation.Chart `json:"metrics_chart,omitempty"`
}

func viewOf(idx int, source string, v report.View) ReportView {
	rv := ReportView{Index: idx, Source: source, Report: &v}
	if v.Charts != nil {
		rv.ProductFitChart = presentation.ProductFitChart(v.Charts.ProductFit)
		rv.MetricsChart = presentation.MetricsChart(v.Charts.Metrics)
	}
	return rv
}

func (r ReportView) Available() bool { return r.Report != nil }

// Report normalizes the conversation's own final report. When it has none,
// the report is fetched by customer name; a failed fetch yields a message,
// never an error.
func (s *Service) Report(ctx context.Context, idx int) (ReportView, error) {
	snap, c, err := s.conversation(idx)
	if err != nil {
		return ReportView{}, err
	}
	return s.reportFor(ctx, snap.RunID, idx, c), nil
}

func (s *Service) reportFor(ctx context.Context, runID string, idx int, c types.ConversationRecord) ReportView {
	if v, err := report.Normalize(c); err == nil {
		return viewOf(idx, SourceConversation, v)
	}

	name := c.CustomerName()
	if name == "" {
		name = unknownCustomer
	}
	key := runID + "/" + name
	fr, ok := s.reports.Get(key)
	if !ok {
		log := s.log.WithField("customer", name)
		var err error
		fr, err = s.transport.FetchReport(ctx, name)
		switch {
		case errors.Is(err, transport.ErrReportNotFound):
			log.Info("no report available")
			return ReportView{Index: idx, Message: MessageReportNotFound}
		case err != nil:
			log.WithField("error", err.Error()).Warn("report fetch failed")
			return ReportView{Index: idx, Message: MessageReportLoadError + err.Error()}
		}
		s.reports.Add(key, fr)
	}
	return viewOf(idx, SourceFetched, report.NormalizeWith(c, fr))
}

// ReportDocument asks the backend to render a downloadable report.
func (s *Service) ReportDocument(ctx context.Context, idx int) (transport.Document, error) {
	_, c, err := s.conversation(idx)
	if err != nil {
		return transport.Document{}, err
	}
	doc, err := s.transport.GenerateReport(ctx, c)
	if err != nil {
		return transport.Document{}, err
	}
	doc.Filename = transport.ReportFilename(presentation.DisplayName(c, idx))
	return doc, nil
}

// WriteReportHTML renders the report locally as a standalone page.
func (s *Service) WriteReportHTML(ctx context.Context, idx int, w io.Writer) (string, error) {
	snap, c, err := s.conversation(idx)
	if err != nil {
		return "", err
	}
	rv := s.reportFor(ctx, snap.RunID, idx, c)

	var view report.View
	if rv.Report != nil {
		view = *rv.Report
	} else {
		view.CustomerName = c.CustomerName()
	}
	doc := export.NewReportDocument(view, presentation.CustomerInfo(c), presentation.Transcript(c), s.adapter.Now())
	doc.Message = rv.Message
	if err := export.WriteReportHTML(w, doc); err != nil {
		return "", err
	}
	return transport.ReportFilename(presentation.DisplayName(c, idx)), nil
}

// WriteWorkbook streams the current run as an XLSX workbook.
func (s *Service) WriteWorkbook(w io.Writer) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	return export.WriteWorkbook(w, workbookData(s.adapter, snap.Result))
}

func workbookData(a *presentation.Adapter, res types.SimulationResult) export.WorkbookData {
	return export.WorkbookData{
		Summary: presentation.Summary(res.Summary),
		Rows:    a.Rows(res),
		Insight: aggregator.Aggregate(res.Conversations),
	}
}

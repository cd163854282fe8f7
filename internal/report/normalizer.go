package report

import (
	"errors"

	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

// ErrNoReport means the conversation carries no final report; callers may fetch one by customer name.
var ErrNoReport = errors.New("no final report for conversation")

// View is the structured rendition of one conversation's final report.
type View struct {
	CustomerName string        `json:"customer_name"`
	Success      bool          `json:"success"`
	TurnCount    int           `json:"turn_count"`
	Satisfaction Satisfaction  `json:"satisfaction"`
	Sections     []Section     `json:"sections"`
	Charts       *ReportCharts `json:"charts,omitempty"`
}

type ReportCharts struct {
	ProductFit []Score `json:"product_fit,omitempty"`
	Metrics    []Score `json:"metrics,omitempty"`
}

// Normalize builds the view from the conversation's own final report. An empty
// report is still a report and yields a view without sections.
func Normalize(c types.ConversationRecord) (View, error) {
	if c.FinalReport == nil {
		return View{}, ErrNoReport
	}
	return NormalizeWith(c, c.FinalReport), nil
}

// NormalizeWith builds the view from a report obtained elsewhere, such as a fetch by name.
func NormalizeWith(c types.ConversationRecord, r types.FinalReport) View {
	sat, _ := r.Get(SatisfactionKey)
	return View{
		CustomerName: c.CustomerName(),
		Success:      c.Success,
		TurnCount:    len(c.Turns),
		Satisfaction: newSatisfaction(sat),
		Sections:     Organize(r),
		Charts:       charts(r, c),
	}
}

func has(r types.FinalReport, key string) bool {
	v, ok := r.Get(key)
	return ok && v != ""
}

func charts(r types.FinalReport, c types.ConversationRecord) *ReportCharts {
	if !has(r, "상품 적합도 점수") && !has(r, "상담 성과 지표") {
		return nil
	}
	out := &ReportCharts{}
	if has(r, "상품 적합도 점수") || has(r, "상품 적합성") {
		out.ProductFit = ProductFit(r)
	}
	if has(r, "상담 성과 지표") || has(r, "대화 효율성") {
		out.Metrics = ConsultationMetrics(r, c)
	}
	return out
}

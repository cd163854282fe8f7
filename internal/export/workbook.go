package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/2021147588/boheommian-rhapsody/internal/aggregator"
	"github.com/2021147588/boheommian-rhapsody/internal/presentation"
	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

const (
	SheetResults         = "결과"
	SheetSummary         = "요약"
	SheetAgents          = "에이전트"
	SheetCharacteristics = "고객 특성"
)

// WorkbookData is one run as shown on the dashboard.
type WorkbookData struct {
	Summary presentation.SummaryCards
	Rows    []presentation.Row
	Insight aggregator.Insight
}

// Workbook builds an XLSX file with the results table and the run aggregates.
func Workbook(d WorkbookData) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetResults); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	results := [][]any{toRow(presentation.TableColumns)}
	for _, r := range d.Rows {
		results = append(results, toRow(r.Cells()))
	}
	if err := writeSheet(f, SheetResults, results, header); err != nil {
		return nil, err
	}

	summary := [][]any{
		{"항목", "값"},
		{"총 샘플 수", d.Summary.TotalSamples},
		{"성공 수", d.Summary.SuccessCount},
		{"성공률", d.Summary.SuccessRate},
		{"마지막 실행", d.Summary.LastRun},
	}
	if err := writeSheet(f, SheetSummary, summary, header); err != nil {
		return nil, err
	}

	agents := [][]any{{"에이전트", "활동 수"}}
	for _, name := range types.KnownAgents {
		agents = append(agents, []any{name, d.Insight.AgentActivity[name]})
	}
	agents = append(agents, []any{}, []any{"전환", "횟수"})
	for _, t := range aggregator.Transitions {
		agents = append(agents, []any{presentation.TransitionLabel(t), d.Insight.AgentTransitions[t.Key()]})
	}
	agents = append(agents, []any{}, []any{"턴", "성공률(%)"})
	for i, rate := range d.Insight.SuccessByTurn {
		agents = append(agents, []any{fmt.Sprintf("Turn %d", i+1), rate})
	}
	if err := writeSheet(f, SheetAgents, agents, header); err != nil {
		return nil, err
	}

	chars := [][]any{{"특성", "대상 수", "성공 수", "성공률(%)", "실패율(%)"}}
	for _, c := range d.Insight.Characteristics {
		chars = append(chars, []any{c.Label, c.Total, c.Success, c.SuccessRate, c.FailureRate})
	}
	chars = append(chars, []any{}, []any{"플랜", "추천 수"})
	for _, p := range aggregator.Plans {
		chars = append(chars, []any{p, d.Insight.PlanCounts[p]})
	}
	if err := writeSheet(f, SheetCharacteristics, chars, header); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteWorkbook streams the workbook to w.
func WriteWorkbook(w io.Writer, d WorkbookData) error {
	f, err := Workbook(d)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "F", 16)
}

func toRow(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

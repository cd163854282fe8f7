package presentation

import (
	"strconv"

	"github.com/2021147588/boheommian-rhapsody/internal/aggregator"
	"github.com/2021147588/boheommian-rhapsody/internal/report"
	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

// Palette shared by the dashboard charts.
const (
	ColorPrimary = "#4a6bff"
	ColorSuccess = "#28a745"
	ColorWarning = "#ffc107"
	ColorInfo    = "#17a2b8"
	ColorDanger  = "#dc3545"
	fillSuccess  = "rgba(40, 167, 69, 0.2)"
	fillDanger   = "rgba(220, 53, 69, 0.2)"
	fillPrimary  = "rgba(74, 107, 255, 0.2)"
)

var agentColors = []string{ColorPrimary, ColorSuccess, ColorWarning, ColorInfo}

type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
}

type Chart struct {
	Type     string    `json:"type"`
	Title    string    `json:"title,omitempty"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	// Max is the value axis ceiling; 0 leaves it open.
	Max float64 `json:"max,omitempty"`
}

// Charts is the set of dashboard charts for one run.
type Charts struct {
	AgentActivity    Chart `json:"agent_activity"`
	SuccessByTurn    Chart `json:"success_by_turn"`
	PlanDistribution Chart `json:"plan_distribution"`
	AgentTransitions Chart `json:"agent_transitions"`
	Characteristics  Chart `json:"success_by_characteristics"`
}

func DashboardCharts(ins aggregator.Insight) Charts {
	return Charts{
		AgentActivity:    AgentActivityChart(ins.AgentActivity),
		SuccessByTurn:    SuccessByTurnChart(ins.SuccessByTurn),
		PlanDistribution: PlanDistributionChart(ins.PlanCounts),
		AgentTransitions: AgentTransitionsChart(ins.AgentTransitions),
		Characteristics:  CharacteristicsChart(ins.Characteristics),
	}
}

func countsFor(keys []string, counts map[string]int) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = float64(counts[k])
	}
	return out
}

func AgentActivityChart(counts map[string]int) Chart {
	return Chart{
		Type:   "doughnut",
		Labels: append([]string(nil), types.KnownAgents...),
		Datasets: []Dataset{{
			Data:            countsFor(types.KnownAgents, counts),
			BackgroundColor: agentColors,
		}},
	}
}

func SuccessByTurnChart(rates []float64) Chart {
	labels := make([]string, aggregator.MaxChartedTurn)
	for i := range labels {
		labels[i] = "Turn " + strconv.Itoa(i+1)
	}
	data := make([]float64, aggregator.MaxChartedTurn)
	copy(data, rates)
	return Chart{
		Type:   "bar",
		Labels: labels,
		Datasets: []Dataset{{
			Label:           "성공률",
			Data:            data,
			BackgroundColor: []string{ColorPrimary},
		}},
		Max: 100,
	}
}

func PlanDistributionChart(counts map[string]int) Chart {
	return Chart{
		Type:   "pie",
		Labels: append([]string(nil), aggregator.Plans...),
		Datasets: []Dataset{{
			Data:            countsFor(aggregator.Plans, counts),
			BackgroundColor: []string{ColorSuccess, ColorPrimary, ColorWarning},
		}},
	}
}

var agentShort = map[string]string{
	types.AgentRouter:         "Router",
	types.AgentRecommendation: "Rec",
	types.AgentSales:          "Sales",
	types.AgentRAG:            "RAG",
}

// TransitionLabel renders a hand-off the way the chart axis shows it, e.g. "Router → Rec".
func TransitionLabel(t aggregator.Transition) string {
	return agentShort[t.From] + " → " + agentShort[t.To]
}

func AgentTransitionsChart(counts map[string]int) Chart {
	labels := make([]string, len(aggregator.Transitions))
	data := make([]float64, len(aggregator.Transitions))
	for i, t := range aggregator.Transitions {
		labels[i] = TransitionLabel(t)
		data[i] = float64(counts[t.Key()])
	}
	return Chart{
		Type:   "bar",
		Labels: labels,
		Datasets: []Dataset{{
			Label:           "전환 횟수",
			Data:            data,
			BackgroundColor: []string{ColorPrimary},
		}},
	}
}

func CharacteristicsChart(outcomes []aggregator.CharacteristicOutcome) Chart {
	labels := make([]string, len(outcomes))
	success := make([]float64, len(outcomes))
	failed := make([]float64, len(outcomes))
	for i, o := range outcomes {
		labels[i] = o.Label
		success[i] = o.SuccessRate
		failed[i] = o.FailureRate
	}
	return Chart{
		Type:   "radar",
		Labels: labels,
		Datasets: []Dataset{
			{Label: "성공", Data: success, BackgroundColor: []string{fillSuccess}, BorderColor: ColorSuccess},
			{Label: "실패", Data: failed, BackgroundColor: []string{fillDanger}, BorderColor: ColorDanger},
		},
		Max: 100,
	}
}

func scoreSeries(scores []report.Score) ([]string, []float64) {
	labels := make([]string, len(scores))
	data := make([]float64, len(scores))
	for i, s := range scores {
		labels[i] = s.Name
		data[i] = float64(s.Score)
	}
	return labels, data
}

// ProductFitChart returns nil when there is no series to draw.
func ProductFitChart(scores []report.Score) *Chart {
	if len(scores) == 0 {
		return nil
	}
	labels, data := scoreSeries(scores)
	return &Chart{
		Type:   "bar",
		Title:  "상품 적합도 분석",
		Labels: labels,
		Datasets: []Dataset{{
			Label:           "상품 적합도 점수",
			Data:            data,
			BackgroundColor: []string{ColorSuccess, ColorPrimary, ColorWarning},
		}},
		Max: 100,
	}
}

func MetricsChart(scores []report.Score) *Chart {
	if len(scores) == 0 {
		return nil
	}
	labels, data := scoreSeries(scores)
	return &Chart{
		Type:   "radar",
		Title:  "상담 성과 분석",
		Labels: labels,
		Datasets: []Dataset{{
			Label:           "상담 효율성 지표",
			Data:            data,
			BackgroundColor: []string{fillPrimary},
			BorderColor:     ColorPrimary,
		}},
		Max: 100,
	}
}

// ConversationAgentChart is the per-conversation agent pie.
func ConversationAgentChart(s aggregator.ConversationStats) Chart {
	c := AgentActivityChart(s.AgentCounts)
	c.Type = "pie"
	return c
}

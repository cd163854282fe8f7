package aggregator

import (
	"strconv"
	"strings"

	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

// Plan names searched for in agent responses, in tie-break order.
const (
	PlanPremium  = "고급형"
	PlanStandard = "표준형"
	Plan3400     = "3400형"

	// PlanUndecided is shown when no plan name appears in the conversation.
	PlanUndecided = "미정"
)

var Plans = []string{PlanPremium, PlanStandard, Plan3400}

// MaxChartedTurn is the last turn index included in the per-turn success rate.
const MaxChartedTurn = 5

type Transition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Transitions is the allow-list of tracked agent hand-offs, in display order.
var Transitions = []Transition{
	{types.AgentRouter, types.AgentRecommendation},
	{types.AgentRecommendation, types.AgentSales},
	{types.AgentRecommendation, types.AgentRAG},
	{types.AgentRAG, types.AgentSales},
	{types.AgentSales, types.AgentRAG},
}

func (t Transition) Key() string { return t.From + "->" + t.To }

type Insight struct {
	AgentActivity    map[string]int          `json:"agent_activity"`
	AgentTransitions map[string]int          `json:"agent_transitions"`
	SuccessByTurn    []float64               `json:"success_by_turn"`
	PlanCounts       map[string]int          `json:"plan_counts"`
	Characteristics  []CharacteristicOutcome `json:"characteristics"`
}

// Aggregate runs every fold over the conversations.
func Aggregate(conversations []types.ConversationRecord) Insight {
	return Insight{
		AgentActivity:    AgentActivity(conversations),
		AgentTransitions: AgentTransitions(conversations),
		SuccessByTurn:    SuccessByTurn(conversations),
		PlanCounts:       PlanDistribution(conversations),
		Characteristics:  SuccessByCharacteristic(conversations),
	}
}

// AgentActivity counts turns per known agent.
func AgentActivity(conversations []types.ConversationRecord) map[string]int {
	counts := map[string]int{}
	for _, a := range types.KnownAgents {
		counts[a] = 0
	}
	for _, c := range conversations {
		for _, t := range c.Turns {
			if _, ok := counts[t.CurrentAgent]; ok {
				counts[t.CurrentAgent]++
			}
		}
	}
	return counts
}

// AgentTransitions counts allow-listed hand-offs between adjacent turns, keyed by Transition.Key.
func AgentTransitions(conversations []types.ConversationRecord) map[string]int {
	counts := map[string]int{}
	for _, tr := range Transitions {
		counts[tr.Key()] = 0
	}
	for _, c := range conversations {
		prev := ""
		for _, t := range c.Turns {
			cur := t.CurrentAgent
			if prev != "" && cur != "" && types.IsKnownAgent(prev) && types.IsKnownAgent(cur) {
				k := Transition{prev, cur}.Key()
				if _, ok := counts[k]; ok {
					counts[k]++
				}
			}
			prev = cur
		}
	}
	return counts
}

// SuccessByTurn returns the success rate (0-100) for turn indices 1..MaxChartedTurn.
func SuccessByTurn(conversations []types.ConversationRecord) []float64 {
	success := make([]int, MaxChartedTurn)
	total := make([]int, MaxChartedTurn)
	for _, c := range conversations {
		for _, t := range c.Turns {
			if t.Turn < 1 || t.Turn > MaxChartedTurn {
				continue
			}
			total[t.Turn-1]++
			if c.Success {
				success[t.Turn-1]++
			}
		}
	}
	rates := make([]float64, MaxChartedTurn)
	for i := range rates {
		rates[i] = Percentage(success[i], total[i])
	}
	return rates
}

// RecommendedPlan returns the first plan named in the conversation's agent responses.
// Within one response the premium plan wins over standard, standard over 3400.
func RecommendedPlan(c types.ConversationRecord) (string, bool) {
	for _, t := range c.Turns {
		for _, p := range Plans {
			if strings.Contains(t.AgentResponse, p) {
				return p, true
			}
		}
	}
	return "", false
}

// PlanDistribution gives each conversation at most one vote for its recommended plan.
func PlanDistribution(conversations []types.ConversationRecord) map[string]int {
	counts := map[string]int{}
	for _, p := range Plans {
		counts[p] = 0
	}
	for _, c := range conversations {
		if p, ok := RecommendedPlan(c); ok {
			counts[p]++
		}
	}
	return counts
}

// Percentage returns part/total*100, or 0 when total is 0.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// BirthYear parses the year from the first four characters of a birth date.
func BirthYear(birthDate string) (int, bool) {
	if len(birthDate) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(birthDate[:4])
	if err != nil || y == 0 {
		return 0, false
	}
	return y, true
}

package aggregator

import "github.com/2021147588/boheommian-rhapsody/internal/types"

// ConversationStats summarizes agent usage inside one conversation.
type ConversationStats struct {
	AgentCounts   map[string]int `json:"agent_counts"`
	AgentSwitches int            `json:"agent_switches"`
	RAGCount      int            `json:"rag_count"`
	TurnCount     int            `json:"turn_count"`
}

// Stats counts agents, switches between consecutive known agents, and RAG lookups.
// Unknown agents neither count nor break a run of the same agent.
func Stats(c types.ConversationRecord) ConversationStats {
	s := ConversationStats{AgentCounts: map[string]int{}, TurnCount: len(c.Turns)}
	for _, a := range types.KnownAgents {
		s.AgentCounts[a] = 0
	}
	prev := ""
	for _, t := range c.Turns {
		if types.IsKnownAgent(t.CurrentAgent) {
			s.AgentCounts[t.CurrentAgent]++
			if prev != "" && prev != t.CurrentAgent {
				s.AgentSwitches++
			}
			prev = t.CurrentAgent
		}
		if t.RAGPerformed {
			s.RAGCount++
		}
	}
	return s
}

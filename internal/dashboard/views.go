package dashboard

import (
	"time"

	"github.com/2021147588/boheommian-rhapsody/internal/actionable"
	"github.com/2021147588/boheommian-rhapsody/internal/aggregator"
	"github.com/2021147588/boheommian-rhapsody/internal/presentation"
)

// Overview is everything the results page shows for the current run.
type Overview struct {
	RunID         string                    `json:"run_id"`
	LoadedAt      time.Time                 `json:"loaded_at"`
	Summary       presentation.SummaryCards `json:"summary"`
	Charts        presentation.Charts       `json:"charts"`
	Action        actionable.ActionCard     `json:"action_card"`
	Rows          []presentation.Row        `json:"rows"`
	Columns       []string                  `json:"columns"`
	Conversations []presentation.Option     `json:"conversation_options"`
	Reports       []presentation.Option     `json:"report_options"`
}

func (s *Service) Overview() (Overview, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return Overview{}, err
	}
	res := snap.Result
	ins := s.insightFor(snap.RunID, res.Conversations)
	return Overview{
		RunID:         snap.RunID,
		LoadedAt:      snap.LoadedAt,
		Summary:       presentation.Summary(res.Summary),
		Charts:        presentation.DashboardCharts(ins),
		Action:        actionable.Generate(ins),
		Rows:          s.adapter.Rows(res),
		Columns:       presentation.TableColumns,
		Conversations: s.adapter.ConversationOptions(res),
		Reports:       s.adapter.ReportOptions(res),
	}, nil
}

// ConversationView is the conversation viewer for one record.
type ConversationView struct {
	Index      int                          `json:"index"`
	Name       string                       `json:"name"`
	Outcome    string                       `json:"outcome"`
	Success    bool                         `json:"success"`
	Error      string                       `json:"error,omitempty"`
	Customer   []presentation.InfoField     `json:"customer,omitempty"`
	Messages   []presentation.Message       `json:"messages"`
	Stats      aggregator.ConversationStats `json:"stats"`
	AgentChart presentation.Chart           `json:"agent_chart"`
}

func (s *Service) Conversation(idx int) (ConversationView, error) {
	_, c, err := s.conversation(idx)
	if err != nil {
		return ConversationView{}, err
	}
	stats := aggregator.Stats(c)
	return ConversationView{
		Index:      idx,
		Name:       presentation.DisplayName(c, idx),
		Outcome:    presentation.OutcomeLabel(c.Success),
		Success:    c.Success,
		Error:      c.Error,
		Customer:   presentation.CustomerInfo(c),
		Messages:   presentation.Transcript(c),
		Stats:      stats,
		AgentChart: presentation.ConversationAgentChart(stats),
	}, nil
}

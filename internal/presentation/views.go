package presentation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/2021147588/boheommian-rhapsody/internal/aggregator"
	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

const (
	LabelSuccess = "성공"
	LabelFailure = "실패"
	// Missing stands in for absent values in tables and panels.
	Missing = "-"
)

// Adapter turns aggregates into view models. Now is the clock used for ages.
type Adapter struct {
	Now func() time.Time
}

func New() *Adapter {
	return &Adapter{Now: time.Now}
}

func OutcomeLabel(success bool) string {
	if success {
		return LabelSuccess
	}
	return LabelFailure
}

// Age is the current calendar year minus the birth year, or Missing.
func (a *Adapter) Age(birthDate string) string {
	y, ok := aggregator.BirthYear(birthDate)
	if !ok {
		return Missing
	}
	return strconv.Itoa(a.Now().Year() - y)
}

// DisplayName falls back to "고객 N" with a 1-based index.
func DisplayName(c types.ConversationRecord, index int) string {
	if n := c.CustomerName(); n != "" {
		return n
	}
	return fmt.Sprintf("고객 %d", index+1)
}

// Row is one line of the results table, columns in display order.
type Row struct {
	Index           int    `json:"index"`
	Name            string `json:"name"`
	Age             string `json:"age"`
	VehicleModel    string `json:"vehicle_model"`
	RecommendedPlan string `json:"recommended_plan"`
	Outcome         string `json:"outcome"`
	Success         bool   `json:"success"`
	TurnCount       string `json:"turn_count"`
}

func (r Row) Cells() []string {
	return []string{r.Name, r.Age, r.VehicleModel, r.RecommendedPlan, r.Outcome, r.TurnCount}
}

// TableColumns are the headers matching Row.Cells.
var TableColumns = []string{"이름", "나이", "차량", "추천 플랜", "결과", "턴 수"}

// Rows skips records without user info or with an error.
func (a *Adapter) Rows(res types.SimulationResult) []Row {
	var rows []Row
	for i, c := range res.Conversations {
		if !c.Presentable() {
			continue
		}
		plan, ok := aggregator.RecommendedPlan(c)
		if !ok {
			plan = aggregator.PlanUndecided
		}
		model := c.UserInfo.Vehicle.Model
		if model == "" {
			model = Missing
		}
		turns := Missing
		if c.Turns != nil {
			turns = strconv.Itoa(len(c.Turns))
		}
		rows = append(rows, Row{
			Index:           i,
			Name:            DisplayName(c, i),
			Age:             a.Age(c.UserInfo.User.BirthDate),
			VehicleModel:    model,
			RecommendedPlan: plan,
			Outcome:         OutcomeLabel(c.Success),
			Success:         c.Success,
			TurnCount:       turns,
		})
	}
	return rows
}

type Option struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// ConversationOptions feeds the conversation viewer dropdown.
func (a *Adapter) ConversationOptions(res types.SimulationResult) []Option {
	var out []Option
	for i, c := range res.Conversations {
		if !c.Presentable() {
			continue
		}
		out = append(out, Option{Index: i, Label: fmt.Sprintf("%s (%s)", DisplayName(c, i), OutcomeLabel(c.Success))})
	}
	return out
}

// ReportOptions feeds the final report dropdown.
func (a *Adapter) ReportOptions(res types.SimulationResult) []Option {
	var out []Option
	for i, c := range res.Conversations {
		if !c.Presentable() {
			continue
		}
		u := c.UserInfo.User
		out = append(out, Option{Index: i, Label: fmt.Sprintf("%s (%s, %s세)", DisplayName(c, i), u.Gender, a.Age(u.BirthDate))})
	}
	return out
}

type SummaryCards struct {
	TotalSamples int    `json:"total_samples"`
	SuccessCount int    `json:"success_count"`
	SuccessRate  string `json:"success_rate"`
	LastRun      string `json:"last_run"`
}

func Summary(s types.Summary) SummaryCards {
	return SummaryCards{
		TotalSamples: s.TotalSamples,
		SuccessCount: int(s.SuccessCount),
		SuccessRate:  fmt.Sprintf("%.1f%%", s.SuccessRate),
		LastRun:      FormatTimestamp(s.Timestamp),
	}
}

const runTimestampLayout = "20060102_150405"

// FormatTimestamp turns "YYYYMMDD_HHMMSS" into "YYYY-MM-DD HH:MM"; other input is returned as is.
func FormatTimestamp(ts string) string {
	t, err := time.Parse(runTimestampLayout, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04")
}

type Message struct {
	Role   string `json:"role"` // "agent" or "user"
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Transcript lists each turn's agent response followed by the customer's reply.
func Transcript(c types.ConversationRecord) []Message {
	msgs := make([]Message, 0, 2*len(c.Turns))
	for _, t := range c.Turns {
		if t.AgentResponse != "" {
			msgs = append(msgs, Message{Role: "agent", Sender: t.CurrentAgent + " 에이전트", Text: t.AgentResponse})
		}
		if t.UserReply != "" {
			msgs = append(msgs, Message{Role: "user", Sender: "고객", Text: t.UserReply})
		}
	}
	return msgs
}

type InfoField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}

// CustomerInfo is the profile panel; nil when the record has no user info.
func CustomerInfo(c types.ConversationRecord) []InfoField {
	if c.UserInfo == nil {
		return nil
	}
	u, v := c.UserInfo.User, c.UserInfo.Vehicle
	exp := Missing
	if u.DrivingExperienceYears > 0 {
		exp = strconv.Itoa(u.DrivingExperienceYears)
	}
	return []InfoField{
		{"이름", orMissing(u.Name)},
		{"생년월일", orMissing(u.BirthDate)},
		{"성별", orMissing(u.Gender)},
		{"운전 경력", exp + "년"},
		{"차량", orMissing(v.Model)},
		{"사용 목적", orMissing(v.Usage)},
	}
}

package types

import (
	"encoding/json"
	"fmt"
)

// Agent names produced by the simulation. Anything else in current_agent is ignored.
const (
	AgentRouter         = "Router"
	AgentRecommendation = "Recommendation"
	AgentSales          = "Sales"
	AgentRAG            = "RAG"
)

// KnownAgents lists the agents in display order.
var KnownAgents = []string{AgentRouter, AgentRecommendation, AgentSales, AgentRAG}

func IsKnownAgent(name string) bool {
	for _, a := range KnownAgents {
		if a == name {
			return true
		}
	}
	return false
}

// SimulationResult is the payload returned by the simulation backend for one run.
type SimulationResult struct {
	Summary       Summary              `json:"summary"`
	Conversations []ConversationRecord `json:"conversations"`
}

type Summary struct {
	TotalSamples int     `json:"total_samples"`
	SuccessCount Count   `json:"success_count"`
	SuccessRate  float64 `json:"success_rate"`
	Timestamp    string  `json:"timestamp"` // YYYYMMDD_HHMMSS
}

// Count is a plain integer that also decodes from a one-element array,
// which is what the backend emits when it serializes a set.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*c = Count(n)
		return nil
	}
	var arr []int
	if err := json.Unmarshal(b, &arr); err != nil {
		return fmt.Errorf("success_count: %w", err)
	}
	if len(arr) > 0 {
		*c = Count(arr[0])
	} else {
		*c = 0
	}
	return nil
}

// ConversationRecord is one simulated consultation. Turns and FinalReport
// keep absent (nil) apart from present but empty.
type ConversationRecord struct {
	ID          string      `json:"id,omitempty"`
	Success     bool        `json:"success"`
	UserInfo    *UserInfo   `json:"user_info,omitempty"`
	Turns       []Turn      `json:"turns"`
	FinalReport FinalReport `json:"final_report"`
	Error       string      `json:"error,omitempty"`
}

// Presentable reports whether the record belongs in tables and dropdowns.
// Excluded records still count towards summary totals.
func (c ConversationRecord) Presentable() bool {
	return c.UserInfo != nil && c.Error == ""
}

// CustomerName returns the user name or "" when unknown.
func (c ConversationRecord) CustomerName() string {
	if c.UserInfo == nil {
		return ""
	}
	return c.UserInfo.User.Name
}

type UserInfo struct {
	User    User    `json:"user"`
	Vehicle Vehicle `json:"vehicle"`
}

type User struct {
	Name                   string `json:"name,omitempty"`
	BirthDate              string `json:"birth_date,omitempty"`
	Gender                 string `json:"gender,omitempty"`
	DrivingExperienceYears int    `json:"driving_experience_years,omitempty"`
	AccidentHistory        bool   `json:"accident_history,omitempty"`
}

// UnmarshalJSON accepts driving_experience as an alias of driving_experience_years.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	aux := struct {
		*plain
		DrivingExperience *int `json:"driving_experience"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if u.DrivingExperienceYears == 0 && aux.DrivingExperience != nil {
		u.DrivingExperienceYears = *aux.DrivingExperience
	}
	return nil
}

type Vehicle struct {
	Model       string `json:"model,omitempty"`
	MarketValue int64  `json:"market_value,omitempty"`
	Usage       string `json:"usage,omitempty"`
}

type Turn struct {
	Turn          int    `json:"turn"`
	CurrentAgent  string `json:"current_agent"`
	AgentResponse string `json:"agent_response"`
	UserReply     string `json:"user_reply"`
	RAGPerformed  bool   `json:"rag_performed"`
}

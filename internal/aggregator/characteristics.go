package aggregator

import "github.com/2021147588/boheommian-rhapsody/internal/types"

const (
	experiencedDriverYears = 15
	luxuryVehicleValue     = 30_000_000
	femaleGender           = "여성"
	youngBirthYear         = 1990
)

// Characteristic is a named predicate over a customer profile.
type Characteristic struct {
	Key   string
	Label string
	Match func(types.UserInfo) bool
}

// Characteristics are evaluated independently; a customer can match several.
var Characteristics = []Characteristic{
	{Key: "accident", Label: "사고이력", Match: func(u types.UserInfo) bool {
		return u.User.AccidentHistory
	}},
	{Key: "experienced", Label: "운전경력 많음", Match: func(u types.UserInfo) bool {
		return u.User.DrivingExperienceYears > experiencedDriverYears
	}},
	{Key: "luxury", Label: "고가 차량", Match: func(u types.UserInfo) bool {
		return u.Vehicle.MarketValue > luxuryVehicleValue
	}},
	{Key: "female", Label: "여성", Match: func(u types.UserInfo) bool {
		return u.User.Gender == femaleGender
	}},
	{Key: "young", Label: "젊은층", Match: func(u types.UserInfo) bool {
		y, ok := BirthYear(u.User.BirthDate)
		return ok && y > youngBirthYear
	}},
}

type CharacteristicOutcome struct {
	Key         string  `json:"key"`
	Label       string  `json:"label"`
	Success     int     `json:"success"`
	Total       int     `json:"total"`
	SuccessRate float64 `json:"success_rate"`
	FailureRate float64 `json:"failure_rate"`
}

// SuccessByCharacteristic tallies outcomes among conversations matching each characteristic.
// Conversations without user info match nothing.
func SuccessByCharacteristic(conversations []types.ConversationRecord) []CharacteristicOutcome {
	out := make([]CharacteristicOutcome, len(Characteristics))
	for i, ch := range Characteristics {
		out[i] = CharacteristicOutcome{Key: ch.Key, Label: ch.Label}
	}
	for _, c := range conversations {
		if c.UserInfo == nil {
			continue
		}
		for i, ch := range Characteristics {
			if !ch.Match(*c.UserInfo) {
				continue
			}
			out[i].Total++
			if c.Success {
				out[i].Success++
			}
		}
	}
	for i := range out {
		out[i].SuccessRate = Percentage(out[i].Success, out[i].Total)
		out[i].FailureRate = Percentage(out[i].Total-out[i].Success, out[i].Total)
	}
	return out
}

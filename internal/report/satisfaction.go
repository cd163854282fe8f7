package report

// SatisfactionKey holds the analyst's estimate of customer satisfaction.
const SatisfactionKey = "사용자 만족도 추정"

type SatisfactionLevel int

const (
	SatisfactionUnknown SatisfactionLevel = iota
	SatisfactionLow
	SatisfactionMedium
	SatisfactionHigh
)

// IndicatorSlots is the width of the satisfaction indicator.
const IndicatorSlots = 3

// satisfactionRules are checked high first, so "만족" wins over "불만족" when both appear.
var satisfactionRules = []struct {
	rule  Rule
	level SatisfactionLevel
}{
	{Rule{Keywords: []string{"높", "만족"}}, SatisfactionHigh},
	{Rule{Keywords: []string{"중간", "보통"}}, SatisfactionMedium},
	{Rule{Keywords: []string{"낮", "불만족"}}, SatisfactionLow},
}

// ClassifySatisfaction maps free text to a level; unmatched text is unknown.
func ClassifySatisfaction(text string) SatisfactionLevel {
	for _, r := range satisfactionRules {
		if r.rule.Matches(text) {
			return r.level
		}
	}
	return SatisfactionUnknown
}

func (l SatisfactionLevel) Class() string {
	switch l {
	case SatisfactionHigh:
		return "satisfaction-badge satisfaction-high"
	case SatisfactionMedium:
		return "satisfaction-badge satisfaction-medium"
	case SatisfactionLow:
		return "satisfaction-badge satisfaction-low"
	}
	return ""
}

// Indicator returns IndicatorSlots flags, the first level of them set.
func (l SatisfactionLevel) Indicator() []bool {
	slots := make([]bool, IndicatorSlots)
	for i := 0; i < int(l) && i < IndicatorSlots; i++ {
		slots[i] = true
	}
	return slots
}

func SatisfactionClass(text string) string {
	return ClassifySatisfaction(text).Class()
}

type Satisfaction struct {
	Text      string            `json:"text"`
	Level     SatisfactionLevel `json:"level"`
	Class     string            `json:"class,omitempty"`
	Indicator []bool            `json:"indicator"`
}

const unknownSatisfactionText = "알 수 없음"

func newSatisfaction(text string) Satisfaction {
	if text == "" {
		text = unknownSatisfactionText
	}
	l := ClassifySatisfaction(text)
	return Satisfaction{Text: text, Level: l, Class: l.Class(), Indicator: l.Indicator()}
}

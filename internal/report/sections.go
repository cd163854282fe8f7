package report

import "github.com/2021147588/boheommian-rhapsody/internal/types"

const (
	SectionCustomerSummary      = "고객 정보 요약"
	SectionConsultationResult   = "상담 결과"
	SectionRecommendedProduct   = "추천 상품 정보"
	SectionConsultationAnalysis = "상담 분석"
)

// SectionOrder is the display order of sections.
var SectionOrder = []string{
	SectionCustomerSummary,
	SectionConsultationResult,
	SectionRecommendedProduct,
	SectionConsultationAnalysis,
}

// SectionRules is checked against report keys; unmatched keys go to the consultation result.
var SectionRules = Rules{
	{Keywords: []string{"고객", "사용자", "요구"}, Label: SectionCustomerSummary},
	{Keywords: []string{"추천", "상품", "플랜"}, Label: SectionRecommendedProduct},
	{Keywords: []string{"문제점", "개선", "분석", "제안"}, Label: SectionConsultationAnalysis},
}

// SectionFor classifies one report key.
func SectionFor(key string) string {
	return SectionRules.Classify(key, SectionConsultationResult)
}

type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

type Item struct {
	Key   string         `json:"key"`
	Value FormattedValue `json:"value"`
	Class string         `json:"class,omitempty"`
}

// Organize buckets every displayable key into exactly one section.
// Sections without items are left out.
func Organize(r types.FinalReport) []Section {
	buckets := map[string][]Item{}
	for _, e := range r {
		if e.Key == types.ConversationLogKey {
			continue
		}
		name := SectionFor(e.Key)
		buckets[name] = append(buckets[name], Item{
			Key:   e.Key,
			Value: FormatValue(e.Value),
			Class: ValueClass(e.Key, e.Value),
		})
	}
	var out []Section
	for _, name := range SectionOrder {
		if items := buckets[name]; len(items) > 0 {
			out = append(out, Section{Name: name, Items: items})
		}
	}
	return out
}

const (
	ClassHighlight      = "highlight-item"
	ClassRecommendation = "recommendation-item"
)

var highlightKeys = map[string]bool{
	"주요 논점":      true,
	"핵심 고객 요구사항": true,
}

var recommendationRule = Rule{Keywords: []string{"추천", "제안"}, Label: ClassRecommendation}

// ValueClass picks the emphasis style for a report value.
func ValueClass(key, value string) string {
	switch {
	case key == SatisfactionKey:
		return SatisfactionClass(value)
	case highlightKeys[key]:
		return ClassHighlight
	case recommendationRule.Matches(key):
		return recommendationRule.Label
	}
	return ""
}

package report

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

// ProductFitKeys feed the product fit chart, in lookup order.
var ProductFitKeys = []string{"상품 적합도 점수", "상품 적합성", "추천 상품 적합도"}

type Score struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

var (
	percentNumRe = regexp.MustCompile(`(\d+)%`)
	bareNumRe    = regexp.MustCompile(`(\d+)[^%]`)
	planNameRe   = regexp.MustCompile(`고급형|표준형|3400형|기본형`)
)

// DefaultProductFit is used when no number can be read from the text.
var DefaultProductFit = []Score{
	{Name: "고급형", Score: 70},
	{Name: "표준형", Score: 50},
	{Name: "3400형", Score: 30},
}

// ExtractProductFit reads a fit-score series out of free text. Percentages are
// preferred over bare numbers; each number takes the plan name found at the
// same position, else a synthetic "상품 N" label. It never fails: text with no
// numbers yields DefaultProductFit.
func ExtractProductFit(text string) []Score {
	plans := planNameRe.FindAllString(text, -1)
	for _, re := range []*regexp.Regexp{percentNumRe, bareNumRe} {
		matches := re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		out := make([]Score, 0, len(matches))
		for i, m := range matches {
			n := leadingInt(m)
			name := fmt.Sprintf("상품 %d", i+1)
			if i < len(plans) {
				name = plans[i]
			}
			out = append(out, Score{Name: name, Score: n})
		}
		return out
	}
	return append([]Score(nil), DefaultProductFit...)
}

// ProductFit returns the series for a report, or nil when it carries no fit text.
func ProductFit(r types.FinalReport) []Score {
	text := r.First(ProductFitKeys...)
	if text == "" {
		return nil
	}
	return ExtractProductFit(text)
}

// leadingInt parses the digits at the start of s; a bare-number match may end
// in a digit. Runs too long for an int clamp to math.MaxInt.
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt
	}
	return n
}

const (
	MetricResponseTime = "응답 시간"
	MetricInformation  = "정보 제공"
	MetricSatisfaction = "고객 만족도"
	MetricResolution   = "문제 해결"
)

var satisfactionScores = map[SatisfactionLevel]int{
	SatisfactionHigh:    85,
	SatisfactionMedium:  65,
	SatisfactionLow:     35,
	SatisfactionUnknown: 50,
}

const (
	resolvedScore   = 90
	unresolvedScore = 40
)

// ConsultationMetrics starts from fixed defaults; when the conversation carries
// a turns list (even an empty one), satisfaction and resolution are derived
// from the report and outcome.
func ConsultationMetrics(r types.FinalReport, c types.ConversationRecord) []Score {
	metrics := []Score{
		{Name: MetricResponseTime, Score: 75},
		{Name: MetricInformation, Score: 80},
		{Name: MetricSatisfaction, Score: 65},
		{Name: MetricResolution, Score: 70},
	}
	if c.Turns == nil {
		return metrics
	}
	if text, ok := r.Get(SatisfactionKey); ok && text != "" {
		metrics[2].Score = satisfactionScores[ClassifySatisfaction(text)]
	}
	if c.Success {
		metrics[3].Score = resolvedScore
	} else {
		metrics[3].Score = unresolvedScore
	}
	return metrics
}

package actionable

import (
	"fmt"

	"github.com/2021147588/boheommian-rhapsody/internal/aggregator"
)

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// failureThreshold is the failure rate (percent) that marks a customer group as a problem.
const failureThreshold = 50.0

var actions = map[string]string{
	"accident":    "사고이력 고객용 할증 설명과 대안 플랜 안내를 Sales 에이전트 스크립트에 추가",
	"experienced": "무사고 경력 할인 근거를 추천 단계에서 먼저 제시",
	"luxury":      "고가 차량 고객에게 고급형 보장 범위 비교표를 RAG 검색 대상으로 추가",
	"female":      "여성 고객 응대 사례를 검토하여 추천 흐름 보완",
	"young":       "젊은층 고객에게 표준형 가격 장점을 강조하도록 추천 문구 조정",
}

// Generate picks the customer group with the worst failure rate among groups
// that have at least one conversation.
func Generate(ins aggregator.Insight) ActionCard {
	var worst *aggregator.CharacteristicOutcome
	for i := range ins.Characteristics {
		c := &ins.Characteristics[i]
		if c.Total == 0 {
			continue
		}
		if worst == nil || c.FailureRate > worst.FailureRate {
			worst = c
		}
	}
	if worst != nil && worst.FailureRate >= failureThreshold {
		return ActionCard{
			Insight: fmt.Sprintf("%s 고객의 상담 실패율이 높습니다 (%.0f%%, %d명 중 %d명 성공)", worst.Label, worst.FailureRate, worst.Total, worst.Success),
			Action:  actions[worst.Key],
			Impact:  "해당 고객군의 가입 전환율 개선",
		}
	}
	return ActionCard{
		Insight: "뚜렷한 실패 패턴이 발견되지 않았습니다",
		Action:  "시뮬레이션 샘플을 늘려 데이터를 더 수집",
		Impact:  "즉각적인 조치 필요 없음",
	}
}

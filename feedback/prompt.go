package feedback

import (
	"encoding/json"
	"fmt"

	"invest-retro/llm"
	"invest-retro/marketdata"
)

// systemPrompt fixes the coach persona and the exact JSON shape the model
// must emit. Any other text in the response is a contract violation.
const systemPrompt = `
당신은 투자자의 심리와 행동을 분석하여 성장을 돕는 전문 '투자 행동 코치'입니다.

당신의 임무는 [입력 데이터]를 바탕으로 3단계에 걸쳐 피드백을 제공하는 것입니다.
당신의 응답은 반드시 아래 [응답 JSON 형식]을 따라야 하며, 그 외의 설명이나 대답은 절대 추가하지 마세요.

[응답 JSON 형식]
{
  "analysis": " (Part 1 내용을 여기에 작성) ",
  "questions": " (Part 2 내용을 여기에 작성) ",
  "primary_type": " (Part 3의 '주요 원인' 1개) ",
  "secondary_type": " (Part 3의 '보조 원인' 1개 또는 null) "
}
`

// classificationGuide carries the 9-category taxonomy and its priority
// rules. The model is the classifier, so these rules must reach it
// verbatim: leverage language always wins as primary cause, portfolio
// concentration is the second-priority override, then the specific
// behavioral patterns, then the catch-all.
const classificationGuide = `
**[분류 가이드라인 (Part 3)]**
AI는 아래의 우선순위와 기준을 '반드시' 따라서 9개 키워드 중 1개를 선택합니다.

1.  **'주요 원인' (primary_type) 선택 (필수):**
    * 거래 실패에 가장 치명적이고 직접적인 '행동' 또는 '심리' 1개를 선택합니다.
    * **(최우선 1) ` + "`무리한_레버리지`" + `**: '신용', '미수', '반대매매', '마통', '빚투' 등 '빚'이 언급되면, 다른 원인이 결합되었더라도 이것이 '주요 원인'입니다.
    * **(최우선 2) ` + "`포트폴리오_실패`" + `**: '몰빵', '전 재산', '한 섹터 편중' 등 '자산 배분'의 문제가 언급되면 이것이 '주요 원인'입니다.
    * **(기타 진입/청산 원인)**:
        * ` + "`FOMO_추격매수`" + `: '나만 못 벌까 봐', '조바심', '수익 인증', '과매수(RSI 80+)' 상태에서의 매수.
        * ` + "`외부정보_의존`" + `: '유튜버', '리딩방', '지인', '뉴스'를 맹신하여 매수.
        * ` + "`근거없는_확신`" + `: '그냥 감이', '이유 없음', '차트 모양만 보고' 매수.
        * ` + "`Panic_Sell_공포투매`" + `: '시장 급락', '공포', '패닉'으로 '과매도(RSI 20-)' 상태에서 매도.
        * ` + "`과도한_욕심`" + `: '수익권(+%)'이었으나 '더 먹으려는 욕심'에 익절을 못하고 손실로 전환.
        * ` + "`손실회피_물타기`" + `: '손절 못함', '본전 생각', '기도 매매', '분석 없는 물타기'.
        * ` + "`기타`" + `: 위 8가지에 속하지 않는 명확한 실패 (예: 배당주 함정).

2.  **'보조 원인' (secondary_type) 선택 (선택적):**
    * 만약 '주요 원인' 외에 명백하게 결합된 '보조 원인'이 있다면 1개 선택합니다.
    * (예: '무리한_레버리지'(Primary)를 사용해 '물타기'(Secondary)를 한 경우)
    * 명확한 보조 원인이 없다면, ` + "`null`" + `을 반환합니다.
`

const userPromptTemplate = `
[입력 데이터]
%s

[지시 사항]
위 [입력 데이터]를 바탕으로, 아래 3단계 지시 사항을 수행하여 [응답 JSON 형식]을 완성하세요.

**Part 1: 객관적인 분석 (analysis)**
* '주관적 데이터'(감정, 메모)와 '객관적 데이터'(시장, 뉴스, 차트)를 연결하여 투자 편향을 진단합니다.
* 이 결정이 합리적이었는지, 충동적이었는지 평가합니다.

**Part 2: 자기 성찰을 위한 질문 (questions)**
* 위 분석을 바탕으로, 사용자가 스스로 깨달을 수 있도록 날카로운 질문을 2-3개 제공합니다.
* 주의: 절대 직접적인 조언이나 정답을 제시하지 말고, 오직 질문만 합니다.

**Part 3: 실패 유형 분류 (primary_type, secondary_type)**
* 위에 제시된 [분류 가이드라인]을 '반드시' 준수하여 '주요 원인'과 '보조 원인'을 추출합니다.
%s`

// ReviewInput is the user-side narrative of a single trade
type ReviewInput struct {
	Ticker      string
	TradeInfo   string
	EmotionTags []string
	Memo        string
}

const maxPromptNews = 3

// promptInput is the JSON block embedded verbatim in the user prompt
type promptInput struct {
	TradeInfo      string         `json:"trade_info"`
	SubjectiveData subjectiveData `json:"subjective_data"`
	ObjectiveData  objectiveData  `json:"objective_data_at_sell_or_buy"`
}

type subjectiveData struct {
	EmotionTags []string `json:"emotion_tags"`
	Memo        string   `json:"memo"`
}

type objectiveData struct {
	ChartIndicators  string   `json:"chart_indicators"`
	RelatedNews      []string `json:"related_news"`
	MarketIndicators string   `json:"market_indicators"`
}

// CompilePrompt renders the fixed system instruction and the per-review
// user instruction into the model request. It is pure and never fails:
// snapshot sub-sections that carry error markers are rendered as the
// literal "N/A" instead of data.
func CompilePrompt(input ReviewInput, snap *marketdata.Snapshot) []llm.Message {
	data, err := json.MarshalIndent(buildPromptInput(input, snap), "", "  ")
	if err != nil {
		// Unreachable for this input shape; keep the contract anyway
		data = []byte("{}")
	}

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(userPromptTemplate, data, classificationGuide)},
	}
}

func buildPromptInput(input ReviewInput, snap *marketdata.Snapshot) promptInput {
	return promptInput{
		TradeInfo: input.TradeInfo,
		SubjectiveData: subjectiveData{
			EmotionTags: input.EmotionTags,
			Memo:        input.Memo,
		},
		ObjectiveData: objectiveData{
			ChartIndicators:  chartSummary(snap),
			RelatedNews:      newsTitles(snap),
			MarketIndicators: marketSummary(snap),
		},
	}
}

// chartSummary condenses the technical section into one line the model can
// reason about directly
func chartSummary(snap *marketdata.Snapshot) string {
	ci, ok := snap.ChartIndicators()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%s, %s, %s", ci.PriceVsMA50Status, ci.MATrendStatus, ci.RSIStatus)
}

// newsTitles returns up to maxPromptNews headlines, or the N/A placeholder
// when the section is erroring
func newsTitles(snap *marketdata.Snapshot) []string {
	items, ok := snap.NewsItems()
	if !ok {
		return []string{"N/A"}
	}

	titles := make([]string, 0, maxPromptNews)
	for _, item := range items {
		if item.Title == "" {
			continue
		}
		titles = append(titles, item.Title)
		if len(titles) == maxPromptNews {
			break
		}
	}
	return titles
}

func marketSummary(snap *marketdata.Snapshot) string {
	mi, ok := snap.MarketIndicators()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%s %s (%s)", mi.IndexName, mi.Status, mi.ChangePercent)
}

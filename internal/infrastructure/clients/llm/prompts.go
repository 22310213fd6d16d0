package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
)

const (
	relevanceExcerptRunes = 2000
	judgmentExcerptRunes  = 12000
)

const relevanceSystemPrompt = "당신은 블로그 게시물의 주제를 정확하게 판별하는 전문가입니다. '예' 또는 '아니오'로만 대답합니다."

func buildRelevancePrompt(keyword, title, text string) string {
	return fmt.Sprintf(`사용자는 '%[1]s'에 대한 실제 방문 후기를 찾고 있습니다.
다음 조건을 모두 만족하면 '예', 아니면 '아니오'로 답하세요.

1. 게시물의 주된 내용이 '%[1]s' 방문 경험이어야 합니다. 단순 언급은 제외합니다.
2. 이름이 비슷한 다른 행사나 장소의 후기는 제외합니다.
3. 주변 카페, 식당, 제품 홍보나 비교가 주된 내용이면 제외합니다.
4. 본문이 너무 짧아 실제 경험을 파악할 수 없으면 제외합니다.

제목: %[2]s
본문 (일부): %[3]s`, keyword, title, truncateRunes(text, relevanceExcerptRunes))
}

const judgmentSystemPrompt = `당신은 한국어 여행 후기의 감성을 문장 단위로 분석하는 전문가입니다.
반드시 JSON 객체 하나만 출력합니다.`

func buildJudgmentPrompt(keyword, title, text string) string {
	return fmt.Sprintf(`'%s'에 대한 블로그 후기를 분석하세요.

[규칙]
- is_relevant: 이 글이 '%s' 방문 후기이면 true.
- final_judgments: 만족 또는 불만을 드러내는 문장만 골라 각 문장에 -5.0(매우 부정)부터 5.0(매우 긍정) 사이의 score와 "positive" 또는 "negative" verdict를 붙이세요. 감정이 없는 정보성 문장은 제외합니다.
- aspect_sentiment_pairs: 평가 대상(aspect)과 그것을 묘사한 감성 표현(sentiment)의 쌍. 예: {"aspect": "음식", "sentiment": "맛있다"}

[출력 형식]
{"is_relevant": true, "final_judgments": [{"sentence": "...", "score": 2.5, "verdict": "positive"}], "aspect_sentiment_pairs": [{"aspect": "...", "sentiment": "..."}]}

제목: %s
본문:
%s`, keyword, keyword, title, truncateRunes(text, judgmentExcerptRunes))
}

func buildTrendReasonPrompt(keyword string, series []entities.TrendPoint) string {
	var b strings.Builder
	for _, p := range series {
		fmt.Fprintf(&b, "%s\t%.2f\n", p.Period, p.Ratio)
	}
	return fmt.Sprintf(`다음은 '%s'에 대한 최근 네이버 검색량 트렌드 데이터입니다 (날짜, 상대 관심도).

[데이터]
%s
[요청]
1. 검색량 트렌드의 핵심 특징을 1-2줄로 요약하세요.
2. 주말/평일 차이나 특정 시점의 급등 같은 패턴이 보이면 방문 팁을 한 문장 덧붙이세요.
서론 없이 요약만 작성하세요.`, keyword, b.String())
}

func buildPraiseReasonPrompt(keyword string, sentences []string) string {
	return fmt.Sprintf(`다음은 '%s' 블로그 후기에서 뽑은 긍정 문장입니다.
방문객이 주로 칭찬하는 핵심 이유 1~2가지를 한두 문장으로 요약하세요.
서론이나 "네, ...해드리겠습니다" 같은 말은 쓰지 마세요.

[긍정 문장]
- %s

[좋은 예시]
깨끗한 시설과 다양한 먹거리에 대한 칭찬이 많습니다.`, keyword, strings.Join(sentences, "\n- "))
}

type scorePromptData struct {
	Title               string   `json:"title"`
	RankingScore        *float64 `json:"ranking_score,omitempty"`
	SentimentScore      float64  `json:"sentiment_score"`
	SentimentReason     string   `json:"sentiment_reason"`
	QuarterlyTrendScore float64  `json:"quarterly_trend_score"`
	YearlyTrendScore    float64  `json:"yearly_trend_score"`
	TrendReason         string   `json:"trend_reason"`
	TimeScore           *float64 `json:"time_score,omitempty"`
	FestivalPeriod      string   `json:"festival_period,omitempty"`
	DistanceScore       *float64 `json:"distance_score,omitempty"`
	DistanceKm          string   `json:"distance_in_km,omitempty"`
}

func newScorePromptData(item *entities.RankedCandidate, isFestival, withRanking bool) scorePromptData {
	s := item.Scores
	d := scorePromptData{
		Title:               item.Title(),
		SentimentScore:      s.SentimentScore,
		SentimentReason:     s.SentimentReason,
		QuarterlyTrendScore: s.QuarterlyTrendScore,
		YearlyTrendScore:    s.YearlyTrendScore,
		TrendReason:         s.TrendReason,
	}
	if withRanking {
		d.RankingScore = &s.RankingScore
	}
	if isFestival {
		d.TimeScore = &s.TimeScore
		if f, ok := item.Candidate.(*entities.Festival); ok {
			d.FestivalPeriod = koreanPeriod(f.Period)
		}
		return d
	}
	d.DistanceScore = &s.DistanceScore
	if dist := item.Candidate.Base().Distance; dist != nil {
		d.DistanceKm = fmt.Sprintf("%.2fkm", *dist/1000)
	}
	return d
}

// koreanPeriod renders YYYYMMDD bounds as "2024년 10월 25일부터 ...까지".
func koreanPeriod(p entities.Period) string {
	start, ok1 := koreanDate(p.Start)
	end, ok2 := koreanDate(p.End)
	if !ok1 || !ok2 {
		return ""
	}
	return start + "부터 " + end + "까지"
}

func koreanDate(yyyymmdd string) (string, bool) {
	if len(yyyymmdd) != 8 {
		return "", false
	}
	return fmt.Sprintf("%s년 %s월 %s일", yyyymmdd[:4], yyyymmdd[4:6], yyyymmdd[6:]), true
}

func mustIndentJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

func buildScoreExplanationPrompt(in providers.ScoreExplanationInput) string {
	data := newScorePromptData(in.Item, in.IsFestival, false)

	var definitions, focus string
	if in.IsFestival {
		definitions = `- ❤️ 만족도 점수: 실제 방문객 리뷰의 긍정 비율 (100점에 가까울수록 만족)
- 📅 시기성 점수: 지금이 방문하기 얼마나 좋은 시기인지 (100점이면 진행 중이거나 곧 시작)
- 🔥 최근 화제성 (90일): 최근 3개월 검색 관심도
- 🗓️ 연간 꾸준함 (365일): 1년간 꾸준한 관심도`
		period := data.FestivalPeriod
		if period == "" {
			period = "알 수 없음"
		}
		focus = fmt.Sprintf("'시기성 점수'를 설명할 때 오늘 날짜(%s)와 축제 기간(%s)을 함께 언급하세요.", in.Today, period)
	} else {
		definitions = `- ❤️ 만족도 점수: 실제 방문객 리뷰의 긍정 비율 (100점에 가까울수록 만족)
- 📍 거리 점수: 기준 축제 장소에서 얼마나 가까운지 (100점에 가까울수록 가까움)
- 🔥 최근 화제성 (90일): 최근 3개월 검색 관심도
- 🗓️ 연간 꾸준함 (365일): 1년간 꾸준한 관심도`
		dist := data.DistanceKm
		if dist == "" {
			dist = "알 수 없음"
		}
		focus = fmt.Sprintf("'거리 점수'를 설명할 때 실제 거리(%s)를 함께 언급하세요.", dist)
	}

	return fmt.Sprintf(`당신은 데이터를 쉽고 친절하게 설명하는 분석가입니다. 아래는 '%s'의 분석 데이터입니다.

[점수 의미]
%s

[분석 데이터]
%s

[규칙]
1. 각 점수와 그 의미를 sentiment_reason, trend_reason을 활용해 풀어서 설명하세요.
2. 만족도 점수 설명에는 sentiment_reason의 칭찬 이유를 꼭 넣으세요.
3. %s
4. 친구에게 말하듯 부드러운 어투로, "[분석]" 같은 머리글 없이 작성하세요.
5. 항목마다 Markdown 리스트(-) 한 줄로 작성하세요.`, data.Title, definitions, mustIndentJSON(data), focus)
}

func buildComparativeSummaryPrompt(items []*entities.RankedCandidate, isFestival bool) string {
	data := make([]scorePromptData, 0, len(items))
	for _, item := range items {
		data = append(data, newScorePromptData(item, isFestival, true))
	}
	contextual := "- 거리 점수: 선택한 축제 장소에서 얼마나 가까운지 (100점에 가까울수록 가까움)"
	if isFestival {
		contextual = "- 시기성 점수: 지금 방문하기 얼마나 좋은 시기인지 (100점이면 진행 중이거나 곧 시작)"
	}

	return fmt.Sprintf(`당신은 친절한 여행 추천 데이터 분석가입니다. 아래는 여러 점수를 종합해 순위를 매긴 목록입니다.

[점수 의미]
- 만족도 점수: 실제 방문객 리뷰의 만족도 (100점에 가까울수록 긍정 평가가 많음)
- 최근 화제성 (90일): 최근 3개월간 관심도
- 연간 꾸준함 (365일): 지난 1년간 꾸준한 관심도
%s

[분석 데이터]
%s

[요청]
1위가 왜 최고의 선택인지 설명하세요.
- "이번 추천에서는 OOO이(가) 가장 높은 점수를 받았네요!"처럼 자연스럽게 시작하세요.
- sentiment_reason과 trend_reason을 인용해 점수의 이유를 설명하세요.
- 다른 순위와 비교해 1위의 강점을 부각하세요.
- 2~3 문장으로 마무리하세요.`, contextual, mustIndentJSON(data))
}

func buildComplaintSummaryPrompt(sentences []string) string {
	return fmt.Sprintf(`[수집된 부정적인 의견]
- %s

[요청] 위 의견들을 종합해 주요 불만 사항을 1., 2., 3. ... 형식의 목록으로 요약하세요. 의견이 없다면 '특별한 불만 사항 없음'이라고 답하세요.`,
		strings.Join(sentences, "\n- "))
}

// aspectCount is one distinct aspect/sentiment pair and how often it occurred.
type aspectCount struct {
	pair  entities.AspectPair
	count int
}

// countPairs counts pairs preserving first-seen order.
func countPairs(pairs []entities.AspectPair) []aspectCount {
	index := make(map[entities.AspectPair]int, len(pairs))
	var out []aspectCount
	for _, p := range pairs {
		if i, ok := index[p]; ok {
			out[i].count++
			continue
		}
		index[p] = len(out)
		out = append(out, aspectCount{pair: p, count: 1})
	}
	return out
}

func buildPositiveKeywordsPrompt(pairs []entities.AspectPair) string {
	counted := countPairs(pairs)
	parts := make([]string, 0, len(counted))
	for _, c := range counted {
		parts = append(parts, fmt.Sprintf("('%s', '%s'): %d회", c.pair.Aspect, c.pair.Sentiment, c.count))
	}
	return fmt.Sprintf(`당신은 사용자 리뷰에서 긍정 키워드를 추출하고 묶는 마케팅 분석가입니다.
아래는 '주체-감성' 쌍과 언급 횟수입니다.

[데이터]
%s

[요청]
1. 의미가 비슷한 쌍을 하나의 대표 키워드로 묶으세요. 예: ('음식', '맛있다'), ('음식', '훌륭하다') -> "음식이 맛있어요"
2. 부정적인 쌍은 제외하세요.
3. 묶인 쌍들의 횟수를 합산해 count로 쓰세요.
4. 많이 언급된 순서로 정렬하세요.
5. 다른 설명 없이 JSON 리스트만 출력하세요.

[출력 형식]
[{"keyword": "음식이 맛있어요", "count": 21}, {"keyword": "직원이 친절해요", "count": 5}]`, strings.Join(parts, ", "))
}

func buildDistributionPrompt(in providers.DistributionInput) string {
	counts := make([]string, 0, len(in.Counts))
	for _, c := range in.Counts {
		counts = append(counts, fmt.Sprintf("%s: %d", c.Label, c.Count))
	}
	b := in.Boundaries
	return fmt.Sprintf(`You are a data analyst. Write an objective analysis, in Korean, of a satisfaction distribution built from festival reviews. Output only the markdown below.

Input:
- Total sentences: %[1]d
- Sentence counts per level: %[2]s
- Average satisfaction level (1 to 5): %[3]s
- Score mean %.2[4]f, std %.2[5]f

`+"```markdown"+`
### 📊 만족도 분포 종합 분석

**주요 지표:**
- **분석 문장 수**: %[1]d개
- **평균 만족도**: %[3]s점 (5점 만점)
- **만족도 Level 기준**: (매우 불만족 < %.2[6]f < 불만족 < %.2[7]f < 보통 < %.2[8]f < 만족 < %.2[9]f < 매우 만족)

**분포 형태 분석:**
[Pick one: 압도적 긍정 (J-커브형), 양극화 (U-커브형), 다양한 평가 (평평한 분포), 보통 중심 (종형 분포), 부정적 평가 (L-커브형). Describe it in one Korean sentence.]

**종합 해석:**
[2-3 Korean sentences interpreting the shape together with the average. A high average means even '보통' leans positive; a low one means '보통' may hide dissatisfaction. Recommend checking causes if polarized.]
`+"```",
		in.TotalSentences, strings.Join(counts, ", "), fmt.Sprintf("%.2f", in.AverageLevel),
		b.Mean, b.Std, b.VeryDissatisfiedUpper, b.DissatisfiedUpper, b.NeutralUpper, b.SatisfiedUpper)
}

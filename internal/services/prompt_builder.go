package services

import (
	"TrendReport-admin/internal/models"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// slide context 에서 기상 분석 결과가 담기는 키
const weatherContextKey = "weather_analysis"

// 인사이트 타이틀이 캐시되는 slide context 키
const insightTitleKey = "insight_title"

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// BuildPromptVars 는 태그 하나의 프롬프트 치환에 쓰일 변수 집합을 만든다.
// 기본 변수(월, 연도, 원본 데이터) 위에 프레이즈 컨텍스트와 기상 컨텍스트를
// 얹고, slide context 항목이 마지막에 덮어쓴다. 앞선 태그가 만든
// insight_title 같은 값이 기본값보다 우선하는 것은 이 순서 때문이다.
func BuildPromptVars(
	tagName string,
	records []models.PhraseRecord,
	month string,
	slideCtx map[string]any,
	insightTags []string,
) map[string]any {
	vars := map[string]any{
		"month":        month,
		"current_year": time.Now().Year(),
		"phrase_data":  records,
	}

	filtered := FilterNoise(records)
	topExposure := TopByImpressions(filtered, 5)
	topCTR := TopByCTR(filtered, 5)
	vars["chart1_top_groups"] = PhraseNames(topExposure)
	vars["ctr_top_groups"] = PhraseNames(topCTR)
	vars["phrase_info_text"] = SummaryBlock(topExposure)
	vars["phrase_info_text_ctr"] = SummaryBlock(topCTR)

	// 인사이트 태그는 비교 프롬프트용으로 프레이즈 이름 목록을 추가로 받는다.
	isInsight := false
	for _, name := range insightTags {
		if name == tagName {
			isInsight = true
			break
		}
	}
	if isInsight && len(filtered) > 0 {
		vars["exposure_phrases"] = PhraseNames(topExposure)
		vars["ctr_phrases"] = PhraseNames(topCTR)
	}

	if slideCtx != nil {
		if weather, ok := slideCtx[weatherContextKey].(models.WeatherAnalysis); ok {
			for k, v := range WeatherVars(weather) {
				vars[k] = v
			}
		}
		for k, v := range slideCtx {
			if k == weatherContextKey {
				continue
			}
			vars[k] = v
		}
	}
	return vars
}

// SubstituteVars 는 템플릿의 {name} 자리표시를 변수 값으로 치환한다.
// 바인딩이 없는 자리표시는 에러 없이 원문 그대로 남는다. 잘못된 템플릿
// 하나가 전체 실행을 중단시키지 않도록 하는 의도적인 정책이다.
func SubstituteVars(template string, vars map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := vars[name]
		if !ok || value == nil {
			return match
		}
		return formatVar(value)
	})
}

// BuildPrompt 는 태그 설정의 템플릿으로 완성된 프롬프트와 치환에 사용된
// 변수 맵을 함께 돌려준다. 변수 맵은 인사이트 타이틀 생성처럼 호출자가
// 파생 값을 직접 들여다봐야 할 때 쓰인다.
func BuildPrompt(
	tagName string,
	records []models.PhraseRecord,
	month string,
	settings models.TagSettings,
	slideCtx map[string]any,
	insightTags []string,
) (string, map[string]any) {
	vars := BuildPromptVars(tagName, records, month, slideCtx, insightTags)
	return SubstituteVars(settings.PromptTemplate, vars), vars
}

// AppendLengthGuideline 은 길이 권고를 사람이 읽는 문구로 프롬프트 끝에 덧붙인다.
// 생성 결과를 여기서 검증하거나 자르지는 않는다.
func AppendLengthGuideline(prompt string, guideline models.LengthGuideline) string {
	if guideline.IsZero() {
		return prompt
	}
	var clauses []string
	if guideline.CharsMax > 0 {
		clauses = append(clauses, fmt.Sprintf("최대 %d자", guideline.CharsMax))
	}
	if guideline.CharsApprox > 0 {
		clauses = append(clauses, fmt.Sprintf("약 %d자", guideline.CharsApprox))
	}
	if guideline.Lines > 0 {
		clauses = append(clauses, fmt.Sprintf("%d줄", guideline.Lines))
	}
	if guideline.LinesMax > 0 {
		clauses = append(clauses, fmt.Sprintf("최대 %d줄", guideline.LinesMax))
	}
	return prompt + "\n\n길이 제한: " + strings.Join(clauses, ", ")
}

// 모든 생성 프롬프트 끝에 붙는 출력 언어 지시
const koreanOutputDirective = "중요: 반드시 한국어로만 작성하세요. 영어나 다른 언어를 사용하지 마세요."

// AppendLanguageDirective 는 출력 언어 지시를 프롬프트 끝에 덧붙인다.
func AppendLanguageDirective(prompt string) string {
	return prompt + "\n\n" + koreanOutputDirective
}

func formatVar(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

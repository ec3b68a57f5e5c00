package services

import (
	"testing"
	"time"

	"TrendReport-admin/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteVars(t *testing.T) {
	vars := map[string]any{
		"month":  "10월",
		"names":  []string{"a", "b"},
		"ratio":  1.5,
		"count":  3,
		"absent": nil,
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"문자열 치환", "{month} 리포트", "10월 리포트"},
		{"목록은 쉼표로", "상위: {names}", "상위: a, b"},
		{"실수", "비율 {ratio}", "비율 1.5"},
		{"정수", "{count}건", "3건"},
		{"미정의 변수는 원문 유지", "{unknown} 그대로", "{unknown} 그대로"},
		{"nil 값도 원문 유지", "{absent} 그대로", "{absent} 그대로"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubstituteVars(tt.template, vars))
		})
	}
}

func TestSubstituteVarsIdempotent(t *testing.T) {
	// 미정의 자리표시가 남은 결과를 다시 치환해도 달라지지 않아야 한다.
	vars := map[string]any{"month": "10월"}
	once := SubstituteVars("{month} {unknown}", vars)
	twice := SubstituteVars(once, vars)
	assert.Equal(t, once, twice)
}

func TestBuildPromptVarsBase(t *testing.T) {
	records := []models.PhraseRecord{
		record("노출왕", 100, 10, 1),
		record("클릭왕", 10, 9, 90),
		record(models.NoisePhrase, 9999, 1, 1),
	}
	vars := BuildPromptVars("DESCRIPTION1_AREA", records, "10월", nil, nil)

	assert.Equal(t, "10월", vars["month"])
	assert.Equal(t, time.Now().Year(), vars["current_year"])
	assert.Equal(t, []string{"노출왕", "클릭왕"}, vars["chart1_top_groups"], "노이즈는 제외돼야 한다")
	assert.Equal(t, []string{"클릭왕", "노출왕"}, vars["ctr_top_groups"])
	assert.NotContains(t, vars, "exposure_phrases", "인사이트 태그가 아니면 비교 변수가 없어야 한다")
}

func TestBuildPromptVarsInsight(t *testing.T) {
	records := []models.PhraseRecord{
		record("노출왕", 100, 10, 1),
		record("클릭왕", 10, 9, 90),
	}
	insightTags := []string{"INSIGHT1_AREA"}
	vars := BuildPromptVars("INSIGHT1_AREA", records, "10월", nil, insightTags)
	assert.Equal(t, []string{"노출왕", "클릭왕"}, vars["exposure_phrases"])
	assert.Equal(t, []string{"클릭왕", "노출왕"}, vars["ctr_phrases"])
}

func TestBuildPromptVarsSlideContext(t *testing.T) {
	weather := models.WeatherAnalysis{
		DataAvailable: true,
		CurrentTemp:   15.2,
		HistoricalAvg: 14.0,
		DiffFromAvg:   1.2,
	}
	slideCtx := map[string]any{
		weatherContextKey: weather,
		"insight_title":   "커스텀 타이틀",
		"month":           "덮어쓴 월",
	}
	vars := BuildPromptVars("X", nil, "10월", slideCtx, nil)

	assert.Equal(t, 15.2, vars["weather_current_temp"])
	assert.Equal(t, "평균보다 1.2℃ 높았으며", vars["weather_comparison"])
	assert.Equal(t, "커스텀 타이틀", vars["insight_title"])
	assert.Equal(t, "덮어쓴 월", vars["month"], "slide context 가 기본값을 덮어써야 한다")
	assert.NotContains(t, vars, weatherContextKey, "분석 구조체 자체는 변수로 노출되지 않는다")
}

func TestAppendLengthGuideline(t *testing.T) {
	t.Run("비어 있으면 변경 없음", func(t *testing.T) {
		assert.Equal(t, "p", AppendLengthGuideline("p", models.LengthGuideline{}))
	})
	t.Run("항목 순서 고정", func(t *testing.T) {
		g := models.LengthGuideline{CharsMax: 100, CharsApprox: 80, Lines: 3, LinesMax: 5}
		got := AppendLengthGuideline("p", g)
		assert.Equal(t, "p\n\n길이 제한: 최대 100자, 약 80자, 3줄, 최대 5줄", got)
	})
}

func TestAppendLanguageDirective(t *testing.T) {
	got := AppendLanguageDirective("본문")
	assert.Equal(t, "본문\n\n중요: 반드시 한국어로만 작성하세요. 영어나 다른 언어를 사용하지 마세요.", got)
}

func TestWeatherVarsUnavailable(t *testing.T) {
	vars := WeatherVars(models.WeatherAnalysis{DataAvailable: false})
	assert.Equal(t, "N/A", vars["weather_current_temp"])
	assert.Equal(t, "N/A", vars["weather_historical_avg"])
	assert.Equal(t, "", vars["weather_comparison"])
	assert.Equal(t, "", vars["weather_normal_comparison"])
}

func TestWeatherVarsNarratives(t *testing.T) {
	tests := []struct {
		name           string
		diffAvg        float64
		diffNormal     float64
		wantComparison string
		wantNormal     string
	}{
		{"높음", 2.3, 1.1, "평균보다 2.3℃ 높았으며", "예년 대비 1.1℃ 높았습니다"},
		{"낮음", -0.5, -0.5, "평균보다 0.5℃ 낮았으며", "예년 대비 0.5℃ 낮았습니다"},
		{"동일", 0, 0, "평균과 유사했으며", "예년과 유사했습니다"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := WeatherVars(models.WeatherAnalysis{
				DataAvailable:  true,
				DiffFromAvg:    tt.diffAvg,
				DiffFromNormal: tt.diffNormal,
			})
			assert.Equal(t, tt.wantComparison, vars["weather_comparison"])
			assert.Equal(t, tt.wantNormal, vars["weather_normal_comparison"])
		})
	}
}

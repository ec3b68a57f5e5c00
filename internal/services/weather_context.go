package services

import (
	"TrendReport-admin/internal/models"
	"fmt"
	"math"
)

// WeatherVars 는 기상 분석 결과를 프롬프트 템플릿 변수로 펼친다.
// 데이터가 없으면 수치 변수는 "N/A", 비교 문구는 빈 문자열이 되며
// 어떤 입력에도 실패하지 않는다.
func WeatherVars(weather models.WeatherAnalysis) map[string]any {
	vars := make(map[string]any)
	if !weather.DataAvailable {
		vars["weather_current_temp"] = "N/A"
		vars["weather_historical_avg"] = "N/A"
		vars["weather_comparison"] = ""
		vars["weather_normal_comparison"] = ""
		return vars
	}

	vars["weather_current_temp"] = weather.CurrentTemp
	vars["weather_historical_avg"] = weather.HistoricalAvg
	vars["weather_diff_from_avg"] = weather.DiffFromAvg
	vars["weather_pct_diff_from_avg"] = weather.PctDiffFromAvg
	vars["weather_normal_avg"] = weather.NormalAvg
	vars["weather_diff_from_normal"] = weather.DiffFromNormal
	vars["weather_pct_diff_from_normal"] = weather.PctDiffFromNormal
	vars["weather_rank"] = weather.Rank
	vars["weather_total_years"] = weather.TotalYears

	switch {
	case weather.DiffFromAvg > 0:
		vars["weather_comparison"] = fmt.Sprintf("평균보다 %.1f℃ 높았으며", math.Abs(weather.DiffFromAvg))
	case weather.DiffFromAvg < 0:
		vars["weather_comparison"] = fmt.Sprintf("평균보다 %.1f℃ 낮았으며", math.Abs(weather.DiffFromAvg))
	default:
		vars["weather_comparison"] = "평균과 유사했으며"
	}

	switch {
	case weather.DiffFromNormal > 0:
		vars["weather_normal_comparison"] = fmt.Sprintf("예년 대비 %.1f℃ 높았습니다", math.Abs(weather.DiffFromNormal))
	case weather.DiffFromNormal < 0:
		vars["weather_normal_comparison"] = fmt.Sprintf("예년 대비 %.1f℃ 낮았습니다", math.Abs(weather.DiffFromNormal))
	default:
		vars["weather_normal_comparison"] = "예년과 유사했습니다"
	}
	return vars
}

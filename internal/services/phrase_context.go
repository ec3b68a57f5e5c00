package services

import (
	"TrendReport-admin/internal/models"
	"fmt"
	"sort"
	"strings"
)

// 프레이즈/키워드 정보가 비어 있을 때 프롬프트에 들어가는 대체 문구
const (
	noPhraseInfoText  = "(프레이즈 정보 없음)"
	noKeywordInfoText = "(키워드 정보 없음)"
)

// FilterNoise 는 노이즈 센티널 레코드를 제거한 새 슬라이스를 돌려준다.
func FilterNoise(records []models.PhraseRecord) []models.PhraseRecord {
	var filtered []models.PhraseRecord
	for _, r := range records {
		if !r.IsNoise() {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// TopByImpressions 는 총 노출 기준 내림차순 상위 n개를 돌려준다.
// 동률은 원래 순서를 유지한다. 이 목록이 AI 프롬프트에 그대로 들어가므로
// 정렬은 반드시 안정적이어야 한다.
func TopByImpressions(records []models.PhraseRecord, n int) []models.PhraseRecord {
	return topBy(records, n, func(r models.PhraseRecord) float64 { return r.TotalImpressions })
}

// TopByCTR 는 평균 CTR 기준 내림차순 상위 n개를 돌려준다.
func TopByCTR(records []models.PhraseRecord, n int) []models.PhraseRecord {
	return topBy(records, n, func(r models.PhraseRecord) float64 { return r.AvgCTR })
}

func topBy(records []models.PhraseRecord, n int, key func(models.PhraseRecord) float64) []models.PhraseRecord {
	sorted := make([]models.PhraseRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return key(sorted[i]) > key(sorted[j]) })
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// PhraseNames 는 레코드 목록에서 프레이즈 이름만 뽑는다.
func PhraseNames(records []models.PhraseRecord) []string {
	var names []string
	for _, r := range records {
		names = append(names, r.Phrase)
	}
	return names
}

// SummaryBlock 은 순위 목록을 "- 프레이즈: 키워드1, 키워드2" 형태의 여러 줄
// 텍스트로 만든다. 프레이즈당 키워드는 노출수 상위 5개까지만 싣는다.
// 입력이 비어 있으면 대체 문구를 돌려주며, 어떤 입력에도 실패하지 않는다.
func SummaryBlock(ranked []models.PhraseRecord) string {
	if len(ranked) == 0 {
		return noPhraseInfoText
	}
	var lines []string
	for _, r := range ranked {
		keywords := topKeywords(r.Keywords, 5)
		if len(keywords) == 0 {
			lines = append(lines, fmt.Sprintf("- %s: %s", r.Phrase, noKeywordInfoText))
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", r.Phrase, strings.Join(keywords, ", ")))
	}
	return strings.Join(lines, "\n")
}

func topKeywords(stats []models.KeywordStat, n int) []string {
	sorted := make([]models.KeywordStat, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Impressions > sorted[j].Impressions })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	var names []string
	for _, k := range sorted {
		names = append(names, k.Keyword)
	}
	return names
}

package models

import (
	"encoding/json"
)

// NoisePhrase 는 클러스터링되지 않은 잔여 키워드 묶음을 뜻하는 센티널 값.
// 모든 순위 계산에서 제외된다.
const NoisePhrase = "노이즈"

// KeywordStat 는 프레이즈에 속한 개별 키워드의 노출 정보
type KeywordStat struct {
	Keyword     string  `json:"keyword"`
	Impressions float64 `json:"impressions"`
}

// PhraseRecord 는 클러스터링 파이프라인이 만든 프레이즈 단위 집계 레코드.
// 리포트 생성 동안 읽기 전용으로 취급한다.
type PhraseRecord struct {
	Phrase           string        `json:"phrase"`
	TotalImpressions float64       `json:"total_impressions"`
	TotalClicks      float64       `json:"total_clicks"`
	AvgCTR           float64       `json:"avg_ctr"`
	Keywords         []KeywordStat `json:"keywords"`
}

// IsNoise 는 이 레코드가 노이즈 센티널인지 여부
func (p PhraseRecord) IsNoise() bool {
	return p.Phrase == NoisePhrase
}

// rawPhraseRecord 는 외부 JSON의 한글/영문 키 별칭을 모두 수용하기 위한 중간 형태.
// 별칭 정규화는 이 경계에서 한 번만 일어나고, 내부에서는 PhraseRecord 만 사용한다.
type rawPhraseRecord struct {
	Phrase             string          `json:"phrase"`
	PhraseKo           string          `json:"프레이즈"`
	TotalImpressions   *float64        `json:"total_impressions"`
	TotalImpressionsKo *float64        `json:"총 노출"`
	TotalClicks        *float64        `json:"total_clicks"`
	TotalClicksKo      *float64        `json:"총 클릭"`
	AvgCTR             *float64        `json:"avg_ctr"`
	AvgCTRKo           *float64        `json:"평균 CTR"`
	Keywords           json.RawMessage `json:"keywords"`
	KeywordsKo         json.RawMessage `json:"키워드들"`
}

type rawKeywordStat struct {
	Keyword       string   `json:"keyword"`
	KeywordKo     string   `json:"키워드"`
	Impressions   *float64 `json:"impressions"`
	ImpressionsKo *float64 `json:"노출수"`
}

// UnmarshalJSON 은 한글 키("프레이즈", "총 노출", ...)와 영문 키를 모두 받아
// 표준 필드로 정규화한다. 키워드 목록은 객체 배열과 단순 문자열 배열을 모두 허용한다.
func (p *PhraseRecord) UnmarshalJSON(data []byte) error {
	var raw rawPhraseRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Phrase = firstNonEmpty(raw.PhraseKo, raw.Phrase)
	p.TotalImpressions = firstNonNil(raw.TotalImpressionsKo, raw.TotalImpressions)
	p.TotalClicks = firstNonNil(raw.TotalClicksKo, raw.TotalClicks)
	p.AvgCTR = firstNonNil(raw.AvgCTRKo, raw.AvgCTR)

	kwData := raw.KeywordsKo
	if len(kwData) == 0 {
		kwData = raw.Keywords
	}
	p.Keywords = nil
	if len(kwData) > 0 {
		var rawKws []rawKeywordStat
		if err := json.Unmarshal(kwData, &rawKws); err == nil {
			for _, rk := range rawKws {
				p.Keywords = append(p.Keywords, KeywordStat{
					Keyword:     firstNonEmpty(rk.KeywordKo, rk.Keyword),
					Impressions: firstNonNil(rk.ImpressionsKo, rk.Impressions),
				})
			}
		} else {
			// 단순 문자열 배열 형태
			var names []string
			if err := json.Unmarshal(kwData, &names); err == nil {
				for _, name := range names {
					p.Keywords = append(p.Keywords, KeywordStat{Keyword: name})
				}
			}
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonNil(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

package services

import (
	"testing"

	"TrendReport-admin/internal/models"

	"github.com/stretchr/testify/assert"
)

func record(phrase string, impressions, clicks, ctr float64, keywords ...models.KeywordStat) models.PhraseRecord {
	return models.PhraseRecord{
		Phrase:           phrase,
		TotalImpressions: impressions,
		TotalClicks:      clicks,
		AvgCTR:           ctr,
		Keywords:         keywords,
	}
}

func TestFilterNoise(t *testing.T) {
	records := []models.PhraseRecord{
		record("가을 캠핑", 100, 10, 10),
		record(models.NoisePhrase, 999, 99, 9.9),
		record("단풍 구경", 50, 5, 10),
	}
	filtered := FilterNoise(records)
	assert.Len(t, filtered, 2)
	assert.Equal(t, "가을 캠핑", filtered[0].Phrase)
	assert.Equal(t, "단풍 구경", filtered[1].Phrase)
}

func TestTopByImpressions(t *testing.T) {
	records := []models.PhraseRecord{
		record("c", 30, 0, 0),
		record("a", 100, 0, 0),
		record("b", 100, 0, 0),
		record("d", 10, 0, 0),
	}
	top := TopByImpressions(records, 3)
	assert.Equal(t, []string{"a", "b", "c"}, PhraseNames(top), "동률은 원래 순서를 유지해야 한다")
}

func TestTopByCTRLimit(t *testing.T) {
	records := []models.PhraseRecord{
		record("a", 0, 0, 1.5),
		record("b", 0, 0, 3.2),
	}
	top := TopByCTR(records, 5)
	assert.Len(t, top, 2)
	assert.Equal(t, "b", top[0].Phrase)
}

func TestSummaryBlock(t *testing.T) {
	t.Run("빈 입력은 대체 문구", func(t *testing.T) {
		assert.Equal(t, "(프레이즈 정보 없음)", SummaryBlock(nil))
	})

	t.Run("키워드 없는 프레이즈", func(t *testing.T) {
		got := SummaryBlock([]models.PhraseRecord{record("가을 캠핑", 10, 1, 10)})
		assert.Equal(t, "- 가을 캠핑: (키워드 정보 없음)", got)
	})

	t.Run("키워드는 노출수 상위 5개만", func(t *testing.T) {
		stats := []models.KeywordStat{
			{Keyword: "k6", Impressions: 1},
			{Keyword: "k1", Impressions: 60},
			{Keyword: "k2", Impressions: 50},
			{Keyword: "k3", Impressions: 40},
			{Keyword: "k4", Impressions: 30},
			{Keyword: "k5", Impressions: 20},
		}
		got := SummaryBlock([]models.PhraseRecord{record("가을 캠핑", 10, 1, 10, stats...)})
		assert.Equal(t, "- 가을 캠핑: k1, k2, k3, k4, k5", got)
	})

	t.Run("여러 프레이즈는 줄 단위", func(t *testing.T) {
		got := SummaryBlock([]models.PhraseRecord{
			record("a", 10, 1, 10, models.KeywordStat{Keyword: "x", Impressions: 1}),
			record("b", 5, 1, 20),
		})
		assert.Equal(t, "- a: x\n- b: (키워드 정보 없음)", got)
	})
}

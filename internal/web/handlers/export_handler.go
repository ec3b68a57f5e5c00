package handlers

import (
	"TrendReport-admin/internal/models"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
)

// PhraseDataLoader 는 내보내기 대상 프레이즈 데이터를 읽어오는 함수
type PhraseDataLoader func() ([]models.PhraseRecord, error)

// ExportHandler 는 프레이즈 통계 CSV 내보내기 요청을 처리한다.
type ExportHandler struct {
	load PhraseDataLoader
}

// NewExportHandler 는 ExportHandler 인스턴스를 만든다.
func NewExportHandler(load PhraseDataLoader) *ExportHandler {
	if load == nil {
		log.Panicln("ExportHandler：PhraseDataLoader 는 nil 일 수 없습니다")
	}
	return &ExportHandler{load: load}
}

// ServeHTTP 는 http.Handler 인터페이스 구현
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("정보：[ExportHandler] 요청 수신: %s %s (from %s)\n", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodGet {
		log.Printf("경고：[ExportHandler] GET 이 아닌 요청 (%s) 거부.\n", r.Method)
		http.Error(w, "GET 메서드만 지원합니다", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.load()
	if err != nil {
		log.Printf("오류：[ExportHandler] 프레이즈 데이터 로드 실패: %v", err)
		http.Error(w, "내보낼 데이터를 읽을 수 없습니다", http.StatusInternalServerError)
		return
	}
	log.Printf("정보：[ExportHandler] 프레이즈 %d건 내보내기.\n", len(records))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=프레이즈분석_%s.csv", time.Now().Format("2006-01-02")))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	headers := []string{"프레이즈", "총 노출", "총 클릭", "평균 CTR", "상위 키워드"}
	if err := writer.Write(headers); err != nil {
		log.Printf("오류：[ExportHandler] CSV 헤더 쓰기 실패: %v", err)
		return
	}

	for _, rec := range records {
		row := []string{
			rec.Phrase,
			fmt.Sprintf("%.0f", rec.TotalImpressions),
			fmt.Sprintf("%.0f", rec.TotalClicks),
			fmt.Sprintf("%.2f", rec.AvgCTR),
			topKeywordsLine(rec.Keywords, 5),
		}
		if err := writer.Write(row); err != nil {
			log.Printf("오류：[ExportHandler] CSV 행 쓰기 실패: %v", err)
			return
		}
	}
}

// topKeywordsLine 은 노출수 상위 키워드를 "; " 로 이은 한 줄을 만든다.
func topKeywordsLine(stats []models.KeywordStat, n int) string {
	sorted := make([]models.KeywordStat, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Impressions > sorted[j].Impressions
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	names := make([]string, 0, len(sorted))
	for _, s := range sorted {
		names = append(names, s.Keyword)
	}
	return strings.Join(names, "; ")
}

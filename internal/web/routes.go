package web

import (
	"TrendReport-admin/internal/web/handlers"
	"log"
	"net/http"
)

// SetupRouter 는 관리용 HTTP 라우트를 구성한다. runs 는 이력 저장이
// 꺼진 구성에서 nil 일 수 있다.
func SetupRouter(
	reportRunner handlers.ReportPipelineRunner,
	runs handlers.RunLister,
	phraseLoader handlers.PhraseDataLoader,
) http.Handler {
	mux := http.NewServeMux()

	// 수동 리포트 생성 트리거
	triggerHandler := handlers.NewTriggerReportHandler(reportRunner)
	mux.Handle("/generate", triggerHandler)

	// 실행 이력 조회
	runsHandler := handlers.NewRunsHandler(runs)
	mux.Handle("/runs", runsHandler)

	// 프레이즈 통계 CSV 내보내기
	exportHandler := handlers.NewExportHandler(phraseLoader)
	mux.Handle("/export", exportHandler)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			log.Printf("경고：매칭되지 않은 라우트: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("TrendReport-admin\n"))
	})

	log.Println("정보：HTTP 라우트 설정 완료.")
	return mux
}

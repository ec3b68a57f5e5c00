package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
)

// ReportPipelineRunner 는 리포트 생성 파이프라인 실행자가 갖춰야 할 메서드
type ReportPipelineRunner interface {
	RunReportPipeline() error
}

// TriggerReportHandler 는 수동 리포트 생성 요청을 처리한다.
// 동시에 한 번만 실행되도록 진행 중 여부를 잠금으로 지킨다.
type TriggerReportHandler struct {
	runner       ReportPipelineRunner
	mu           sync.Mutex
	isProcessing bool
}

// NewTriggerReportHandler 는 TriggerReportHandler 인스턴스를 만든다.
func NewTriggerReportHandler(runner ReportPipelineRunner) *TriggerReportHandler {
	if runner == nil {
		log.Panicln("TriggerReportHandler：ReportPipelineRunner 는 nil 일 수 없습니다")
	}
	return &TriggerReportHandler{runner: runner}
}

// ServeHTTP 는 http.Handler 인터페이스 구현
func (h *TriggerReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("정보：[TriggerReportHandler] 요청 수신: %s %s (from %s)\n", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodPost {
		log.Printf("경고：[TriggerReportHandler] POST 가 아닌 요청 (%s) 거부.\n", r.Method)
		http.Error(w, "POST 메서드만 지원합니다", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	if h.isProcessing {
		h.mu.Unlock()
		log.Println("경고：[TriggerReportHandler] 리포트 생성이 이미 진행 중입니다.")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "리포트 생성이 이미 진행 중입니다. 잠시 후 다시 시도하세요."})
		return
	}
	h.isProcessing = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			h.isProcessing = false
			h.mu.Unlock()
			log.Println("정보：[TriggerReportHandler] 수동 리포트 생성 goroutine 종료.")
		}()

		log.Println("정보：[TriggerReportHandler] 수동 리포트 생성 시작...")
		if err := h.runner.RunReportPipeline(); err != nil {
			log.Printf("오류：[TriggerReportHandler] 수동 리포트 생성 실패: %v", err)
		} else {
			log.Println("정보：[TriggerReportHandler] 수동 리포트 생성 성공.")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "리포트 생성이 시작되었습니다. 백그라운드에서 실행됩니다."})
}

package handlers

import (
	"TrendReport-admin/internal/models"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"
)

// RunLister 는 실행 이력 조회자가 갖춰야 할 메서드
type RunLister interface {
	ListRuns(limit int) ([]models.ReportRun, error)
}

// RunsHandler 는 리포트 실행 이력 조회 요청을 처리한다.
type RunsHandler struct {
	runs RunLister // nil 허용: 이력 저장이 꺼진 구성
}

// NewRunsHandler 는 RunsHandler 인스턴스를 만든다.
func NewRunsHandler(runs RunLister) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// runView 는 JSON 응답용 실행 이력 표현
type runView struct {
	ID           int64  `json:"id"`
	Month        string `json:"month"`
	OutputPath   string `json:"output_path"`
	Status       string `json:"status"`
	TagsResolved int    `json:"tags_resolved"`
	TagsFailed   int    `json:"tags_failed"`
	ErrorMessage string `json:"error_message,omitempty"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at,omitempty"`
}

// ServeHTTP 는 http.Handler 인터페이스 구현
func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("정보：[RunsHandler] 요청 수신: %s %s (from %s)\n", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodGet {
		http.Error(w, "GET 메서드만 지원합니다", http.StatusMethodNotAllowed)
		return
	}
	if h.runs == nil {
		http.Error(w, "실행 이력 저장이 비활성화되어 있습니다", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.runs.ListRuns(limit)
	if err != nil {
		log.Printf("오류：[RunsHandler] 실행 이력 조회 실패: %v", err)
		http.Error(w, "실행 이력을 조회할 수 없습니다", http.StatusInternalServerError)
		return
	}

	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		v := runView{
			ID:           run.ID,
			Month:        run.Month,
			OutputPath:   run.OutputPath,
			Status:       string(run.Status),
			TagsResolved: run.TagsResolved,
			TagsFailed:   run.TagsFailed,
			StartedAt:    run.StartedAt.Format(time.RFC3339),
		}
		if run.ErrorMessage.Valid {
			v.ErrorMessage = run.ErrorMessage.String
		}
		if run.FinishedAt.Valid {
			v.FinishedAt = run.FinishedAt.Time.Format(time.RFC3339)
		}
		views = append(views, v)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		log.Printf("오류：[RunsHandler] 응답 직렬화 실패: %v", err)
	}
}

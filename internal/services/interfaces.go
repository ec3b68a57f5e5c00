package services

import (
	"TrendReport-admin/internal/models"
	"context"
)

// TextGenerator 인터페이스는 생성형 텍스트 백엔드를 정의한다.
// 실제 구현은 clients/gemini 에 있고, 테스트는 가짜 구현을 쓴다.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// RunStore 인터페이스는 리포트 실행 이력 저장소를 정의한다.
type RunStore interface {
	CreateRun(run *models.ReportRun) (int64, error)
	UpdateRun(run *models.ReportRun) error
	ListRuns(limit int) ([]models.ReportRun, error)
}

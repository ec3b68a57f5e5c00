package models

import (
	"database/sql"
	"time"
)

// 리포트 실행 상태
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ReportRun 은 리포트 생성 1회 실행의 이력 레코드
type ReportRun struct {
	ID           int64
	Month        string
	TemplatePath string
	OutputPath   string
	Status       RunStatus
	TagsResolved int
	TagsFailed   int
	ErrorMessage sql.NullString
	StartedAt    time.Time
	FinishedAt   sql.NullTime
}

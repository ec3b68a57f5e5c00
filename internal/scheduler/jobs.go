package scheduler

import (
	"log"
)

// ReportJob 은 월간 리포트 생성을 수행하는 스케줄 작업
type ReportJob struct {
	run func() error
}

// NewReportJob 은 ReportJob 을 만든다. run 은 리포트 생성 1회의 전체
// 흐름(데이터 로드, 기상 분석, 생성)을 감싼 함수다.
func NewReportJob(run func() error) *ReportJob {
	return &ReportJob{run: run}
}

// Run 은 cron.Job 인터페이스 구현 (github.com/robfig/cron/v3)
func (j *ReportJob) Run() {
	log.Println("정보：스케줄 작업 실행 - 월간 리포트 생성...")
	if err := j.run(); err != nil {
		log.Printf("오류：리포트 생성 스케줄 작업 실패: %v", err)
	} else {
		log.Println("정보：리포트 생성 스케줄 작업 완료.")
	}
}

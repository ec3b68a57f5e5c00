package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler 는 리포트 생성 작업의 주기 실행을 담당한다.
type Scheduler struct {
	cron      *cron.Cron
	reportJob *ReportJob
}

// NewScheduler 는 Cron 표현식으로 리포트 작업을 등록한 스케줄러를 만든다.
func NewScheduler(reportJob *ReportJob, reportCronSpec string) *Scheduler {
	c := cron.New(cron.WithSeconds())

	if reportCronSpec != "" {
		if _, err := c.AddJob(reportCronSpec, reportJob); err != nil {
			log.Fatalf("오류：리포트 생성 작업을 스케줄러에 등록할 수 없습니다 (spec: %s): %v", reportCronSpec, err)
		}
		log.Printf("정보：리포트 생성 작업 등록 완료, 스케줄：%s\n", reportCronSpec)
	} else {
		log.Println("경고：리포트 생성 작업의 Cron 표현식이 없어 스케줄되지 않습니다.")
	}

	return &Scheduler{cron: c, reportJob: reportJob}
}

// Start 는 스케줄러를 비차단으로 시작한다.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("정보：스케줄러가 비차단으로 시작되었습니다.")
}

// Stop 은 실행 중인 작업의 완료를 기다리며 스케줄러를 멈춘다.
func (s *Scheduler) Stop() {
	log.Println("정보：스케줄러를 멈추는 중...")
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		log.Println("정보：스케줄러가 정상적으로 멈췄습니다. 실행 중이던 작업도 완료되었습니다.")
	case <-time.After(10 * time.Second):
		log.Println("경고：스케줄러 정지 대기 시간 초과. 작업이 아직 실행 중일 수 있습니다.")
	}
}

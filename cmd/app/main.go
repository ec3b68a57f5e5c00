package main

import (
	"TrendReport-admin/internal/clients/gemini"
	"TrendReport-admin/internal/clients/kma"
	"TrendReport-admin/internal/config"
	"TrendReport-admin/internal/models"
	"TrendReport-admin/internal/scheduler"
	"TrendReport-admin/internal/services"
	"TrendReport-admin/internal/storage/mysql"
	"TrendReport-admin/internal/web"
	"TrendReport-admin/internal/web/handlers"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// reportPipeline 은 리포트 생성 1회의 전체 흐름을 감싼다.
// 스케줄 작업과 수동 트리거 핸들러가 같은 경로를 쓴다.
type reportPipeline struct {
	cfg       *config.Config
	kmaClient *kma.Client // nil 허용: API 키 없는 구성
	reportSvc *services.ReportService
}

// RunReportPipeline 은 handlers.ReportPipelineRunner 인터페이스 구현
func (p *reportPipeline) RunReportPipeline() error {
	ctx := context.Background()

	records, err := services.LoadPhraseData(p.cfg.Report.PhraseDataPath)
	if err != nil {
		return err
	}

	var weather models.WeatherAnalysis
	if p.kmaClient != nil {
		weather = p.kmaClient.GetWeatherAnalysis(ctx, p.cfg.Report.Month)
	} else {
		log.Println("경고：기상청 클라이언트가 없어 기상 컨텍스트 없이 진행합니다.")
	}

	return p.reportSvc.GenerateReport(ctx, records, p.cfg.Report.Month, weather)
}

func runMigrations(dbCfg config.DatabaseConfig) {
	migrationPath := "file://scripts/migrate/mysql"
	dsn := fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
		dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.DBName)
	log.Printf("정보：데이터베이스 마이그레이션 실행 준비, 소스: %s, 대상 DB: %s", migrationPath, dbCfg.DBName)

	m, err := migrate.New(migrationPath, dsn)
	if err != nil {
		log.Fatalf("오류：마이그레이션 인스턴스 생성 실패: %v", err)
	}
	currentVersion, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Fatalf("오류：데이터베이스 마이그레이션 버전 조회 실패: %v", err)
	}
	if dirty {
		log.Fatalf("오류：데이터베이스가 dirty 상태입니다 (버전 %d). 마이그레이션을 중단합니다.", currentVersion)
	}
	log.Printf("정보：현재 데이터베이스 버전: %d. 마이그레이션 적용 시작...", currentVersion)
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("오류：데이터베이스 마이그레이션 (m.Up) 실패: %v", err)
	} else if err == migrate.ErrNoChange {
		log.Println("정보：데이터베이스 스키마가 이미 최신입니다.")
	} else {
		newVersion, _, _ := m.Version()
		log.Printf("정보：데이터베이스 마이그레이션 완료, 버전: %d.", newVersion)
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load("./configs", "config")
	if err != nil {
		log.Fatalf("오류：설정을 불러올 수 없습니다: %v", err)
	}
	log.Println("정보：애플리케이션 설정 로드 완료.")

	var runStore services.RunStore
	var runLister handlers.RunLister
	if cfg.Database.Enabled {
		runMigrations(cfg.Database)
		dbStore, err := mysql.NewMySQLStore(cfg.Database)
		if err != nil {
			log.Fatalf("오류：MySQL 데이터베이스 연결 초기화 실패: %v", err)
		}
		defer dbStore.Close()
		runStore = dbStore
		runLister = dbStore
	} else {
		log.Println("정보：실행 이력 저장이 비활성화되어 있습니다.")
	}

	geminiClient, err := gemini.NewClient(cfg.GeminiClient.APIKey, cfg.GeminiClient.Model)
	if err != nil {
		log.Fatalf("오류：Gemini 클라이언트 초기화 실패: %v", err)
	}

	var kmaClient *kma.Client
	if cfg.KMAClient.APIKey != "" {
		kmaClient, err = kma.NewClient(cfg.KMAClient)
		if err != nil {
			log.Fatalf("오류：기상청 클라이언트 초기화 실패: %v", err)
		}
	}

	textGenSvc, err := services.NewTextGenService(geminiClient, cfg.TagRoles)
	if err != nil {
		log.Fatalf("오류：텍스트 생성 서비스 초기화 실패: %v", err)
	}
	reportSvc, err := services.NewReportService(cfg, textGenSvc, services.NewChartService(), runStore)
	if err != nil {
		log.Fatalf("오류：리포트 서비스 초기화 실패: %v", err)
	}

	pipeline := &reportPipeline{cfg: cfg, kmaClient: kmaClient, reportSvc: reportSvc}

	if cfg.Scheduler.Enabled {
		log.Println("정보：스케줄러가 설정에서 활성화되어 초기화합니다...")
		reportJob := scheduler.NewReportJob(pipeline.RunReportPipeline)
		appScheduler := scheduler.NewScheduler(reportJob, cfg.Scheduler.ReportCronSpec)
		appScheduler.Start()
		defer appScheduler.Stop()
	} else {
		log.Println("정보：스케줄러가 설정에서 비활성화되어 있습니다.")
	}

	phraseLoader := func() ([]models.PhraseRecord, error) {
		return services.LoadPhraseData(cfg.Report.PhraseDataPath)
	}
	router := web.SetupRouter(pipeline, runLister, phraseLoader)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("정보：HTTP 서버가 %s 에서 수신 대기 중\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("오류：HTTP 서버 수신 실패: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("정보：종료 신호 수신, 애플리케이션을 종료합니다...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("오류：HTTP 서버 정상 종료 실패: %v", err)
	}
	log.Println("정보：HTTP 서버가 종료되었습니다.")
	log.Println("정보：애플리케이션이 정상 종료되었습니다.")
}

package main

import (
	"TrendReport-admin/internal/clients/gemini"
	"TrendReport-admin/internal/clients/kma"
	"TrendReport-admin/internal/config"
	"TrendReport-admin/internal/models"
	"TrendReport-admin/internal/services"
	"context"
	"flag"
	"log"
)

// 스케줄러나 서버 없이 리포트 1회 생성만 수행하는 커맨드
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "./configs", "설정 파일 디렉토리")
	month := flag.String("month", "", "대상 월 (예: 10월). 비우면 설정값 사용")
	template := flag.String("template", "", "템플릿 pptx 경로. 비우면 설정값 사용")
	output := flag.String("output", "", "출력 pptx 경로. 비우면 설정값 사용")
	flag.Parse()

	cfg, err := config.Load(*configPath, "config")
	if err != nil {
		log.Fatalf("오류：설정을 불러올 수 없습니다: %v", err)
	}
	if *month != "" {
		cfg.Report.Month = *month
	}
	if *template != "" {
		cfg.Report.TemplatePath = *template
	}
	if *output != "" {
		cfg.Report.OutputPath = *output
	}

	ctx := context.Background()

	records, err := services.LoadPhraseData(cfg.Report.PhraseDataPath)
	if err != nil {
		log.Fatalf("오류：프레이즈 데이터 로드 실패: %v", err)
	}

	var weather models.WeatherAnalysis
	if cfg.KMAClient.APIKey != "" {
		kmaClient, err := kma.NewClient(cfg.KMAClient)
		if err != nil {
			log.Fatalf("오류：기상청 클라이언트 초기화 실패: %v", err)
		}
		weather = kmaClient.GetWeatherAnalysis(ctx, cfg.Report.Month)
	} else {
		log.Println("경고：기상청 API 키가 없어 기상 컨텍스트 없이 진행합니다.")
	}

	geminiClient, err := gemini.NewClient(cfg.GeminiClient.APIKey, cfg.GeminiClient.Model)
	if err != nil {
		log.Fatalf("오류：Gemini 클라이언트 초기화 실패: %v", err)
	}
	textGenSvc, err := services.NewTextGenService(geminiClient, cfg.TagRoles)
	if err != nil {
		log.Fatalf("오류：텍스트 생성 서비스 초기화 실패: %v", err)
	}
	reportSvc, err := services.NewReportService(cfg, textGenSvc, services.NewChartService(), nil)
	if err != nil {
		log.Fatalf("오류：리포트 서비스 초기화 실패: %v", err)
	}

	if err := reportSvc.GenerateReport(ctx, records, cfg.Report.Month, weather); err != nil {
		log.Fatalf("오류：리포트 생성 실패: %v", err)
	}
}

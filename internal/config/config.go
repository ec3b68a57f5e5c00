package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ReportConfig 는 리포트 1회 생성에 필요한 입력/출력 경로와 대상 월
type ReportConfig struct {
	Month          string `mapstructure:"month"`
	TemplatePath   string `mapstructure:"templatePath"`
	OutputPath     string `mapstructure:"outputPath"`
	PhraseDataPath string `mapstructure:"phraseDataPath"`
	TagConfigPath  string `mapstructure:"tagConfigPath"`
}

// GeminiClientConfig 는 텍스트 생성 백엔드 설정
type GeminiClientConfig struct {
	APIKey string `mapstructure:"apiKey"`
	Model  string `mapstructure:"model"`
}

// KMAClientConfig 는 기상청 API 클라이언트 설정
type KMAClientConfig struct {
	APIKey       string `mapstructure:"apiKey"`
	StnID        string `mapstructure:"stnID"`
	BaseURL      string `mapstructure:"baseURL"`
	YearsBack    int    `mapstructure:"yearsBack"`
	CacheDir     string `mapstructure:"cacheDir"`
	ForceRefresh bool   `mapstructure:"forceRefresh"`
}

// TagRolesConfig 는 태그 이름과 역할의 결합.
// 템플릿에서 태그 이름을 바꾸면 여기만 고치면 된다.
type TagRolesConfig struct {
	// ProducerTags 는 슬라이드에서 먼저 처리되어 결과를 slide context 에
	// 기록하는 태그들: 태그 이름 -> context 키
	ProducerTags map[string]string `mapstructure:"producerTags"`
	// SkipTags 는 생성 호출 없이 건너뛰는 태그들
	SkipTags []string `mapstructure:"skipTags"`
	// DirectFormatTags 는 AI 호출 없이 prompt_template 변수 치환만으로 채우는 태그들
	DirectFormatTags []string `mapstructure:"directFormatTags"`
	// FormatPreservingTags 는 기존 첫 런의 서식을 유지한 채 텍스트만 교체하는 태그들
	FormatPreservingTags []string `mapstructure:"formatPreservingTags"`
	// FontSizeOverrideTags 는 서식 유지 후 설정의 font_size 를 덧입히는 태그들
	FontSizeOverrideTags []string `mapstructure:"fontSizeOverrideTags"`
	// InsightTags 는 노출/CTR 상위 프레이즈 비교 변수를 추가로 받는 태그들
	InsightTags []string `mapstructure:"insightTags"`
}

// DatabaseConfig 는 리포트 실행 이력 저장용 MySQL 설정
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
}

// SchedulerConfig 는 월간 자동 생성 스케줄 설정
type SchedulerConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ReportCronSpec string `mapstructure:"reportCronSpec"`
}

// ServerConfig 는 관리용 HTTP 서버 설정
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config 구조
type Config struct {
	AppName      string             `mapstructure:"appName"`
	Report       ReportConfig       `mapstructure:"report"`
	GeminiClient GeminiClientConfig `mapstructure:"geminiClient"`
	KMAClient    KMAClientConfig    `mapstructure:"kmaClient"`
	TagRoles     TagRolesConfig     `mapstructure:"tagRoles"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Server       ServerConfig       `mapstructure:"server"`
}

// Load 함수는 YAML 설정 파일과 환경 변수를 읽어 Config 를 만든다.
func Load(configPath string, configName string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 기본값 설정
	v.SetDefault("appName", "TrendReport-admin")
	v.SetDefault("report.month", "10월")
	v.SetDefault("report.tagConfigPath", "configs/tag_config.json")
	v.SetDefault("geminiClient.model", "gemini-2.5-flash-lite")
	v.SetDefault("kmaClient.stnID", "108") // 서울 지점번호
	v.SetDefault("kmaClient.baseURL", "https://apihub.kma.go.kr/api/typ01/url")
	v.SetDefault("kmaClient.yearsBack", 20)
	v.SetDefault("kmaClient.cacheDir", "data/weather")
	// 원본 템플릿이 쓰는 태그 이름들을 기본 역할 바인딩으로 둔다.
	v.SetDefault("tagRoles.producerTags", map[string]string{
		"KEYWORD1_AREA": "insight_title",
		"KEYWORD2_AREA": "insight_title2",
	})
	v.SetDefault("tagRoles.skipTags", []string{"ANALYSIS_AREA", "PRODUCT_AREA"})
	v.SetDefault("tagRoles.directFormatTags", []string{"TITLE_AREA", "SUBTITLE1_AREA"})
	v.SetDefault("tagRoles.formatPreservingTags", []string{"TITLE_AREA", "SUBTITLE1_AREA", "DESCRIPTION2_AREA"})
	v.SetDefault("tagRoles.fontSizeOverrideTags", []string{"SUBTITLE1_AREA", "DESCRIPTION2_AREA"})
	v.SetDefault("tagRoles.insightTags", []string{"INSIGHT1_AREA", "INSIGHT_TITLE_AREA"})
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("scheduler.enabled", false)
	// 매월 1일 오전 9시
	v.SetDefault("scheduler.reportCronSpec", "0 0 9 1 * *")
	v.SetDefault("server.addr", ":8080")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("경고：설정 파일을 찾을 수 없어 기본값과 환경 변수를 사용합니다.")
		} else {
			return nil, fmt.Errorf("설정 파일을 읽는 중 오류 발생: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("설정을 구조체로 해석할 수 없습니다: %w", err)
	}

	if cfg.GeminiClient.APIKey == "" {
		fmt.Println("경고：Gemini API Key 가 설정되지 않았습니다!")
	}
	if cfg.KMAClient.APIKey == "" {
		fmt.Println("경고：기상청 API Key 가 설정되지 않았습니다. 기상 컨텍스트 없이 진행됩니다.")
	}

	fmt.Println("정보：설정 로드 성공.")
	return &cfg, nil
}

// HasRole 은 태그 이름이 역할 목록에 포함되는지 확인하는 헬퍼
func HasRole(roles []string, tagName string) bool {
	for _, name := range roles {
		if name == tagName {
			return true
		}
	}
	return false
}

// Package kma 는 기상청 API 허브에서 월평균기온 통계를 가져와
// 과거 데이터와 비교 분석하는 클라이언트를 제공한다.
package kma

import (
	"TrendReport-admin/internal/config"
	"TrendReport-admin/internal/models"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	maxRetries = 3
	// 타임아웃/연결 실패 시 2초, 4초, 6초 간격으로 재시도
	retryBaseDelay = 2 * time.Second
	// API 서버 부하 방지를 위한 요청 간 대기
	defaultRequestDelay = 300 * time.Millisecond
	// 전체 수집 시작 연도
	firstDataYear = 2000
)

// Client 는 기상청 월별 기온 통계 클라이언트
type Client struct {
	apiKey       string
	stnID        string
	baseURL      string
	cacheDir     string
	yearsBack    int
	forceRefresh bool

	httpClient   *http.Client
	requestDelay time.Duration
	retryDelay   time.Duration
	now          func() time.Time
}

// NewClient 는 기상청 클라이언트 인스턴스를 만든다.
func NewClient(cfg config.KMAClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("기상청 API Key 가 비어 있습니다")
	}
	stnID := cfg.StnID
	if stnID == "" {
		stnID = "108" // 서울
		log.Printf("경고：[KMA Client] 지점번호가 없어 기본값을 사용합니다: %s\n", stnID)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://apihub.kma.go.kr/api/typ01/url"
	}
	yearsBack := cfg.YearsBack
	if yearsBack <= 0 {
		yearsBack = 20
	}
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join("data", "weather")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("기상 데이터 캐시 디렉토리 생성 실패: %w", err)
	}
	return &Client{
		apiKey:       cfg.APIKey,
		stnID:        stnID,
		baseURL:      strings.TrimRight(baseURL, "/"),
		cacheDir:     cacheDir,
		yearsBack:    yearsBack,
		forceRefresh: cfg.ForceRefresh,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		requestDelay: defaultRequestDelay,
		retryDelay:   retryBaseDelay,
		now:          time.Now,
	}, nil
}

func (c *Client) cacheFile() string {
	return filepath.Join(c.cacheDir, fmt.Sprintf("weather_data_stn%s.csv", c.stnID))
}

// FetchMonthlyTemp 는 특정 연/월의 월평균기온을 API 에서 가져온다.
// 타임아웃과 연결 수준의 실패만 재시도하고, HTTP 상태 오류와 파싱 실패는
// 즉시 실패로 처리한다.
func (c *Client) FetchMonthlyTemp(ctx context.Context, year int, month int) (*models.MonthlyTemp, error) {
	tm := fmt.Sprintf("%d%02d", year, month)
	url := fmt.Sprintf("%s/sts_ta.php?tm1=%s&tm2=%s&stn_id=%s&help=0&disp=1&authKey=%s",
		c.baseURL, tm, tm, c.stnID, c.apiKey)

	var body string
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("요청 생성 실패: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%d년 %d월 데이터 요청 취소: %w", year, month, ctx.Err())
			}
			if attempt < maxRetries {
				wait := time.Duration(attempt) * c.retryDelay
				log.Printf("경고：%d년 %d월 데이터 요청 실패 (시도 %d/%d), %s 후 재시도...\n",
					year, month, attempt, maxRetries, wait)
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, fmt.Errorf("%d년 %d월 데이터 요청 취소: %w", year, month, ctx.Err())
				}
				continue
			}
			return nil, fmt.Errorf("%d년 %d월 데이터 가져오기 실패: %w", year, month, lastErr)
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%d년 %d월 데이터 요청이 HTTP %d 로 실패했습니다", year, month, resp.StatusCode)
		}
		if readErr != nil {
			return nil, fmt.Errorf("%d년 %d월 응답 읽기 실패: %w", year, month, readErr)
		}
		body = string(data)
		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%d년 %d월 데이터 가져오기 실패: %w", year, month, lastErr)
	}

	record, err := parseMonthlyTemp(body)
	if err != nil {
		return nil, fmt.Errorf("%d년 %d월 데이터 파싱 실패: %w", year, month, err)
	}
	return record, nil
}

// parseMonthlyTemp 는 공백으로 구분된 2줄짜리 응답 표를 해석한다.
// 첫 줄은 헤더(# 접두사 허용), 둘째 줄은 값이며 열 수가 다르면 짧은 쪽에 맞춘다.
func parseMonthlyTemp(body string) (*models.MonthlyTemp, error) {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("응답에 데이터 행이 없습니다")
	}
	headerLine := strings.TrimSpace(lines[0])
	headerLine = strings.TrimSpace(strings.TrimPrefix(headerLine, "#"))
	header := strings.Fields(headerLine)
	values := strings.Fields(lines[1])
	if len(header) != len(values) {
		n := len(header)
		if len(values) < n {
			n = len(values)
		}
		header = header[:n]
		values = values[:n]
	}

	record := &models.MonthlyTemp{}
	foundTemp := false
	for i, col := range header {
		switch col {
		case "TM":
			record.TM = values[i]
		case "TA_MAVG":
			v, err := strconv.ParseFloat(values[i], 64)
			if err != nil {
				return nil, fmt.Errorf("TA_MAVG 값 '%s' 을 숫자로 해석할 수 없습니다: %w", values[i], err)
			}
			record.TAMavg = v
			foundTemp = true
		}
	}
	if record.TM == "" || !foundTemp {
		return nil, fmt.Errorf("TM / TA_MAVG 열을 찾을 수 없습니다")
	}
	return record, nil
}

// LoadOrFetchAll 은 CSV 캐시에서 전체 데이터를 읽거나, 캐시가 없으면
// 2000년 1월부터 현재까지 API 로 수집해 캐시에 저장한다.
func (c *Client) LoadOrFetchAll(ctx context.Context, forceRefresh bool) ([]models.MonthlyTemp, error) {
	if !forceRefresh {
		if records, err := c.readCache(); err == nil {
			log.Printf("정보：캐시에서 기상 데이터 로드: %d개 레코드\n", len(records))
			return records, nil
		} else if !os.IsNotExist(err) {
			log.Printf("경고：캐시 파일 읽기 실패: %v, API 에서 새로 가져옵니다.\n", err)
		}
	}

	log.Println("정보：API 에서 기상 데이터 수집 중... (처음 실행 시 시간이 걸릴 수 있습니다)")
	nowT := c.now()
	currentYear, currentMonth := nowT.Year(), int(nowT.Month())

	var records []models.MonthlyTemp
	attempts := 0
	for year := firstDataYear; year <= currentYear; year++ {
		for month := 1; month <= 12; month++ {
			if year == currentYear && month > currentMonth {
				break
			}
			attempts++
			record, err := c.FetchMonthlyTemp(ctx, year, month)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Printf("경고：%d년 %d월 데이터 수집 실패: %v\n", year, month, err)
			} else {
				records = append(records, *record)
			}
			if attempts%12 == 0 {
				log.Printf("정보：진행: %d개 월 요청 처리, %d개 수집 완료\n", attempts, len(records))
			}
			select {
			case <-time.After(c.requestDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := c.writeCache(records); err != nil {
		log.Printf("경고：기상 데이터 캐시 저장 실패: %v\n", err)
	} else {
		log.Printf("정보：기상 데이터 캐시 저장 완료: %s (%d개 레코드)\n", c.cacheFile(), len(records))
	}
	return records, nil
}

func (c *Client) readCache() ([]models.MonthlyTemp, error) {
	f, err := os.Open(c.cacheFile())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("캐시 CSV 해석 실패: %w", err)
	}
	var records []models.MonthlyTemp
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue // 헤더
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		records = append(records, models.MonthlyTemp{TM: row[0], TAMavg: v})
	}
	return records, nil
}

func (c *Client) writeCache(records []models.MonthlyTemp) error {
	f, err := os.Create(c.cacheFile())
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"TM", "TA_MAVG"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write([]string{r.TM, strconv.FormatFloat(r.TAMavg, 'f', -1, 64)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// HistoricalData 는 특정 월의 최근 N년치 기온 데이터만 골라낸다.
func (c *Client) HistoricalData(ctx context.Context, month int, yearsBack int, forceRefresh bool) ([]models.MonthlyTemp, error) {
	all, err := c.LoadOrFetchAll(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	suffix := fmt.Sprintf("%02d", month)
	minYear := c.now().Year() - yearsBack + 1
	var filtered []models.MonthlyTemp
	for _, r := range all {
		if !strings.HasSuffix(r.TM, suffix) || len(r.TM) < 6 {
			continue
		}
		year, err := strconv.Atoi(r.TM[:4])
		if err != nil {
			continue
		}
		if yearsBack > 0 && year < minYear {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// AnalyzeTemperature 는 현재 연/월 기온을 과거 N년 평균과 비교한다.
// 예년 평균은 별도의 30년 기준 자료가 없어 과거 평균과 같은 창으로 계산된다.
func (c *Client) AnalyzeTemperature(ctx context.Context, month int, currentYear int, yearsBack int) models.WeatherAnalysis {
	if currentYear == 0 {
		currentYear = c.now().Year()
	}
	result := models.WeatherAnalysis{CurrentYear: currentYear, Month: month}

	records, err := c.HistoricalData(ctx, month, yearsBack, c.forceRefresh)
	if err != nil || len(records) == 0 {
		result.Err = "데이터를 가져올 수 없습니다."
		if err != nil {
			result.Err = fmt.Sprintf("데이터를 가져올 수 없습니다: %v", err)
		}
		return result
	}

	sum := 0.0
	maxTemp := records[0].TAMavg
	minTemp := records[0].TAMavg
	currentTM := fmt.Sprintf("%d%02d", currentYear, month)
	currentTemp := 0.0
	found := false
	for _, r := range records {
		sum += r.TAMavg
		if r.TAMavg > maxTemp {
			maxTemp = r.TAMavg
		}
		if r.TAMavg < minTemp {
			minTemp = r.TAMavg
		}
		if r.TM == currentTM {
			currentTemp = r.TAMavg
			found = true
		}
	}
	historicalAvg := sum / float64(len(records))

	if !found {
		result.Err = fmt.Sprintf("%d년 %d월 데이터가 없습니다.", currentYear, month)
		result.HistoricalAvg = round1(historicalAvg)
		return result
	}

	normalAvg := historicalAvg
	diffFromAvg := currentTemp - historicalAvg
	diffFromNormal := currentTemp - normalAvg
	pctFromAvg := 0.0
	if historicalAvg != 0 {
		pctFromAvg = diffFromAvg / historicalAvg * 100
	}
	pctFromNormal := 0.0
	if normalAvg != 0 {
		pctFromNormal = diffFromNormal / normalAvg * 100
	}

	// 높은 기온 순 순위 (동률은 원래 순서 유지)
	sorted := make([]models.MonthlyTemp, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TAMavg > sorted[j].TAMavg })
	rank := 0
	for i, r := range sorted {
		if r.TM == currentTM {
			rank = i + 1
			break
		}
	}

	result.CurrentTemp = round1(currentTemp)
	result.HistoricalAvg = round1(historicalAvg)
	result.NormalAvg = round1(normalAvg)
	result.DiffFromAvg = round1(diffFromAvg)
	result.DiffFromNormal = round1(diffFromNormal)
	result.PctDiffFromAvg = round1(pctFromAvg)
	result.PctDiffFromNormal = round1(pctFromNormal)
	result.MaxTemp = round1(maxTemp)
	result.MinTemp = round1(minTemp)
	result.Rank = rank
	result.TotalYears = len(records)
	result.DataAvailable = true
	return result
}

// GetWeatherAnalysis 는 "10월" / "10" 형태의 월 문자열로 분석을 수행하는 편의 함수
func (c *Client) GetWeatherAnalysis(ctx context.Context, monthStr string) models.WeatherAnalysis {
	month, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(monthStr), "월")))
	if err != nil || month < 1 || month > 12 {
		return models.WeatherAnalysis{Err: fmt.Sprintf("월 문자열 '%s' 을 해석할 수 없습니다", monthStr)}
	}
	return c.AnalyzeTemperature(ctx, month, c.now().Year(), c.yearsBack)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

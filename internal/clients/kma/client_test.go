package kma

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"TrendReport-admin/internal/config"
	"TrendReport-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(config.KMAClientConfig{
		APIKey:   "test-key",
		StnID:    "108",
		BaseURL:  baseURL,
		CacheDir: t.TempDir(),
	})
	require.NoError(t, err)
	c.requestDelay = 0
	c.retryDelay = time.Millisecond
	c.now = func() time.Time { return time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestParseMonthlyTemp(t *testing.T) {
	t.Run("정상 응답", func(t *testing.T) {
		body := "# TM TA_MAVG TA_MAX\n202510 15.2 23.1\n"
		record, err := parseMonthlyTemp(body)
		require.NoError(t, err)
		assert.Equal(t, "202510", record.TM)
		assert.Equal(t, 15.2, record.TAMavg)
	})

	t.Run("헤더가 더 길면 짧은 쪽에 맞춘다", func(t *testing.T) {
		body := "TM TA_MAVG EXTRA1 EXTRA2\n202510 15.2\n"
		record, err := parseMonthlyTemp(body)
		require.NoError(t, err)
		assert.Equal(t, "202510", record.TM)
	})

	t.Run("데이터 행 없음", func(t *testing.T) {
		_, err := parseMonthlyTemp("# TM TA_MAVG\n")
		assert.Error(t, err)
	})

	t.Run("필수 열 없음", func(t *testing.T) {
		_, err := parseMonthlyTemp("# TM TA_MAX\n202510 23.1\n")
		assert.Error(t, err)
	})

	t.Run("숫자 아님", func(t *testing.T) {
		_, err := parseMonthlyTemp("# TM TA_MAVG\n202510 abc\n")
		assert.Error(t, err)
	})
}

func TestFetchMonthlyTemp(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, "# TM TA_MAVG\n202510 15.2\n")
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	record, err := c.FetchMonthlyTemp(context.Background(), 2025, 10)
	require.NoError(t, err)
	assert.Equal(t, "202510", record.TM)
	assert.Equal(t, 15.2, record.TAMavg)
	assert.Contains(t, gotQuery, "tm1=202510")
	assert.Contains(t, gotQuery, "tm2=202510")
	assert.Contains(t, gotQuery, "stn_id=108")
	assert.Contains(t, gotQuery, "authKey=test-key")
}

func TestFetchMonthlyTempHTTPErrorNoRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.FetchMonthlyTemp(context.Background(), 2025, 10)
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "HTTP 상태 오류는 재시도하지 않는다")
	assert.Contains(t, err.Error(), "HTTP 500")
}

type flakyTransport struct {
	failures int
	attempts int
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.attempts++
	if f.attempts <= f.failures {
		return nil, fmt.Errorf("connection refused")
	}
	return http.DefaultTransport.RoundTrip(r)
}

func TestFetchMonthlyTempRetriesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# TM TA_MAVG\n202510 15.2\n")
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	transport := &flakyTransport{failures: 2}
	c.httpClient = &http.Client{Transport: transport}

	record, err := c.FetchMonthlyTemp(context.Background(), 2025, 10)
	require.NoError(t, err)
	assert.Equal(t, 15.2, record.TAMavg)
	assert.Equal(t, 3, transport.attempts, "연결 실패 2회 후 3번째 시도에서 성공")
}

func TestFetchMonthlyTempGivesUpAfterMaxRetries(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	transport := &flakyTransport{failures: maxRetries}
	c.httpClient = &http.Client{Transport: transport}

	_, err := c.FetchMonthlyTemp(context.Background(), 2025, 10)
	require.Error(t, err)
	assert.Equal(t, maxRetries, transport.attempts)
	assert.Contains(t, err.Error(), "connection refused")
}

// writeTestCache 는 10월 데이터 위주의 캐시 CSV 를 만든다.
func writeTestCache(t *testing.T, c *Client, rows [][2]string) {
	t.Helper()
	var records []models.MonthlyTemp
	for _, row := range rows {
		var v float64
		_, err := fmt.Sscanf(row[1], "%f", &v)
		require.NoError(t, err)
		records = append(records, models.MonthlyTemp{TM: row[0], TAMavg: v})
	}
	require.NoError(t, c.writeCache(records))
}

func TestHistoricalDataFiltersMonthAndWindow(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	writeTestCache(t, c, [][2]string{
		{"200010", "14.0"}, // 2000년은 20년 창 밖
		{"202409", "21.0"}, // 다른 달
		{"202410", "16.0"},
		{"202510", "15.2"},
	})

	records, err := c.HistoricalData(context.Background(), 10, 20, false)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "202410", records[0].TM)
	assert.Equal(t, "202510", records[1].TM)
}

func TestAnalyzeTemperature(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	writeTestCache(t, c, [][2]string{
		{"202210", "14.0"},
		{"202310", "15.0"},
		{"202410", "16.0"},
		{"202510", "17.0"},
	})

	result := c.AnalyzeTemperature(context.Background(), 10, 2025, 20)
	require.True(t, result.DataAvailable)
	assert.Equal(t, 17.0, result.CurrentTemp)
	assert.Equal(t, 15.5, result.HistoricalAvg)
	assert.Equal(t, 15.5, result.NormalAvg)
	assert.Equal(t, 1.5, result.DiffFromAvg)
	assert.Equal(t, 9.7, result.PctDiffFromAvg)
	assert.Equal(t, 17.0, result.MaxTemp)
	assert.Equal(t, 14.0, result.MinTemp)
	assert.Equal(t, 1, result.Rank, "가장 더운 해")
	assert.Equal(t, 4, result.TotalYears)
}

func TestAnalyzeTemperatureMissingCurrentYear(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	writeTestCache(t, c, [][2]string{
		{"202310", "15.0"},
		{"202410", "16.0"},
	})

	result := c.AnalyzeTemperature(context.Background(), 10, 2025, 20)
	assert.False(t, result.DataAvailable)
	assert.NotEmpty(t, result.Err)
	assert.Equal(t, 15.5, result.HistoricalAvg, "과거 평균은 데이터 없이도 계산된다")
}

func TestGetWeatherAnalysisMonthParsing(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	writeTestCache(t, c, [][2]string{
		{"202510", "15.2"},
	})

	t.Run("한글 월 표기", func(t *testing.T) {
		result := c.GetWeatherAnalysis(context.Background(), "10월")
		assert.Equal(t, 10, result.Month)
	})
	t.Run("숫자만", func(t *testing.T) {
		result := c.GetWeatherAnalysis(context.Background(), "10")
		assert.Equal(t, 10, result.Month)
	})
	t.Run("잘못된 입력", func(t *testing.T) {
		result := c.GetWeatherAnalysis(context.Background(), "시월")
		assert.False(t, result.DataAvailable)
		assert.NotEmpty(t, result.Err)
	})
}

// echoServer 는 요청된 연월을 그대로 TM 으로 돌려주는 가짜 API 서버.
// failTM 과 일치하는 연월 요청은 HTTP 500 으로 응답한다.
func echoServer(t *testing.T, temp float64, failTM string) (*httptest.Server, *int) {
	t.Helper()
	requests := new(int)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		tm := r.URL.Query().Get("tm1")
		if failTM != "" && tm == failTM {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "# TM TA_MAVG\n%s %.1f\n", tm, temp)
	}))
	t.Cleanup(server.Close)
	return server, requests
}

func TestAnalyzeTemperatureForceRefreshBypassesCache(t *testing.T) {
	server, requests := echoServer(t, 15.2, "")
	c := newTestClient(t, server.URL)
	c.forceRefresh = true
	c.now = func() time.Time { return time.Date(2001, 10, 15, 0, 0, 0, 0, time.UTC) }

	// 캐시에는 낡은 값이 들어 있다. 강제 새로고침이면 무시돼야 한다.
	writeTestCache(t, c, [][2]string{
		{"200010", "10.0"},
		{"200110", "10.0"},
	})

	result := c.GetWeatherAnalysis(context.Background(), "10월")
	require.True(t, result.DataAvailable)
	assert.Equal(t, 15.2, result.CurrentTemp, "캐시의 낡은 10.0 이 아니라 API 값이어야 한다")
	assert.Greater(t, *requests, 0, "강제 새로고침이면 API 를 호출해야 한다")

	// 새로 받은 값으로 캐시도 갱신된다.
	cached, err := c.readCache()
	require.NoError(t, err)
	for _, r := range cached {
		assert.Equal(t, 15.2, r.TAMavg)
	}
}

func TestLoadOrFetchAllProgressLogCadence(t *testing.T) {
	server, _ := echoServer(t, 15.2, "200001")
	c := newTestClient(t, server.URL)
	c.now = func() time.Time { return time.Date(2001, 12, 15, 0, 0, 0, 0, time.UTC) }

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	records, err := c.LoadOrFetchAll(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, records, 23, "24개월 중 1개월 실패")
	// 진행 로그는 수집 성공 수가 아니라 요청 수 기준으로 12건마다 찍힌다.
	assert.Equal(t, 2, strings.Count(buf.String(), "진행:"))
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	records := []models.MonthlyTemp{
		{TM: "202509", TAMavg: 22.3},
		{TM: "202510", TAMavg: 15.2},
	}
	require.NoError(t, c.writeCache(records))

	// 캐시 파일이 실제로 생겼는지 확인
	_, err := os.Stat(filepath.Join(filepath.Dir(c.cacheFile()), "weather_data_stn108.csv"))
	require.NoError(t, err)

	got, err := c.readCache()
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

package models

// MonthlyTemp 는 기상청 월별 통계의 한 행 (TM: YYYYMM, TAMavg: 월평균기온)
type MonthlyTemp struct {
	TM     string
	TAMavg float64
}

// WeatherAnalysis 는 특정 연/월 기온을 과거 데이터와 비교한 분석 결과.
// DataAvailable 이 false 면 Err 만 유효하고 수치 필드는 모두 무시해야 한다.
type WeatherAnalysis struct {
	CurrentYear int
	Month       int

	CurrentTemp       float64
	HistoricalAvg     float64
	NormalAvg         float64
	DiffFromAvg       float64
	DiffFromNormal    float64
	PctDiffFromAvg    float64
	PctDiffFromNormal float64
	MaxTemp           float64
	MinTemp           float64
	Rank              int
	TotalYears        int

	DataAvailable bool
	Err           string
}

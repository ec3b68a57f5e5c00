package services

import (
	"TrendReport-admin/internal/deck"
	"TrendReport-admin/internal/models"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"strings"
)

// 버블 배치 난수 시드. 같은 입력이면 실행마다 같은 레이아웃이 나와야 한다.
const bubbleLayoutSeed = 42

// 그라데이션 양끝 색 (하늘색 → 보라색)
var (
	gradientLow  = [3]uint8{135, 206, 250}
	gradientHigh = [3]uint8{138, 43, 226}
)

// Bubble 은 버블 하나의 배치/표현 정보. 좌표는 0~6 정규화 박스 기준이다.
type Bubble struct {
	Phrase     string
	Label      string
	X, Y       float64
	Size       float64 // 10~100 정규화 크기
	DiameterIn float64 // 인치
	FontPt     float64
	Fill       [3]uint8
	LabelColor [3]uint8
}

// metricValue 는 지표 이름(영문/한글 별칭 모두 허용)으로 레코드 값을 꺼낸다.
func metricValue(r models.PhraseRecord, metric string) float64 {
	switch metric {
	case "impressions", "총 노출":
		return r.TotalImpressions
	case "clicks", "총 클릭":
		return r.TotalClicks
	case "ctr", "평균 CTR":
		return r.AvgCTR
	default:
		return r.TotalImpressions
	}
}

func isCTRMetric(metric string) bool {
	return metric == "ctr" || metric == "평균 CTR"
}

// ComputeBubbleLayout 은 상위 프레이즈의 원형 버블 배치를 계산한다.
// 반환 순서는 그리기 순서(큰 버블 먼저)다. 선택된 집합이 비면 nil.
func ComputeBubbleLayout(records []models.PhraseRecord, metric string, colorMetric string, topN int) []Bubble {
	if topN <= 0 {
		topN = 10
	}
	if metric == "" {
		metric = "총 노출"
	}
	selected := topBy(FilterNoise(records), topN, func(r models.PhraseRecord) float64 {
		return metricValue(r, metric)
	})
	n := len(selected)
	if n == 0 {
		return nil
	}

	// 크기 정규화 [10,100]; 전부 같은 값이면 중간 크기로 고정해 0 나누기를 피한다.
	sizes := make([]float64, n)
	minVal, maxVal := metricValue(selected[0], metric), metricValue(selected[0], metric)
	for _, r := range selected {
		v := metricValue(r, metric)
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	for i, r := range selected {
		if maxVal == minVal {
			sizes[i] = 50
		} else {
			sizes[i] = 10 + (metricValue(r, metric)-minVal)/(maxVal-minVal)*90
		}
	}

	// 색상 지표: 지정 없으면 CTR, CTR 도 의미 없으면 크기 지표를 그대로 쓴다.
	if colorMetric == "" {
		colorMetric = "평균 CTR"
	}
	colorMin, colorMax := metricValue(selected[0], colorMetric), metricValue(selected[0], colorMetric)
	for _, r := range selected {
		v := metricValue(r, colorMetric)
		if v < colorMin {
			colorMin = v
		}
		if v > colorMax {
			colorMax = v
		}
	}

	// 원형 배치: 균등 각도 + 시드 고정 반경 지터, 이후 0~6 박스로 재정규화
	rng := rand.New(rand.NewSource(bubbleLayoutSeed))
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		radius := 0.4 + rng.Float64()*0.5
		xs[i] = math.Cos(angle) * radius
		ys[i] = math.Sin(angle) * radius
	}
	rescale(xs, 6.0, 3.0)
	rescale(ys, 6.0, 3.0)

	bubbles := make([]Bubble, n)
	for i, r := range selected {
		diameter := 0.7 + (sizes[i]-10)/90*1.1
		fontPt := math.Floor(diameter * 8)
		if fontPt < 9 {
			fontPt = 9
		}
		if fontPt > 18 {
			fontPt = 18
		}
		fill := gradientColor(metricValue(r, colorMetric), colorMin, colorMax)
		bubbles[i] = Bubble{
			Phrase:     r.Phrase,
			Label:      bubbleLabel(r, metric),
			X:          xs[i],
			Y:          ys[i],
			Size:       sizes[i],
			DiameterIn: diameter,
			FontPt:     fontPt,
			Fill:       fill,
			LabelColor: labelColorFor(fill),
		}
	}

	// 큰 버블을 먼저 그려야 작은 버블이 위에 보인다.
	sort.SliceStable(bubbles, func(i, j int) bool { return bubbles[i].Size > bubbles[j].Size })
	return bubbles
}

func rescale(values []float64, coordRange, coordCenter float64) {
	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV == minV {
		return
	}
	for i, v := range values {
		values[i] = coordCenter - coordRange/2 + (v-minV)/(maxV-minV)*coordRange
	}
}

func gradientColor(value, minVal, maxVal float64) [3]uint8 {
	ratio := 0.5
	if maxVal != minVal {
		ratio = (value - minVal) / (maxVal - minVal)
	}
	var c [3]uint8
	for i := 0; i < 3; i++ {
		c[i] = uint8(float64(gradientLow[i]) + (float64(gradientHigh[i])-float64(gradientLow[i]))*ratio)
	}
	return c
}

// labelColorFor 는 배경 밝기에 따라 흰색/검은색 글자색을 고른다.
func labelColorFor(fill [3]uint8) [3]uint8 {
	luminance := 0.2126*float64(fill[0]) + 0.7152*float64(fill[1]) + 0.0722*float64(fill[2])
	if luminance < 140 {
		return [3]uint8{255, 255, 255}
	}
	return [3]uint8{0, 0, 0}
}

// bubbleLabel 은 프레이즈와 지표 값을 두 줄 레이블로 만든다.
// 긴 프레이즈는 가운뎃점(·)을 우선으로, 없으면 중간 지점에서 줄을 바꾼다.
func bubbleLabel(r models.PhraseRecord, metric string) string {
	phrase := r.Phrase
	runes := []rune(phrase)
	if len(runes) > 15 {
		if idx := strings.Index(phrase, "·"); idx >= 0 {
			phrase = phrase[:idx] + "\n·" + phrase[idx+len("·"):]
		} else if len(runes) > 20 {
			mid := len(runes) / 2
			phrase = string(runes[:mid]) + "\n" + string(runes[mid:])
		}
	}

	var valueText string
	if isCTRMetric(metric) {
		valueText = fmt.Sprintf("%.1f%%", metricValue(r, metric))
	} else {
		valueText = groupThousands(int64(metricValue(r, metric)))
	}
	return phrase + "\n" + valueText
}

func groupThousands(v int64) string {
	s := fmt.Sprintf("%d", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

// ChartService 는 차트 태그를 슬라이드에 직접 그린다.
type ChartService struct{}

// NewChartService 는 ChartService 인스턴스를 만든다.
func NewChartService() *ChartService {
	return &ChartService{}
}

// CreateChartForTag 는 태그 설정에 맞는 차트를 슬라이드에 삽입한다.
// 지원하지 않는 차트 종류는 해당 호출만 실패한다.
func (s *ChartService) CreateChartForTag(
	slide *deck.Slide,
	tagName string,
	records []models.PhraseRecord,
	settings models.TagSettings,
) error {
	kind := settings.EffectiveChartKind()
	if kind != "bubble" {
		return fmt.Errorf("지원하지 않는 차트 타입: %s", kind)
	}
	markerText := fmt.Sprintf("{{%s}}", tagName)
	return s.InsertBubbleChart(slide, records, settings, markerText)
}

// InsertBubbleChart 는 버블 차트를 도형으로 직접 그린다.
// 마커 도형을 찾으면 그 영역을 쓰고 제거하며, 없으면 기본 영역을 쓴다.
func (s *ChartService) InsertBubbleChart(
	slide *deck.Slide,
	records []models.PhraseRecord,
	settings models.TagSettings,
	markerText string,
) error {
	metric := settings.Metric
	if metric == "" {
		metric = "총 노출"
	}
	bubbles := ComputeBubbleLayout(records, metric, settings.ColorMetric, settings.TopN)
	if len(bubbles) == 0 {
		log.Println("경고：표시할 차트 데이터가 없습니다.")
		return nil
	}

	chartLeft := deck.Inches(0.5)
	chartTop := deck.Inches(1.5)
	chartWidth := deck.Inches(9.0)
	chartHeight := deck.Inches(5.5)
	if marker := findChartMarker(slide, markerText); marker != nil {
		if left, top, width, height, ok := marker.Frame(); ok {
			chartLeft, chartTop, chartWidth, chartHeight = left, top, width, height
			log.Printf("정보：차트 영역 마커 발견: %s\n", markerText)
		}
		slide.RemoveShape(marker)
	} else {
		log.Println("경고：차트 마커를 찾지 못해 기본 위치를 사용합니다.")
	}

	for _, b := range bubbles {
		// 정규화 좌표(0~6)를 차트 영역 캔버스로 변환. 문서 좌표는 좌상단 원점.
		cx := float64(chartLeft) + float64(chartWidth)*((b.X+2)/10.0)
		cy := float64(chartTop) + float64(chartHeight)*(1.0-((b.Y+2)/10.0))
		d := deck.Inches(b.DiameterIn)
		left := deck.EMU(cx) - d/2
		top := deck.EMU(cy) - d/2

		oval := slide.AddOval(left, top, d, d)
		oval.SetFill(b.Fill[0], b.Fill[1], b.Fill[2])
		oval.SetLine(255, 255, 255, 0.75)

		tf := oval.TextFrame()
		tf.SetWordWrap(true)
		margin := deck.Inches(0.05)
		tf.SetMargins(margin, margin, margin, margin)
		tf.SetText(b.Label)
		for _, p := range tf.Paragraphs() {
			p.SetAlignment("ctr")
			for _, run := range p.Runs() {
				run.SetFontSize(b.FontPt)
				run.SetBold(false)
				run.SetColor(b.LabelColor[0], b.LabelColor[1], b.LabelColor[2])
			}
		}
	}
	log.Printf("정보：버블 차트 생성 완료: %d개 버블\n", len(bubbles))
	return nil
}

func findChartMarker(slide *deck.Slide, markerText string) *deck.Shape {
	for _, shape := range slide.Shapes() {
		if tf := shape.TextFrame(); tf != nil && strings.Contains(tf.Text(), markerText) {
			return shape
		}
		if strings.Contains(shape.Name(), markerText) {
			return shape
		}
	}
	return nil
}

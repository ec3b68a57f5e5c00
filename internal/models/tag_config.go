package models

import "encoding/json"

// 태그 타입 상수
const (
	TagTypeText      = "text"
	TagTypeList      = "list"
	TagTypeChart     = "chart"
	TagTypeAsset     = "asset"
	TagTypeComposite = "composite"
)

// LengthGuideline 은 생성 텍스트 길이에 대한 권고 사항.
// 여기서 강제하지 않고 프롬프트 말미에 문구로만 전달한다.
type LengthGuideline struct {
	CharsMax    int `json:"chars_max,omitempty"`
	CharsApprox int `json:"chars_approx,omitempty"`
	Lines       int `json:"lines,omitempty"`
	LinesMax    int `json:"lines_max,omitempty"`
}

// IsZero 는 설정된 항목이 하나도 없는지 여부
func (g LengthGuideline) IsZero() bool {
	return g.CharsMax == 0 && g.CharsApprox == 0 && g.Lines == 0 && g.LinesMax == 0
}

// TagSettings 는 태그 하나에 대한 설정. tag_config.json 의 항목 하나에 대응한다.
type TagSettings struct {
	Type            string          `json:"type,omitempty"`
	PromptTemplate  string          `json:"prompt_template,omitempty"`
	LengthGuideline LengthGuideline `json:"length_guideline,omitempty"`

	// 차트 태그 전용
	ChartKind   string `json:"chart_kind,omitempty"`
	ChartType   string `json:"chart_type,omitempty"` // chart_kind 의 구형 별칭
	Metric      string `json:"metric,omitempty"`
	ColorMetric string `json:"color_metric,omitempty"`
	TopN        int    `json:"top_n,omitempty"`

	// 텍스트 스타일
	Alignment string  `json:"alignment,omitempty"`
	FontSize  float64 `json:"font_size,omitempty"`
	FontBold  *bool   `json:"font_bold,omitempty"`
	FontColor []uint8 `json:"font_color,omitempty"`
}

// EffectiveType 은 설정이 없을 때 text 로 기본 처리
func (s TagSettings) EffectiveType() string {
	if s.Type == "" {
		return TagTypeText
	}
	return s.Type
}

// EffectiveChartKind 는 chart_kind 와 구형 chart_type 둘 다 수용하고 기본값은 bubble
func (s TagSettings) EffectiveChartKind() string {
	if s.ChartKind != "" {
		return s.ChartKind
	}
	if s.ChartType != "" {
		return s.ChartType
	}
	return "bubble"
}

// TagConfig 는 태그 이름으로 설정을 찾는 매핑. 한 번 로드되면 불변으로 다룬다.
type TagConfig map[string]TagSettings

// Get 은 설정이 없는 태그에 대해 zero 값 설정을 돌려준다.
func (c TagConfig) Get(tagName string) TagSettings {
	if c == nil {
		return TagSettings{}
	}
	return c[tagName]
}

// ParseTagConfig 는 tag_config.json 바이트를 TagConfig 로 해석한다.
func ParseTagConfig(data []byte) (TagConfig, error) {
	var cfg TagConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

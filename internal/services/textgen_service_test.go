package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"TrendReport-admin/internal/config"
	"TrendReport-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator 는 받은 프롬프트를 기록하고 준비된 응답을 차례로 돌려준다.
type fakeGenerator struct {
	prompts   []string
	responses []string
	err       error
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "생성된 텍스트", nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func testRoles() config.TagRolesConfig {
	return config.TagRolesConfig{
		InsightTags: []string{"INSIGHT1_AREA", "INSIGHT_TITLE_AREA"},
	}
}

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"헤딩 제거", "## 제목\n본문", "제목\n본문"},
		{"굵은 글씨", "**강조** 텍스트", "강조 텍스트"},
		{"밑줄 굵은 글씨", "__강조__ 텍스트", "강조 텍스트"},
		{"기울임", "*기울임*과 _밑줄_", "기울임과 밑줄"},
		{"공백 정리", "  본문  \n", "본문"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanMarkdown(tt.in))
		})
	}
}

func TestTrimSurroundingQuotes(t *testing.T) {
	assert.Equal(t, "타이틀", trimSurroundingQuotes(`"타이틀"`))
	assert.Equal(t, "타이틀", trimSurroundingQuotes("“타이틀”"))
	assert.Equal(t, "내부 \"따옴표\" 유지", trimSurroundingQuotes("내부 \"따옴표\" 유지"))
}

func TestGenerateForTagBuildsPrompt(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"**생성 결과**"}}
	svc, err := NewTextGenService(gen, testRoles())
	require.NoError(t, err)

	settings := models.TagSettings{
		PromptTemplate:  "{month} 트렌드를 설명해주세요.",
		LengthGuideline: models.LengthGuideline{CharsMax: 100},
	}
	got, err := svc.GenerateForTag(context.Background(), "DESCRIPTION1_AREA", nil, "10월", settings, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "생성 결과", got, "마크다운이 제거돼야 한다")

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "10월 트렌드를 설명해주세요.")
	assert.Contains(t, prompt, "길이 제한: 최대 100자")
	assert.Contains(t, prompt, "반드시 한국어로만 작성하세요")
}

func TestGenerateForTagInsightTitleCached(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`"시즌 전환기의 니즈"`, "본문1", "본문2"}}
	svc, err := NewTextGenService(gen, testRoles())
	require.NoError(t, err)

	records := []models.PhraseRecord{
		record("노출왕", 100, 10, 1),
		record("클릭왕", 10, 9, 90),
	}
	slideCtx := map[string]any{}
	settings := models.TagSettings{PromptTemplate: "제목: {insight_title}"}

	got, err := svc.GenerateForTag(context.Background(), "INSIGHT1_AREA", records, "10월", settings, slideCtx)
	require.NoError(t, err)
	assert.Equal(t, "본문1", got)
	assert.Equal(t, "시즌 전환기의 니즈", slideCtx["insight_title"], "따옴표가 제거된 타이틀이 캐시돼야 한다")
	assert.Len(t, gen.prompts, 2, "타이틀 1회 + 본문 1회")
	assert.Contains(t, gen.prompts[1], "제목: 시즌 전환기의 니즈")

	// 같은 슬라이드의 두 번째 인사이트 태그는 타이틀을 재생성하지 않는다.
	_, err = svc.GenerateForTag(context.Background(), "INSIGHT_TITLE_AREA", records, "10월", settings, slideCtx)
	require.NoError(t, err)
	assert.Len(t, gen.prompts, 3)
}

func TestGenerateForTagInsightWithoutData(t *testing.T) {
	// 비교 변수가 없으면 타이틀 생성을 건너뛰고 본문만 생성한다.
	gen := &fakeGenerator{responses: []string{"본문"}}
	svc, err := NewTextGenService(gen, testRoles())
	require.NoError(t, err)

	slideCtx := map[string]any{}
	_, err = svc.GenerateForTag(context.Background(), "INSIGHT1_AREA", nil, "10월", models.TagSettings{PromptTemplate: "p"}, slideCtx)
	require.NoError(t, err)
	assert.Len(t, gen.prompts, 1)
	assert.NotContains(t, slideCtx, "insight_title")
}

func TestGenerateForTagBackendError(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("quota exceeded")}
	svc, err := NewTextGenService(gen, testRoles())
	require.NoError(t, err)

	_, err = svc.GenerateForTag(context.Background(), "DESCRIPTION1_AREA", nil, "10월", models.TagSettings{PromptTemplate: "p"}, map[string]any{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "DESCRIPTION1_AREA"))
}

func TestNewTextGenServiceNilGenerator(t *testing.T) {
	_, err := NewTextGenService(nil, testRoles())
	assert.Error(t, err)
}

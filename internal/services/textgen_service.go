package services

import (
	"TrendReport-admin/internal/config"
	"TrendReport-admin/internal/models"
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
)

var (
	headingPattern    = regexp.MustCompile(`(?m)^#+\s*`)
	boldStarPattern   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnderPattern  = regexp.MustCompile(`__([^_]+)__`)
	italicStarPattern = regexp.MustCompile(`\*([^*]+)\*`)
	// 밑줄 강조 제거는 본문 속 일반 밑줄과 구분하지 않는다.
	italicUnderPattern = regexp.MustCompile(`_([^_]+)_`)
)

// CleanMarkdown 은 생성 결과에서 마크다운 문법을 걷어낸다.
func CleanMarkdown(text string) string {
	text = headingPattern.ReplaceAllString(text, "")
	text = boldStarPattern.ReplaceAllString(text, "$1")
	text = boldUnderPattern.ReplaceAllString(text, "$1")
	text = italicStarPattern.ReplaceAllString(text, "$1")
	text = italicUnderPattern.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// trimSurroundingQuotes 는 양끝의 따옴표(곧은/굽은)를 제거한다.
func trimSurroundingQuotes(text string) string {
	return strings.Trim(text, `"'` + "“”‘’")
}

// TextGenService 는 태그별 프롬프트 조립과 텍스트 생성을 담당한다.
type TextGenService struct {
	generator   TextGenerator
	insightTags []string
}

// NewTextGenService 는 TextGenService 인스턴스를 만든다.
func NewTextGenService(generator TextGenerator, roles config.TagRolesConfig) (*TextGenService, error) {
	if generator == nil {
		return nil, fmt.Errorf("TextGenService：생성 백엔드가 비어 있습니다")
	}
	return &TextGenService{generator: generator, insightTags: roles.InsightTags}, nil
}

// GenerateForTag 는 태그에 맞는 텍스트를 생성한다. 백엔드 실패는
// 재시도 없이 그대로 전달되고, 태그 단위 처리 여부는 호출자가 결정한다.
func (s *TextGenService) GenerateForTag(
	ctx context.Context,
	tagName string,
	records []models.PhraseRecord,
	month string,
	settings models.TagSettings,
	slideCtx map[string]any,
) (string, error) {
	// 인사이트 태그는 본 프롬프트가 타이틀을 참조하므로,
	// slide context 에 타이틀이 없으면 먼저 만들어 캐시한다.
	if s.isInsightTag(tagName) {
		if err := s.ensureInsightTitle(ctx, tagName, records, month, settings, slideCtx); err != nil {
			return "", err
		}
	}

	prompt, _ := BuildPrompt(tagName, records, month, settings, slideCtx, s.insightTags)
	prompt = AppendLengthGuideline(prompt, settings.LengthGuideline)
	prompt = AppendLanguageDirective(prompt)

	log.Printf("정보：텍스트 생성 중: %s\n", tagName)
	raw, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("텍스트 생성 실패 (%s): %w", tagName, err)
	}
	return CleanMarkdown(raw), nil
}

func (s *TextGenService) isInsightTag(tagName string) bool {
	for _, name := range s.insightTags {
		if name == tagName {
			return true
		}
	}
	return false
}

// ensureInsightTitle 은 노출/CTR 상위 프레이즈 목록으로 인사이트 타이틀을
// 생성해 slide context 에 캐시한다. 이미 있으면 아무것도 하지 않으므로
// 같은 슬라이드의 뒤 태그들은 캐시된 값을 본다.
func (s *TextGenService) ensureInsightTitle(
	ctx context.Context,
	tagName string,
	records []models.PhraseRecord,
	month string,
	settings models.TagSettings,
	slideCtx map[string]any,
) error {
	if slideCtx == nil {
		return nil
	}
	if title, ok := slideCtx[insightTitleKey].(string); ok && title != "" {
		return nil
	}

	vars := BuildPromptVars(tagName, records, month, slideCtx, s.insightTags)
	exposure, okExposure := vars["exposure_phrases"].([]string)
	ctr, okCTR := vars["ctr_phrases"].([]string)
	if !okExposure || !okCTR {
		return nil
	}

	prompt := buildInsightTitlePrompt(month, exposure, ctr)
	log.Println("정보：인사이트 타이틀 생성 중...")
	raw, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return fmt.Errorf("인사이트 타이틀 생성 실패: %w", err)
	}
	title := trimSurroundingQuotes(CleanMarkdown(raw))
	slideCtx[insightTitleKey] = title
	log.Printf("정보：인사이트 타이틀 생성 완료: %s\n", title)
	return nil
}

func buildInsightTitlePrompt(month string, exposurePhrases []string, ctrPhrases []string) string {
	return fmt.Sprintf(`다음은 %s 트렌드 리포트에서 발견된 데이터입니다:

전체적으로 노출수가 높았던 상위 5개 프레이즈:
%s

고객들이 특히 관심을 보인(CTR이 높은) 상위 5개 프레이즈:
%s

이 데이터를 바탕으로 트렌드 리포트의 핵심 인사이트를 하나 제시하는 타이틀을 작성해주세요.

작성 가이드:
1. 노출수 상위 프레이즈와 CTR 상위 프레이즈를 비교 분석하여 발견한 핵심 인사이트를 한 문장으로 표현
2. 고객들의 특별한 니즈나 트렌드를 드러내는 인사이트여야 함
3. 타이틀 형식으로 작성
4. 15-25자 정도의 간결한 타이틀
5. %s의 계절적 특성도 고려

절대 금지사항:
- 수치 데이터(노출수, CTR, %% 등)를 직접 언급하지 마세요
- 마크다운 문법(##, ** 등)은 사용하지 말고 순수 텍스트로만 작성
- 옵션을 제시하지 말고 바로 타이틀만 작성
- 설명이나 부연 설명 없이 타이틀만 작성

중요: 타이틀만 작성해주세요. 설명이나 부연 설명은 포함하지 마세요.`,
		month, strings.Join(exposurePhrases, ", "), strings.Join(ctrPhrases, ", "), month)
}

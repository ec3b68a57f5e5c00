package services

import (
	"TrendReport-admin/internal/config"
	"TrendReport-admin/internal/deck"
	"TrendReport-admin/internal/models"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"time"
)

// 슬라이드 안에서 태그 자리표시를 찾는 패턴: {{TAG_NAME}}
var tagScanPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// TagOccurrence 는 슬라이드에서 발견된 태그 자리표시 하나.
// 태그는 도형 이름과 텍스트 양쪽 채널에 올 수 있고 서로 독립적으로 처리된다.
type TagOccurrence struct {
	Tag          string
	Shape        *deck.Shape
	Channel      string // "name" 또는 "text"
	OriginalText string
}

// findTagsInSlide 는 슬라이드의 모든 태그 자리표시를 발견 순서대로 나열한다.
func findTagsInSlide(slide *deck.Slide) []TagOccurrence {
	var found []TagOccurrence
	for _, shape := range slide.Shapes() {
		for _, m := range tagScanPattern.FindAllStringSubmatch(shape.Name(), -1) {
			found = append(found, TagOccurrence{Tag: m[1], Shape: shape, Channel: "name"})
		}
		if tf := shape.TextFrame(); tf != nil {
			text := tf.Text()
			for _, m := range tagScanPattern.FindAllStringSubmatch(text, -1) {
				found = append(found, TagOccurrence{Tag: m[1], Shape: shape, Channel: "text", OriginalText: text})
			}
		}
	}
	return found
}

// ReportService 는 템플릿을 열어 태그를 해석하고 완성본을 저장하는 전체 흐름을 담당한다.
type ReportService struct {
	cfg     *config.Config
	textGen *TextGenService
	charts  *ChartService
	runs    RunStore // nil 허용: 이력 저장 없이 동작
}

// NewReportService 는 ReportService 인스턴스를 만든다. runs 는 nil 일 수 있다.
func NewReportService(cfg *config.Config, textGen *TextGenService, charts *ChartService, runs RunStore) (*ReportService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ReportService：설정이 비어 있습니다")
	}
	if textGen == nil {
		return nil, fmt.Errorf("ReportService：TextGenService 가 비어 있습니다")
	}
	if charts == nil {
		charts = NewChartService()
	}
	return &ReportService{cfg: cfg, textGen: textGen, charts: charts, runs: runs}, nil
}

// LoadTagConfig 는 태그 설정 파일을 읽는다. 파일이 없으면 경고만 남기고
// 빈 설정으로 진행한다. 설정 없는 태그는 zero 값 설정으로 처리된다.
func LoadTagConfig(path string) (models.TagConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("경고：태그 설정 파일이 없습니다: %s. 빈 설정으로 진행합니다.\n", path)
			return models.TagConfig{}, nil
		}
		return nil, fmt.Errorf("태그 설정 '%s' 읽기 실패: %w", path, err)
	}
	cfg, err := models.ParseTagConfig(data)
	if err != nil {
		return nil, fmt.Errorf("태그 설정 '%s' 해석 실패: %w", path, err)
	}
	log.Printf("정보：태그 설정 로드 완료: %d개 태그 (%s)\n", len(cfg), path)
	return cfg, nil
}

// GenerateReport 는 리포트 생성 1회를 수행한다. 태그 단위 실패는 해당
// 태그만 건너뛰고 실행을 계속하며, 템플릿/저장 같은 문서 수준 실패만
// 에러로 돌려준다.
func (s *ReportService) GenerateReport(
	ctx context.Context,
	records []models.PhraseRecord,
	month string,
	weather models.WeatherAnalysis,
) error {
	run := &models.ReportRun{
		Month:        month,
		TemplatePath: s.cfg.Report.TemplatePath,
		OutputPath:   s.outputPath(month),
		Status:       models.RunStatusRunning,
		StartedAt:    time.Now(),
	}
	if s.runs != nil {
		id, err := s.runs.CreateRun(run)
		if err != nil {
			log.Printf("경고：실행 이력 기록 실패: %v\n", err)
		} else {
			run.ID = id
		}
	}

	err := s.generate(ctx, records, month, weather, run)
	run.FinishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
	} else {
		run.Status = models.RunStatusCompleted
	}
	if s.runs != nil && run.ID != 0 {
		if updateErr := s.runs.UpdateRun(run); updateErr != nil {
			log.Printf("경고：실행 이력 갱신 실패: %v\n", updateErr)
		}
	}
	return err
}

func (s *ReportService) outputPath(month string) string {
	if s.cfg.Report.OutputPath != "" {
		return s.cfg.Report.OutputPath
	}
	return fmt.Sprintf("output/트렌드리포트_%s.pptx", month)
}

func (s *ReportService) generate(
	ctx context.Context,
	records []models.PhraseRecord,
	month string,
	weather models.WeatherAnalysis,
	run *models.ReportRun,
) error {
	tagCfg, err := LoadTagConfig(s.cfg.Report.TagConfigPath)
	if err != nil {
		return err
	}

	d, err := deck.Open(s.cfg.Report.TemplatePath)
	if err != nil {
		return err
	}

	for i, slide := range d.Slides() {
		resolved, failed := s.processSlide(ctx, slide, records, month, weather, tagCfg)
		run.TagsResolved += resolved
		run.TagsFailed += failed
		log.Printf("정보：슬라이드 %d 처리 완료 (성공 %d, 실패 %d)\n", i+1, resolved, failed)
	}

	if err := d.SaveAs(run.OutputPath); err != nil {
		return err
	}
	log.Printf("정보：리포트 생성 완료: %s (태그 성공 %d, 실패 %d)\n",
		run.OutputPath, run.TagsResolved, run.TagsFailed)
	return nil
}

// processSlide 는 슬라이드 하나의 태그를 모두 해석한다. slide context 는
// 슬라이드마다 새로 만들어지고, 기상 분석 결과가 기본으로 들어간다.
// producer 태그를 먼저 처리해 결과를 context 에 넣은 뒤 나머지를 처리하므로
// 같은 슬라이드의 뒤 태그들이 앞 태그의 결과를 변수로 쓸 수 있다.
func (s *ReportService) processSlide(
	ctx context.Context,
	slide *deck.Slide,
	records []models.PhraseRecord,
	month string,
	weather models.WeatherAnalysis,
	tagCfg models.TagConfig,
) (resolved, failed int) {
	slideCtx := map[string]any{weatherContextKey: weather}

	occurrences := findTagsInSlide(slide)
	if len(occurrences) == 0 {
		return 0, 0
	}

	producers := make([]TagOccurrence, 0, len(occurrences))
	rest := make([]TagOccurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		if _, ok := s.cfg.TagRoles.ProducerTags[occ.Tag]; ok {
			producers = append(producers, occ)
		} else {
			rest = append(rest, occ)
		}
	}
	// producer 는 context 키 이름순으로 처리해 실행 순서를 결정적으로 만든다.
	sort.SliceStable(producers, func(i, j int) bool {
		return s.cfg.TagRoles.ProducerTags[producers[i].Tag] < s.cfg.TagRoles.ProducerTags[producers[j].Tag]
	})

	for _, occ := range producers {
		if err := s.processProducer(ctx, occ, records, month, tagCfg, slideCtx); err != nil {
			log.Printf("오류：태그 '%s' 처리 실패: %v\n", occ.Tag, err)
			failed++
			continue
		}
		resolved++
	}
	for _, occ := range rest {
		if err := s.processTag(ctx, occ, records, month, tagCfg, slideCtx); err != nil {
			log.Printf("오류：태그 '%s' 처리 실패: %v\n", occ.Tag, err)
			failed++
			continue
		}
		resolved++
	}
	return resolved, failed
}

// processProducer 는 텍스트를 생성해 도형에 넣는 동시에 context 키에도
// 기록한다. 같은 결과가 뒤 태그의 프롬프트 변수로 재생성 없이 쓰인다.
func (s *ReportService) processProducer(
	ctx context.Context,
	occ TagOccurrence,
	records []models.PhraseRecord,
	month string,
	tagCfg models.TagConfig,
	slideCtx map[string]any,
) error {
	ctxKey := s.cfg.TagRoles.ProducerTags[occ.Tag]
	settings := tagCfg.Get(occ.Tag)

	var text string
	if cached, ok := slideCtx[ctxKey].(string); ok && cached != "" {
		text = cached
	} else {
		generated, err := s.textGen.GenerateForTag(ctx, occ.Tag, records, month, settings, slideCtx)
		if err != nil {
			return err
		}
		text = generated
		slideCtx[ctxKey] = text
		log.Printf("정보：producer 태그 '%s' -> context '%s'\n", occ.Tag, ctxKey)
	}
	return s.insertText(occ, text, settings)
}

// processTag 는 producer 가 아닌 태그 하나를 역할과 타입에 따라 처리한다.
func (s *ReportService) processTag(
	ctx context.Context,
	occ TagOccurrence,
	records []models.PhraseRecord,
	month string,
	tagCfg models.TagConfig,
	slideCtx map[string]any,
) error {
	if config.HasRole(s.cfg.TagRoles.SkipTags, occ.Tag) {
		log.Printf("정보：태그 '%s' 는 건너뜁니다.\n", occ.Tag)
		return nil
	}

	settings := tagCfg.Get(occ.Tag)
	switch settings.EffectiveType() {
	case models.TagTypeChart:
		return s.charts.CreateChartForTag(occ.Shape.Slide(), occ.Tag, records, settings)

	case models.TagTypeAsset, models.TagTypeComposite:
		// 이미지/복합 태그의 소재 파이프라인은 아직 연결되지 않았다.
		log.Printf("경고：태그 '%s' 타입 '%s' 은 아직 지원하지 않아 건너뜁니다.\n", occ.Tag, settings.EffectiveType())
		return nil

	case models.TagTypeList:
		text, err := s.textGen.GenerateForTag(ctx, occ.Tag, records, month, settings, slideCtx)
		if err != nil {
			return err
		}
		return s.insertText(occ, text, settings)

	default: // text
		var text string
		if config.HasRole(s.cfg.TagRoles.DirectFormatTags, occ.Tag) {
			// 직접 치환 태그는 AI 호출 없이 템플릿 변수 치환만 한다.
			vars := BuildPromptVars(occ.Tag, records, month, slideCtx, s.cfg.TagRoles.InsightTags)
			text = SubstituteVars(settings.PromptTemplate, vars)
		} else {
			generated, err := s.textGen.GenerateForTag(ctx, occ.Tag, records, month, settings, slideCtx)
			if err != nil {
				return err
			}
			text = generated
		}
		return s.insertText(occ, text, settings)
	}
}

// insertText 는 생성/치환된 텍스트를 태그 도형에 넣는다. 서식 유지 태그는
// 첫 런의 서식을 그대로 두고 텍스트만 바꾸며, 나머지는 프레임을 새로 채우고
// 설정된 스타일을 입힌다.
func (s *ReportService) insertText(occ TagOccurrence, text string, settings models.TagSettings) error {
	tf := occ.Shape.TextFrame()
	if tf == nil {
		return fmt.Errorf("태그 '%s' 도형에 텍스트 프레임이 없습니다", occ.Tag)
	}

	if config.HasRole(s.cfg.TagRoles.FormatPreservingTags, occ.Tag) {
		s.replacePreservingFormat(tf, text)
	} else {
		tf.SetText(text)
		s.applyTextStyling(tf, settings)
	}

	if config.HasRole(s.cfg.TagRoles.FontSizeOverrideTags, occ.Tag) && settings.FontSize > 0 {
		for _, p := range tf.Paragraphs() {
			for _, r := range p.Runs() {
				r.SetFontSize(settings.FontSize)
			}
		}
	}
	return nil
}

// replacePreservingFormat 는 첫 문단 첫 런의 텍스트만 바꾸고, 첫 문단의
// 나머지 런을 제거한다. 뒤 문단들은 건드리지 않아 템플릿의 서식이 유지된다.
func (s *ReportService) replacePreservingFormat(tf *deck.TextFrame, text string) {
	paragraphs := tf.Paragraphs()
	if len(paragraphs) == 0 {
		tf.SetText(text)
		return
	}
	first := paragraphs[0]
	runs := first.Runs()
	if len(runs) == 0 {
		first.AddRun(text)
		return
	}
	runs[0].SetText(text)
	for _, extra := range runs[1:] {
		first.RemoveRun(extra)
	}
}

// applyTextStyling 은 태그 설정의 정렬/크기/굵기/색을 프레임 전체 런에 입힌다.
func (s *ReportService) applyTextStyling(tf *deck.TextFrame, settings models.TagSettings) {
	algn := alignmentValue(settings.Alignment)
	for _, p := range tf.Paragraphs() {
		if algn != "" {
			p.SetAlignment(algn)
		}
		for _, r := range p.Runs() {
			if settings.FontSize > 0 {
				r.SetFontSize(settings.FontSize)
			}
			if settings.FontBold != nil {
				r.SetBold(*settings.FontBold)
			}
			if len(settings.FontColor) == 3 {
				r.SetColor(settings.FontColor[0], settings.FontColor[1], settings.FontColor[2])
			}
		}
	}
}

func alignmentValue(alignment string) string {
	switch alignment {
	case "left":
		return "l"
	case "center":
		return "ctr"
	case "right":
		return "r"
	case "justify":
		return "just"
	default:
		return ""
	}
}

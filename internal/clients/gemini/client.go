package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client 구조는 Gemini API 와의 상호작용을 담당한다.
type Client struct {
	textModel *genai.GenerativeModel
}

// NewClient 는 Gemini 클라이언트 인스턴스를 만든다.
func NewClient(apiKey string, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 가 비어 있습니다")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash-lite"
		log.Printf("경고：[Gemini Client] 모델 이름이 없어 기본값을 사용합니다: %s\n", modelName)
	}

	ctx := context.Background()
	sdkClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("Gemini GenAI SDK 클라이언트 생성 실패: %w", err)
	}

	model := sdkClient.GenerativeModel(modelName)
	log.Printf("정보：[Gemini Client] 텍스트 생성 모델 '%s' 초기화 성공.\n", modelName)

	return &Client{textModel: model}, nil
}

// GenerateText 는 프롬프트 하나로 텍스트를 생성한다. 어떤 실패도
// 재시도하지 않고 그대로 호출자에게 전달한다.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("프롬프트가 비어 있습니다")
	}

	resp, err := c.textModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API GenerateContent 실패: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("Gemini API 응답이 비어 있습니다 (no candidates)")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
			if candidate.SafetyRatings != nil {
				for _, rating := range candidate.SafetyRatings {
					log.Printf("경고：[Gemini Client] 안전 등급 - Category: %s, Probability: %s\n", rating.Category, rating.Probability)
				}
			}
			return "", fmt.Errorf("Gemini API 응답이 차단되었습니다. 원인: %s", candidate.FinishReason.String())
		}
		return "", fmt.Errorf("Gemini API 응답에 내용이 없습니다 (FinishReason: %s)", candidate.FinishReason.String())
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		} else {
			log.Printf("경고：[Gemini Client] 예상하지 못한 Part 타입: %T\n", part)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("Gemini API 가 빈 텍스트를 반환했습니다")
	}
	return text, nil
}

package analyze

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/predicare/voicebot/internal/config"
)

// GroqChatClient talks to Groq's OpenAI-compatible chat completions.
type GroqChatClient struct {
	client        *openai.Client
	visionModel   string
	fallbackModel string
	timeout       time.Duration
}

func NewGroqChatClient(cfg *config.Config) *GroqChatClient {
	oc := openai.DefaultConfig(cfg.GroqAPIKey)
	oc.BaseURL = cfg.GroqBaseURL

	return &GroqChatClient{
		client:        openai.NewClientWithConfig(oc),
		visionModel:   cfg.VisionModel,
		fallbackModel: cfg.FallbackModel,
		timeout:       cfg.LLMTimeout,
	}
}

func (c *GroqChatClient) VisionCompletion(ctx context.Context, prompt string, image []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	encoded := base64.StdEncoding.EncodeToString(image)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/jpeg;base64," + encoded,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision completion: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *GroqChatClient) TextCompletion(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.fallbackModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("text completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("text completion: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

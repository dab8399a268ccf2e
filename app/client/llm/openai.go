package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/config"

	"github.com/sashabaranov/go-openai"
)

const (
	maxCompletionTokens = 1000
	// conservative for medical accuracy
	completionTemperature = 0.3
)

type openAIClient struct {
	client *openai.Client
	model  string
}

func newOpenAIClient(cfg config.ModelConfig) (*openAIClient, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("openai token is not configured")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai model is not configured")
	}

	clientConfig := openai.DefaultConfig(cfg.Token)

	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	return &openAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}, nil
}

func (c *openAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	aiResponse, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxCompletionTokens: maxCompletionTokens,
			Temperature:         completionTemperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}

	return strings.TrimSpace(aiResponse.Choices[0].Message.Content), nil
}

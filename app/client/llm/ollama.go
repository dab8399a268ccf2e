package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

type ollamaClient struct {
	llm *ollama.LLM
}

func newOllamaClient(cfg config.Ollama) (*ollamaClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is not configured")
	}

	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	return &ollamaClient{llm: llm}, nil
}

func (c *ollamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithTemperature(completionTemperature),
		llms.WithMaxTokens(maxCompletionTokens),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	return strings.TrimSpace(result), nil
}

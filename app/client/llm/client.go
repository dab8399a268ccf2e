// Package llm wraps chat completion providers behind a single narrow
// capability: given a prompt, return generated text.
package llm

import (
	"context"
	"fmt"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/config"

	"github.com/samber/do"
)

type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

func New(di *do.Injector) (Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	switch cfg.LLM.Provider {
	case "openai":
		return newOpenAIClient(cfg.LLM.OpenAI)
	case "ollama":
		return newOllamaClient(cfg.LLM.Ollama)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

package llm

import (
	"context"
	"fmt"

	"github.com/markdave123-py/Pagewise/internal/config"
	"github.com/markdave123-py/Pagewise/internal/core"
)

// NewProvider builds the model client selected by LLM_PROVIDER.
func NewProvider(ctx context.Context, cfg *config.Config) (core.LLMProvider, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	case config.ProviderOpenAI:
		return NewOpenAILLM(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.GenModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

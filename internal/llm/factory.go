package llm

import (
	"context"
	"fmt"
	"strings"
)

// NewProvider creates a Provider from configuration, wrapped with retry
// and, when a recorder is given, request logging middleware.
func NewProvider(ctx context.Context, cfg Config, rec RequestRecorder) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → retry → logging → base
	wrapped := base
	if rec != nil {
		wrapped = WithLogging(wrapped, rec)
	}
	return WithRetry(wrapped, cfg.Retry), nil
}

// NewModelProvider creates a Provider for one named benchmark model.
// Model names with a vendor prefix (e.g. "openai/gpt-4o-mini",
// "swiss-ai/apertus-70b") are routed through OpenRouter or the Swiss AI
// endpoint; bare names go to whichever provider cfg selects.
func NewModelProvider(ctx context.Context, cfg Config, model string, rec RequestRecorder) (Provider, error) {
	if strings.Contains(model, "/") {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.Model = model
	} else {
		switch cfg.Provider {
		case "anthropic":
			cfg.Anthropic.Model = model
		case "openai":
			cfg.OpenAI.Model = model
		case "gemini":
			cfg.Gemini.Model = model
		case "openrouter":
			cfg.OpenRouter.Model = model
		}
	}
	return NewProvider(ctx, cfg, rec)
}

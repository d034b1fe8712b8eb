package llm

import (
	"fmt"
	"strings"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultSwissAIBaseURL    = "https://api.swissai.cscs.ch/v1"

	// swissAIPrefix marks models served by the Swiss AI initiative
	// (Apertus family) rather than OpenRouter.
	swissAIPrefix = "swiss-ai/"
)

// OpenRouterProvider wraps OpenAIProvider with OpenRouter-specific
// defaults. OpenRouter exposes an OpenAI-compatible API, so the
// underlying SDK is reused; "swiss-ai/" models are routed to the Swiss
// AI inference endpoint, which speaks the same protocol.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API
// or, for swiss-ai models, the Swiss AI endpoint.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	apiKey := cfg.APIKey
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	if strings.HasPrefix(cfg.Model, swissAIPrefix) {
		if cfg.SwissAIKey == "" {
			return nil, fmt.Errorf("swiss-ai API key is required for model %q", cfg.Model)
		}
		apiKey = cfg.SwissAIKey
		baseURL = cfg.SwissAIBaseURL
		if baseURL == "" {
			baseURL = defaultSwissAIBaseURL
		}
	} else if apiKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	inner, err := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  apiKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, err
	}

	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

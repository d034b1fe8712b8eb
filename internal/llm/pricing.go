package llm

// ModelCost holds per-million-token pricing for a model.
// Prices are in USD per 1 million tokens, sourced from models.dev and
// the OpenRouter model catalog.
type ModelCost struct {
	InputPerMTok  float64 // USD per 1M input tokens
	OutputPerMTok float64 // USD per 1M output tokens
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
// Unknown models simply log a zero cost estimate.
func LookupCost(modelID string) *ModelCost {
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	return nil
}

// modelCosts covers the models the benchmark configs reference, under
// both their native and OpenRouter-namespaced IDs.
// Last updated: 2026-07-30.
var modelCosts = map[string]ModelCost{
	// Anthropic
	"claude-haiku-4-5":               {1, 5},
	"claude-haiku-4-5-20251001":      {1, 5},
	"claude-sonnet-4-20250514":       {3, 15},
	"claude-sonnet-4-5":              {3, 15},
	"anthropic/claude-3-haiku":       {0.25, 1.25},
	"anthropic/claude-sonnet-4":      {3, 15},
	"anthropic/claude-haiku-4.5":     {1, 5},

	// OpenAI
	"gpt-4o":                {2.5, 10},
	"gpt-4o-mini":           {0.15, 0.6},
	"gpt-5-mini":            {0.25, 2},
	"openai/gpt-4o":         {2.5, 10},
	"openai/gpt-4o-mini":    {0.15, 0.6},
	"openai/gpt-5-mini":     {0.25, 2},
	"openai/o3-mini":        {1.1, 4.4},

	// Google (Gemini)
	"gemini-2.0-flash":                {0.1, 0.4},
	"gemini-2.5-flash":                {0.3, 2.5},
	"gemini-2.5-pro":                  {1.25, 10},
	"google/gemini-2.0-flash-exp":     {0.1, 0.4},
	"google/gemini-2.5-flash":         {0.3, 2.5},
	"google/gemini-2.5-pro":           {1.25, 10},

	// Open-weight models via OpenRouter
	"meta-llama/llama-3.3-70b-instruct": {0.12, 0.3},
	"mistralai/mistral-large-2411":      {2, 6},
	"mistralai/mistral-small-3.1":       {0.1, 0.3},
	"deepseek/deepseek-chat-v3":         {0.27, 1.1},
	"deepseek/deepseek-r1":              {0.55, 2.19},
	"qwen/qwen-2.5-72b-instruct":        {0.12, 0.39},

	// Swiss AI (Apertus) research endpoint, currently free tier.
	"swiss-ai/apertus-8b":  {0, 0},
	"swiss-ai/apertus-70b": {0, 0},
}

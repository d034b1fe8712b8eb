package judge

import "github.com/mlippuner/swissbench/internal/llm"

// VerdictSchema defines the JSON shape a judge must return per answer.
var VerdictSchema = &llm.Schema{
	Name:        "grading-verdict",
	Description: "Awarded points and feedback for a single exam answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"points": map[string]any{
				"type":        []any{"number", "null"},
				"description": "Points awarded, between 0 and the question's max points",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Brief feedback (1-3 sentences)",
			},
		},
	},
}

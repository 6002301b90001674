package explain

import "github.com/drillbook/drillbook/internal/llm"

// ExplanationSchema defines the JSON schema for LLM answer explanations.
var ExplanationSchema = &llm.Schema{
	Name:        "answer-explanation",
	Description: "Short explanation of why the correct answer is correct",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "Two to four sentences explaining the correct answer, in the language of the question",
			},
			"key_point": map[string]any{
				"type":        "string",
				"description": "The single concept the learner most likely missed, one short phrase",
			},
		},
		"required":             []any{"explanation", "key_point"},
		"additionalProperties": false,
	},
}

package quizgen

import "github.com/amrixahmad/questionsmith/internal/llm"

// QuizSchema defines the JSON schema for LLM quiz generation responses.
//
// It checks only the basic shape. Per-question problems such as unknown
// types, empty stems or unresolvable answers are left to sanitization so
// a single bad candidate does not fail the whole batch.
var QuizSchema = &llm.Schema{
	Name:        "quiz",
	Description: "A quiz with a title and a list of candidate questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Short descriptive title for the quiz",
			},
			"difficulty": map[string]any{
				"type": "string",
				"enum": []any{"easy", "medium", "hard"},
			},
			"questionCount": map[string]any{
				"type":    "integer",
				"minimum": 1,
			},
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    questionSchema,
			},
		},
		"required": []any{"title", "questions"},
	},
}

var questionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":   map[string]any{"type": "string"},
		"type": map[string]any{"type": "string"},
		"stem": map[string]any{"type": "string"},
		"options": map[string]any{
			"type": "array",
			"items": map[string]any{
				"anyOf": []any{
					map[string]any{"type": "string"},
					map[string]any{
						"type": "object",
						"properties": map[string]any{
							"id":   map[string]any{"type": "string"},
							"text": map[string]any{"type": "string"},
						},
						"required": []any{"text"},
					},
				},
			},
		},
		"answer": map[string]any{
			"anyOf": []any{
				map[string]any{"type": "string"},
				map[string]any{"type": "number"},
				map[string]any{"type": "boolean"},
				map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"description": "Letter of the correct option, a boolean, or the answer text",
		},
		"explanation": map[string]any{"type": "string"},
		"tags": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"order": map[string]any{"type": "integer"},
	},
	"required": []any{"type", "stem", "answer"},
}

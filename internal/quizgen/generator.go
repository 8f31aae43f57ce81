package quizgen

import "context"

// Generator produces quizzes from source text.
type Generator interface {
	// Generate produces a sanitized quiz for the given input. All
	// configured validators are run before returning.
	Generate(ctx context.Context, input GenerateInput) (*GeneratedQuiz, error)
}

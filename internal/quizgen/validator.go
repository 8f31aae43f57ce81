package quizgen

import (
	"fmt"
	"strings"
)

// Validator checks an assembled quiz before it is returned.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator, e.g. "structural".
	Name() string

	// Validate returns nil if the quiz passes.
	Validate(q *GeneratedQuiz, input GenerateInput) *ValidationError
}

// ValidationError describes why a quiz failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// MaxTitleLength bounds quiz titles.
const MaxTitleLength = 200

// StructuralValidator checks the quiz-level fields.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *GeneratedQuiz, _ GenerateInput) *ValidationError {
	if strings.TrimSpace(q.Title) == "" {
		return &ValidationError{Validator: v.Name(), Message: "title is empty", Retryable: true}
	}
	if len(q.Title) > MaxTitleLength {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("title exceeds %d characters", MaxTitleLength),
			Retryable: true,
		}
	}
	if !q.Difficulty.Valid() {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("unknown difficulty %q", q.Difficulty),
		}
	}
	return nil
}

// YieldValidator requires a minimum number of questions to survive
// sanitization and allocation. A short quiz above the minimum is accepted.
type YieldValidator struct {
	MinQuestions int
}

func (v *YieldValidator) Name() string { return "yield" }

func (v *YieldValidator) Validate(q *GeneratedQuiz, _ GenerateInput) *ValidationError {
	if len(q.Questions) < v.MinQuestions {
		return &ValidationError{
			Validator: v.Name(),
			Message: fmt.Sprintf("only %d usable questions, need %d (%s)",
				len(q.Questions), v.MinQuestions, q.Report),
			Retryable: true,
		}
	}
	return nil
}

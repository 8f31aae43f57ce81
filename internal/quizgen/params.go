package quizgen

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/amrixahmad/questionsmith/internal/quiz"
)

const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 50
)

// GenerationParams are the user-facing knobs of a generation request.
type GenerationParams struct {
	QuestionCount    int                 `json:"questionCount" validate:"min=1,max=50"`
	Difficulty       quiz.Difficulty     `json:"difficulty" validate:"oneof=easy medium hard"`
	WithExplanations bool                `json:"withExplanations"`
	Types            []quiz.QuestionType `json:"types" validate:"min=1,dive,question_type"`
	Language         string              `json:"language,omitempty" validate:"max=32"`
}

// DefaultParams returns the parameters used when a request sets nothing.
func DefaultParams() GenerationParams {
	return GenerationParams{
		QuestionCount:    DefaultQuestionCount,
		Difficulty:       quiz.DifficultyMedium,
		WithExplanations: true,
		Types:            []quiz.QuestionType{quiz.MultipleChoice},
	}
}

// Normalize clamps the count, fills in the default difficulty and type,
// and deduplicates the type list keeping first occurrences. It does not
// drop unknown types; Validate reports them.
func (p GenerationParams) Normalize() GenerationParams {
	p.QuestionCount = ClampCount(p.QuestionCount)
	if p.Difficulty == "" {
		p.Difficulty = quiz.DifficultyMedium
	}
	p.Language = strings.TrimSpace(p.Language)

	seen := make(map[quiz.QuestionType]bool, len(p.Types))
	types := make([]quiz.QuestionType, 0, len(p.Types))
	for _, t := range p.Types {
		t = quiz.QuestionType(strings.ToLower(strings.TrimSpace(string(t))))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	if len(types) == 0 {
		types = []quiz.QuestionType{quiz.MultipleChoice}
	}
	p.Types = types
	return p
}

// Validate checks p against its struct tags.
func (p GenerationParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid generation params: %w", err)
	}
	return nil
}

// ClampCount bounds a requested question count to [1, MaxQuestionCount].
// Non-positive counts mean "use the default".
func ClampCount(n int) int {
	switch {
	case n <= 0:
		return DefaultQuestionCount
	case n > MaxQuestionCount:
		return MaxQuestionCount
	default:
		return n
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		return quiz.QuestionType(fl.Field().String()).Valid()
	})
	return v
}

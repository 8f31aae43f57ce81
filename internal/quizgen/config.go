package quizgen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every assembled quiz; the first failure
	// stops the pipeline.
	Validators []Validator

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// ExtraCandidates is how many questions beyond the requested count the
	// LLM is asked for, so that rejections can be absorbed by allocation.
	ExtraCandidates int

	// MaxAttempts bounds how many times generation is retried when a
	// validator fails with a retryable error.
	MaxAttempts int

	// MaxSourceChars truncates very long source text before prompting.
	MaxSourceChars int
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&YieldValidator{MinQuestions: 1},
		},
		MaxTokens:       4096,
		Temperature:     1.0,
		ExtraCandidates: 2,
		MaxAttempts:     2,
		MaxSourceChars:  20000,
	}
}

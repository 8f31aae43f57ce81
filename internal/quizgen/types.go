package quizgen

import "github.com/amrixahmad/questionsmith/internal/quiz"

// RawQuiz is the quiz structure returned by a generator before any
// sanitization. Only Title and Questions are required.
type RawQuiz struct {
	Title         string             `json:"title"`
	Difficulty    string             `json:"difficulty,omitempty"`
	QuestionCount int                `json:"questionCount,omitempty"`
	Questions     []quiz.RawQuestion `json:"questions"`
}

// GenerateInput holds everything needed to generate one quiz.
type GenerateInput struct {
	// Text is the source content questions are drawn from.
	Text string

	// Params controls count, difficulty and the type mix.
	Params GenerationParams
}

// GeneratedQuiz is the sanitized, allocated result of a generation.
type GeneratedQuiz struct {
	Title string

	// Difficulty is the generator's label when valid, else the requested one.
	Difficulty quiz.Difficulty

	// Questions holds at most Params.QuestionCount questions with 1-based
	// Order. It may be shorter when too few candidates survived.
	Questions []quiz.CanonicalQuestion

	// Report summarizes which candidates were rejected and why.
	Report Report
}

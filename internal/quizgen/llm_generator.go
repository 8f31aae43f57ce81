package quizgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/amrixahmad/questionsmith/internal/llm"
	"github.com/amrixahmad/questionsmith/internal/quiz"
)

// PurposeQuizGen labels quiz generation requests in LLM event logs.
const PurposeQuizGen = "quiz-gen"

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// Generate produces a quiz for the given input. Params are normalized and
// validated first; a retryable validator failure triggers regeneration up
// to Config.MaxAttempts times.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*GeneratedQuiz, error) {
	ctx = llm.WithPurpose(ctx, PurposeQuizGen)

	input.Params = input.Params.Normalize()
	if err := input.Params.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("source text is empty")
	}

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      QuizSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	attempts := max(g.config.MaxAttempts, 1)
	var lastErr error
	for range attempts {
		resp, err := g.provider.Generate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("LLM generation failed: %w", err)
		}

		raw, err := DecodeRawQuiz(resp.Content)
		if err != nil {
			return nil, err
		}

		out, err := Assemble(raw, input, g.config.Validators)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

// Assemble runs the generator-independent half of the pipeline: sanitize
// every candidate, allocate the requested mix and run validators.
// input.Params must already be normalized.
func Assemble(raw *RawQuiz, input GenerateInput, validators []Validator) (*GeneratedQuiz, error) {
	pool, report := SanitizeAll(raw.Questions)

	difficulty := quiz.Difficulty(strings.ToLower(strings.TrimSpace(raw.Difficulty)))
	if !difficulty.Valid() {
		difficulty = input.Params.Difficulty
	}

	out := &GeneratedQuiz{
		Title:      strings.TrimSpace(raw.Title),
		Difficulty: difficulty,
		Questions:  Allocate(pool, input.Params.Types, input.Params.QuestionCount),
		Report:     report,
	}

	for _, v := range validators {
		if verr := v.Validate(out, input); verr != nil {
			return nil, verr
		}
	}
	return out, nil
}

// DecodeRawQuiz parses generator output, tolerating a surrounding
// markdown code fence.
func DecodeRawQuiz(content []byte) (*RawQuiz, error) {
	var raw RawQuiz
	if err := json.Unmarshal(stripCodeFence(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return &raw, nil
}

// stripCodeFence removes a leading ``` or ```json line and a trailing ```.
func stripCodeFence(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	} else {
		b = b[3:]
	}
	b = bytes.TrimSpace(b)
	b = bytes.TrimSuffix(b, []byte("```"))
	return bytes.TrimSpace(b)
}

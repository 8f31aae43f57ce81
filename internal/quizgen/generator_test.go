package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/amrixahmad/questionsmith/internal/llm"
	"github.com/amrixahmad/questionsmith/internal/quiz"
)

const sourceText = "The mitochondria is the powerhouse of the cell. Plants make food by photosynthesis."

func validQuizJSON() json.RawMessage {
	return json.RawMessage(`{
		"title": "Cell Biology",
		"difficulty": "easy",
		"questionCount": 4,
		"questions": [
			{"type": "multiple_choice", "stem": "Powerhouse of the cell?",
			 "options": [{"id": "a", "text": "Nucleus"}, {"id": "b", "text": "Mitochondria"}, {"id": "c", "text": "Ribosome"}],
			 "answer": "B", "explanation": "Mitochondria produce ATP."},
			{"type": "true_false", "stem": "Plants make food by photosynthesis.", "answer": true},
			{"type": "true_false", "stem": "Cells have no membrane.", "answer": "perhaps"},
			{"type": "short_answer", "stem": "How do plants make food?", "answer": "photosynthesis"}
		]
	}`)
}

func TestGenerate_SanitizesAndAllocates(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuizJSON()})
	gen := New(mock, DefaultConfig())

	q, err := gen.Generate(context.Background(), GenerateInput{
		Text: sourceText,
		Params: GenerationParams{
			QuestionCount: 3,
			Types:         []quiz.QuestionType{quiz.MultipleChoice, quiz.TrueFalse, quiz.ShortAnswer},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Title != "Cell Biology" {
		t.Errorf("unexpected title: %q", q.Title)
	}
	if q.Difficulty != quiz.DifficultyEasy {
		t.Errorf("expected generator difficulty easy, got %q", q.Difficulty)
	}
	if len(q.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(q.Questions))
	}
	mc := q.Questions[0]
	if mc.Type != quiz.MultipleChoice || mc.Answer != 1 {
		t.Errorf("expected multiple choice answer 1, got %s %v", mc.Type, mc.Answer)
	}
	if mc.Options[1].ID != "b" {
		t.Errorf("expected source option id to survive, got %q", mc.Options[1].ID)
	}
	if q.Report.Rejected() != 1 {
		t.Errorf("expected 1 rejection, got %s", q.Report)
	}
}

func TestGenerate_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuizJSON()})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{
		Text: sourceText,
		Params: GenerationParams{
			QuestionCount:    4,
			Difficulty:       quiz.DifficultyHard,
			WithExplanations: true,
			Types:            []quiz.QuestionType{quiz.MultipleChoice, quiz.TrueFalse},
			Language:         "fr",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema != QuizSchema {
		t.Error("expected quiz schema on request")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{
		"mitochondria",
		"questionCount: 6",
		"difficulty: hard",
		"allowedTypes: multiple_choice|true_false",
		"language: fr",
		"distribution: multiple_choice:3, true_false:3",
		"explanation",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("user message missing %q:\n%s", want, msg)
		}
	}
}

func TestGenerate_FallsBackToRequestedDifficulty(t *testing.T) {
	raw := json.RawMessage(`{"title": "T", "difficulty": "brutal",
		"questions": [{"type": "true_false", "stem": "S", "answer": "yes"}]}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: raw})
	gen := New(mock, DefaultConfig())

	q, err := gen.Generate(context.Background(), GenerateInput{
		Text:   sourceText,
		Params: GenerationParams{Difficulty: quiz.DifficultyHard, Types: []quiz.QuestionType{quiz.TrueFalse}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Difficulty != quiz.DifficultyHard {
		t.Errorf("expected hard, got %q", q.Difficulty)
	}
}

func TestGenerate_RetriesWhenNothingSurvives(t *testing.T) {
	bad := json.RawMessage(`{"title": "T",
		"questions": [{"type": "true_false", "stem": "S", "answer": "unsure"}]}`)
	good := json.RawMessage(`{"title": "T",
		"questions": [{"type": "true_false", "stem": "S", "answer": false}]}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: bad}, llm.MockResponse{Content: good})
	gen := New(mock, DefaultConfig())

	q, err := gen.Generate(context.Background(), GenerateInput{
		Text:   sourceText,
		Params: GenerationParams{Types: []quiz.QuestionType{quiz.TrueFalse}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", mock.CallCount())
	}
	if len(q.Questions) != 1 || q.Questions[0].Answer != false {
		t.Errorf("unexpected questions: %+v", q.Questions)
	}
}

func TestGenerate_ValidationFailure(t *testing.T) {
	bad := json.RawMessage(`{"title": "T",
		"questions": [{"type": "essay", "stem": "S", "answer": "x"}]}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: bad}, llm.MockResponse{Content: bad})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Text: sourceText})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if valErr.Validator != "yield" {
		t.Errorf("expected yield validator, got %q", valErr.Validator)
	}
	if !strings.Contains(valErr.Message, "unknown_type") {
		t.Errorf("expected rejection report in message, got %q", valErr.Message)
	}
}

func TestGenerate_InvalidParams(t *testing.T) {
	mock := llm.NewMockProvider()
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{
		Text:   sourceText,
		Params: GenerationParams{Types: []quiz.QuestionType{"essay"}},
	})
	if err == nil {
		t.Fatal("expected params error")
	}
	if mock.CallCount() != 0 {
		t.Errorf("provider should not be called, got %d calls", mock.CallCount())
	}
}

func TestGenerate_EmptyText(t *testing.T) {
	gen := New(llm.NewMockProvider(), DefaultConfig())
	if _, err := gen.Generate(context.Background(), GenerateInput{Text: "  "}); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestGenerate_LLMError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("boom")})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Text: sourceText})
	if err == nil || !strings.Contains(err.Error(), "LLM generation failed") {
		t.Fatalf("expected wrapped LLM error, got %v", err)
	}
}

func TestDecodeRawQuiz_CodeFence(t *testing.T) {
	content := []byte("```json\n{\"title\": \"Fenced\", \"questions\": []}\n```")
	raw, err := DecodeRawQuiz(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Title != "Fenced" {
		t.Errorf("unexpected title: %q", raw.Title)
	}

	if _, err := DecodeRawQuiz([]byte("not json")); err == nil {
		t.Error("expected parse error")
	}
}

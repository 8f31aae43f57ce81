package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amrixahmad/questionsmith/internal/events"
	"github.com/amrixahmad/questionsmith/internal/logging"
	"github.com/amrixahmad/questionsmith/internal/quiz"
	"github.com/amrixahmad/questionsmith/internal/quizgen"
	"github.com/amrixahmad/questionsmith/internal/store"
)

// maxSourceTitle bounds the title derived from the first source line.
const maxSourceTitle = 80

// GenerationService turns source text into a persisted draft quiz.
type GenerationService struct {
	sources store.SourceRepo
	quizzes store.QuizRepo
	gen     quizgen.Generator
	pub     events.Publisher
	logger  logging.Logger
}

func NewGenerationService(st *store.Store, gen quizgen.Generator, pub events.Publisher, logger logging.Logger) *GenerationService {
	return &GenerationService{
		sources: st.SourceRepo(),
		quizzes: st.QuizRepo(),
		gen:     gen,
		pub:     pub,
		logger:  logger.With("service", "generation"),
	}
}

// GenerateResult is a freshly generated quiz.
type GenerateResult struct {
	Quiz      *store.Quiz
	Questions []quiz.CanonicalQuestion
	Report    quizgen.Report
}

// GenerateFromText stores text as a content source, generates a quiz from
// it and persists the quiz as a draft owned by userID.
func (s *GenerationService) GenerateFromText(ctx context.Context, userID, text string, params quizgen.GenerationParams) (*GenerateResult, error) {
	if s.gen == nil {
		return nil, errors.New("quiz generation is not configured")
	}
	if userID == "" {
		return nil, ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalidInput(errors.New("source text is empty"))
	}
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	src := &store.ContentSource{
		UserID: userID,
		Type:   store.SourceText,
		Title:  sourceTitle(text),
		Body:   text,
	}
	if err := s.sources.Create(ctx, src); err != nil {
		return nil, fmt.Errorf("save source: %w", err)
	}

	generated, err := s.gen.Generate(ctx, quizgen.GenerateInput{Text: text, Params: params})
	if err != nil {
		s.logger.WarnContext(ctx, "quiz generation failed", "user_id", userID, "source_id", src.ID, "error", err)
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	difficulty := generated.Difficulty
	if difficulty == "" {
		difficulty = params.Difficulty
	}
	q := &store.Quiz{
		UserID:     userID,
		SourceID:   src.ID,
		Title:      generated.Title,
		Status:     store.StatusDraft,
		Difficulty: difficulty,
	}
	if err := s.quizzes.CreateWithQuestions(ctx, q, generated.Questions); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}

	s.logger.InfoContext(ctx, "quiz generated",
		"quiz_id", q.ID, "user_id", userID,
		"questions", len(generated.Questions), "requested", params.QuestionCount,
		"report", generated.Report.String())

	publish(ctx, s.pub, s.logger, events.New(events.TopicQuizGenerated, events.QuizGenerated{
		QuizID:        q.ID,
		UserID:        userID,
		Title:         q.Title,
		Requested:     params.QuestionCount,
		QuestionCount: q.QuestionCount,
		Candidates:    generated.Report.Total,
		Rejected:      generated.Report.Rejected(),
		Report:        generated.Report.String(),
	}))

	return &GenerateResult{Quiz: q, Questions: generated.Questions, Report: generated.Report}, nil
}

// sourceTitle is the first non-empty line of text, cut at a word boundary.
func sourceTitle(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)
	if len(line) <= maxSourceTitle {
		return line
	}
	cut := strings.LastIndexByte(line[:maxSourceTitle], ' ')
	if cut <= 0 {
		cut = maxSourceTitle
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
	}
	return strings.TrimSpace(line[:cut]) + "…"
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/amrixahmad/questionsmith/internal/logging"
	"github.com/amrixahmad/questionsmith/internal/quiz"
	"github.com/amrixahmad/questionsmith/internal/store"
)

// QuizService reads and manages persisted quizzes.
type QuizService struct {
	quizzes store.QuizRepo
	logger  logging.Logger
}

func NewQuizService(st *store.Store, logger logging.Logger) *QuizService {
	return &QuizService{quizzes: st.QuizRepo(), logger: logger.With("service", "quiz")}
}

// QuizDetail is a quiz with its questions. IsOwner tells callers whether
// canonical answers may be shown.
type QuizDetail struct {
	Quiz      *store.Quiz
	Questions []quiz.CanonicalQuestion
	IsOwner   bool
}

// Get returns the quiz if userID owns it or it is published. Other users'
// drafts are reported as not found.
func (s *QuizService) Get(ctx context.Context, userID, quizID string) (*QuizDetail, error) {
	q, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, fromStore(err, "get quiz")
	}
	if !canView(q, userID) {
		return nil, fmt.Errorf("get quiz: %w", ErrNotFound)
	}
	questions, err := s.quizzes.Questions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return &QuizDetail{Quiz: q, Questions: questions, IsOwner: q.UserID == userID}, nil
}

// List returns userID's own quizzes, newest first.
func (s *QuizService) List(ctx context.Context, userID string, opts store.ListOpts) ([]store.Quiz, error) {
	quizzes, err := s.quizzes.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *QuizService) Publish(ctx context.Context, userID, quizID string) error {
	return s.setStatus(ctx, userID, quizID, store.StatusPublished)
}

func (s *QuizService) Unpublish(ctx context.Context, userID, quizID string) error {
	return s.setStatus(ctx, userID, quizID, store.StatusDraft)
}

func (s *QuizService) setStatus(ctx context.Context, userID, quizID string, status store.QuizStatus) error {
	if _, err := s.owned(ctx, userID, quizID); err != nil {
		return err
	}
	if err := s.quizzes.SetStatus(ctx, quizID, status); err != nil {
		return fromStore(err, "set quiz status")
	}
	s.logger.InfoContext(ctx, "quiz status changed", "quiz_id", quizID, "status", string(status))
	return nil
}

// SetMaxAttempts limits how many attempts each non-owner may start.
func (s *QuizService) SetMaxAttempts(ctx context.Context, userID, quizID string, n int) error {
	if n < 1 {
		return invalidInput(errors.New("max attempts must be at least 1"))
	}
	if _, err := s.owned(ctx, userID, quizID); err != nil {
		return err
	}
	return fromStore(s.quizzes.SetMaxAttempts(ctx, quizID, n), "set max attempts")
}

// Delete removes the quiz with its questions, attempts and share links.
func (s *QuizService) Delete(ctx context.Context, userID, quizID string) error {
	if _, err := s.owned(ctx, userID, quizID); err != nil {
		return err
	}
	if err := s.quizzes.Delete(ctx, quizID); err != nil {
		return fromStore(err, "delete quiz")
	}
	s.logger.InfoContext(ctx, "quiz deleted", "quiz_id", quizID)
	return nil
}

func (s *QuizService) owned(ctx context.Context, userID, quizID string) (*store.Quiz, error) {
	return ownedQuiz(ctx, s.quizzes, userID, quizID)
}

// ownedQuiz loads the quiz and fails with ErrForbidden unless userID owns it.
func ownedQuiz(ctx context.Context, repo store.QuizRepo, userID, quizID string) (*store.Quiz, error) {
	q, err := repo.Get(ctx, quizID)
	if err != nil {
		return nil, fromStore(err, "get quiz")
	}
	if q.UserID != userID {
		return nil, ErrForbidden
	}
	return q, nil
}

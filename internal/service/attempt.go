package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/amrixahmad/questionsmith/internal/events"
	"github.com/amrixahmad/questionsmith/internal/grading"
	"github.com/amrixahmad/questionsmith/internal/logging"
	"github.com/amrixahmad/questionsmith/internal/store"
)

// AttemptService runs and grades quiz attempts.
type AttemptService struct {
	quizzes  store.QuizRepo
	attempts store.AttemptRepo
	pub      events.Publisher
	logger   logging.Logger
	now      clock
}

func NewAttemptService(st *store.Store, pub events.Publisher, logger logging.Logger) *AttemptService {
	return &AttemptService{
		quizzes:  st.QuizRepo(),
		attempts: st.AttemptRepo(),
		pub:      pub,
		logger:   logger.With("service", "attempt"),
		now:      utcNow,
	}
}

// Start opens a new attempt. The quiz must be published unless userID
// owns it. Non-owners are held to the quiz's attempt limit.
func (s *AttemptService) Start(ctx context.Context, userID, quizID string) (*store.Attempt, error) {
	if userID == "" {
		return nil, ErrForbidden
	}
	q, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, fromStore(err, "get quiz")
	}
	if !canView(q, userID) {
		return nil, fmt.Errorf("start attempt: %w", ErrNotFound)
	}

	if q.UserID != userID && q.MaxAttempts > 0 {
		n, err := s.attempts.CountByUser(ctx, userID, quizID)
		if err != nil {
			return nil, err
		}
		if n >= q.MaxAttempts {
			return nil, ErrAttemptLimit
		}
	}

	a := &store.Attempt{QuizID: quizID, UserID: userID, StartedAt: s.now()}
	if err := s.attempts.Start(ctx, a); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "attempt started", "attempt_id", a.ID, "quiz_id", quizID, "user_id", userID)
	return a, nil
}

// Submit grades responses for the attempt and stores the result. Each
// attempt can be submitted once.
func (s *AttemptService) Submit(ctx context.Context, userID, attemptID string, responses []grading.SubmittedResponse) (*grading.Scorecard, error) {
	a, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return nil, fromStore(err, "get attempt")
	}
	if a.UserID != userID {
		return nil, ErrForbidden
	}
	if a.Submitted() {
		return nil, ErrAlreadySubmitted
	}

	questions, err := s.quizzes.Questions(ctx, a.QuizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	card := grading.ScoreAttempt(questions, responses)

	submittedAt := s.now()
	duration := int(math.Max(0, submittedAt.Sub(a.StartedAt).Seconds()))

	rows := make([]store.AnswerRow, len(card.Records))
	for i, rec := range card.Records {
		rows[i] = store.AnswerRow{
			QuestionID: rec.QuestionID,
			Response:   rec.Response,
			IsCorrect:  rec.IsCorrect,
			Score:      rec.Score,
		}
	}
	err = s.attempts.Submit(ctx, attemptID, store.SubmitInput{
		Answers:         rows,
		Score:           card.Score,
		MaxScore:        card.MaxScore,
		SubmittedAt:     submittedAt,
		DurationSeconds: duration,
	})
	switch {
	case errors.Is(err, store.ErrConflict):
		return nil, ErrAlreadySubmitted
	case err != nil:
		return nil, fromStore(err, "submit attempt")
	}

	s.logger.InfoContext(ctx, "attempt submitted",
		"attempt_id", attemptID, "quiz_id", a.QuizID, "user_id", userID,
		"score", card.Score, "max_score", card.MaxScore, "duration_seconds", duration)

	publish(ctx, s.pub, s.logger, events.New(events.TopicAttemptSubmitted, events.AttemptSubmitted{
		AttemptID:       attemptID,
		QuizID:          a.QuizID,
		UserID:          userID,
		Score:           card.Score,
		MaxScore:        card.MaxScore,
		DurationSeconds: duration,
	}))
	return &card, nil
}

// AttemptDetail is an attempt with its graded answers.
type AttemptDetail struct {
	Attempt *store.Attempt
	Answers []store.AnswerRow
}

// Get returns the attempt to its taker or to the quiz owner.
func (s *AttemptService) Get(ctx context.Context, userID, attemptID string) (*AttemptDetail, error) {
	a, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return nil, fromStore(err, "get attempt")
	}
	if a.UserID != userID {
		q, err := s.quizzes.Get(ctx, a.QuizID)
		if err != nil {
			return nil, fromStore(err, "get quiz")
		}
		if q.UserID != userID {
			return nil, ErrForbidden
		}
	}
	answers, err := s.attempts.Answers(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return &AttemptDetail{Attempt: a, Answers: answers}, nil
}

// List returns userID's attempts, optionally restricted to one quiz.
func (s *AttemptService) List(ctx context.Context, userID, quizID string) ([]store.Attempt, error) {
	return s.attempts.ListByUser(ctx, userID, quizID)
}

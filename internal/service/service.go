// Package service implements the quiz workflows on top of the store:
// generating quizzes from text, taking and grading attempts, and sharing.
// Every method takes the acting user's id and enforces ownership.
package service

import (
	"context"
	"time"

	"github.com/amrixahmad/questionsmith/internal/events"
	"github.com/amrixahmad/questionsmith/internal/logging"
	"github.com/amrixahmad/questionsmith/internal/quizgen"
	"github.com/amrixahmad/questionsmith/internal/store"
)

// Services bundles every service over one store.
type Services struct {
	Generation *GenerationService
	Quizzes    *QuizService
	Attempts   *AttemptService
	Sharing    *SharingService
}

// New wires all services. gen may be nil when generation is unavailable,
// pub and logger may be nil.
func New(st *store.Store, gen quizgen.Generator, pub events.Publisher, logger logging.Logger) *Services {
	if pub == nil {
		pub = events.Noop{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Services{
		Generation: NewGenerationService(st, gen, pub, logger),
		Quizzes:    NewQuizService(st, logger),
		Attempts:   NewAttemptService(st, pub, logger),
		Sharing:    NewSharingService(st, logger),
	}
}

// publish sends e and logs a failure. Event delivery never fails the
// operation that produced it.
func publish(ctx context.Context, pub events.Publisher, logger logging.Logger, e events.Event) {
	if err := pub.Publish(ctx, e); err != nil {
		logger.WarnContext(ctx, "event not published", "event_type", e.Type, "event_id", e.ID, "error", err)
	}
}

// canView reports whether userID may see q.
func canView(q *store.Quiz, userID string) bool {
	return q.UserID == userID || q.Status == store.StatusPublished
}

type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

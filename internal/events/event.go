// Package events publishes domain events about quizzes and attempts over
// watermill. The in-process GoChannel is the default transport; Kafka is
// used when configured.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Topics. Each event type is published on the topic of the same name.
const (
	TopicQuizGenerated    = "quiz.generated"
	TopicAttemptSubmitted = "attempt.submitted"
)

// Event is the JSON envelope every message carries.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// New builds an event with a fresh ID and the current time.
func New(eventType string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// QuizGenerated is the payload of TopicQuizGenerated.
type QuizGenerated struct {
	QuizID        string `json:"quiz_id"`
	UserID        string `json:"user_id"`
	Title         string `json:"title"`
	Requested     int    `json:"requested"`
	QuestionCount int    `json:"question_count"`
	Candidates    int    `json:"candidates"`
	Rejected      int    `json:"rejected"`
	Report        string `json:"report"`
}

// AttemptSubmitted is the payload of TopicAttemptSubmitted.
type AttemptSubmitted struct {
	AttemptID       string `json:"attempt_id"`
	QuizID          string `json:"quiz_id"`
	UserID          string `json:"user_id"`
	Score           int    `json:"score"`
	MaxScore        int    `json:"max_score"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

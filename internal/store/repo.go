package store

import (
	"context"
	"time"

	"github.com/amrixahmad/questionsmith/internal/quiz"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match ("" = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// ListOpts paginates list queries. Zero Limit means unlimited.
type ListOpts struct {
	Limit  int
	Offset int
}

// Content source types.
const (
	SourceText   = "text"
	SourceTopic  = "topic"
	SourceURL    = "url"
	SourceCustom = "custom"
)

// ContentSource is user-submitted material a quiz was generated from.
type ContentSource struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Body      string
	CreatedAt time.Time
}

// QuizStatus is the publication state of a quiz.
type QuizStatus string

const (
	StatusDraft     QuizStatus = "draft"
	StatusPublished QuizStatus = "published"
)

// Quiz is a persisted quiz header. Questions are loaded separately.
type Quiz struct {
	ID            string
	UserID        string
	SourceID      string // empty when the quiz has no source
	Title         string
	Status        QuizStatus
	Difficulty    quiz.Difficulty
	QuestionCount int
	MaxAttempts   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Attempt is one user's run through a quiz.
type Attempt struct {
	ID              string
	QuizID          string
	UserID          string
	StartedAt       time.Time
	SubmittedAt     *time.Time
	Score           *int
	MaxScore        *int
	DurationSeconds *int
}

// Submitted reports whether the attempt has been graded.
func (a *Attempt) Submitted() bool { return a.SubmittedAt != nil }

// AnswerRow is a graded response as stored. Response is kept verbatim.
type AnswerRow struct {
	QuestionID string
	Response   any
	IsCorrect  bool
	Score      int
}

// SubmitInput carries everything written when an attempt is submitted.
type SubmitInput struct {
	Answers         []AnswerRow
	Score           int
	MaxScore        int
	SubmittedAt     time.Time
	DurationSeconds int
}

// ShareLink is a tokenized public link to a quiz.
type ShareLink struct {
	ID        string
	QuizID    string
	Token     string
	IsPublic  bool
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Expired reports whether the link has an expiry at or before now.
func (l *ShareLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID int
	LLMRequestEventData
	Timestamp time.Time
}

// LLMUsageStat aggregates LLM usage for one purpose.
type LLMUsageStat struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// SourceRepo stores content sources.
type SourceRepo interface {
	// Create assigns ID and CreatedAt when unset and inserts src.
	Create(ctx context.Context, src *ContentSource) error
}

// QuizRepo stores quizzes and their questions.
type QuizRepo interface {
	// CreateWithQuestions inserts q and all questions in one transaction.
	// It assigns IDs and timestamps to q and IDs to questions in place.
	CreateWithQuestions(ctx context.Context, q *Quiz, questions []quiz.CanonicalQuestion) error

	Get(ctx context.Context, id string) (*Quiz, error)

	// ListByUser returns the user's quizzes, newest first.
	ListByUser(ctx context.Context, userID string, opts ListOpts) ([]Quiz, error)

	// Questions returns a quiz's questions in position order.
	Questions(ctx context.Context, quizID string) ([]quiz.CanonicalQuestion, error)

	SetStatus(ctx context.Context, id string, status QuizStatus) error
	SetMaxAttempts(ctx context.Context, id string, n int) error

	// Delete removes the quiz; questions, attempts and links cascade.
	Delete(ctx context.Context, id string) error
}

// AttemptRepo stores attempts and their graded answers.
type AttemptRepo interface {
	Start(ctx context.Context, a *Attempt) error
	Get(ctx context.Context, id string) (*Attempt, error)

	// Submit writes the answers and the aggregate score in one
	// transaction. It returns ErrConflict if the attempt was already
	// submitted and ErrNotFound if it does not exist.
	Submit(ctx context.Context, attemptID string, in SubmitInput) error

	// ListByUser returns the user's attempts, newest first. A non-empty
	// quizID restricts the list to that quiz.
	ListByUser(ctx context.Context, userID, quizID string) ([]Attempt, error)

	CountByUser(ctx context.Context, userID, quizID string) (int, error)
	Answers(ctx context.Context, attemptID string) ([]AnswerRow, error)
}

// ShareLinkRepo stores share links.
type ShareLinkRepo interface {
	// GetPublicByQuiz returns the quiz's public link or ErrNotFound.
	GetPublicByQuiz(ctx context.Context, quizID string) (*ShareLink, error)
	Create(ctx context.Context, link *ShareLink) error
	GetByToken(ctx context.Context, token string) (*ShareLink, error)

	// DeleteByQuiz removes every link of the quiz and returns how many
	// were removed.
	DeleteByQuiz(ctx context.Context, quizID string) (int, error)
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStat, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}

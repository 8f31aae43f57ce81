package api

import (
	"time"

	"github.com/amrixahmad/questionsmith/internal/quiz"
	"github.com/amrixahmad/questionsmith/internal/service"
	"github.com/amrixahmad/questionsmith/internal/store"
)

type quizView struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Status        string          `json:"status"`
	Difficulty    quiz.Difficulty `json:"difficulty,omitempty"`
	QuestionCount int             `json:"questionCount"`
	MaxAttempts   int             `json:"maxAttempts"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Questions     []questionView  `json:"questions,omitempty"`
}

// questionView carries the canonical answer only when withAnswers is set.
type questionView struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Stem        string        `json:"stem"`
	Options     []quiz.Option `json:"options,omitempty"`
	Order       int           `json:"order"`
	Tags        []string      `json:"tags,omitempty"`
	Answer      any           `json:"answer,omitempty"`
	AnswerText  string        `json:"answerText,omitempty"`
	Explanation string        `json:"explanation,omitempty"`
}

func newQuizView(q *store.Quiz) quizView {
	return quizView{
		ID:            q.ID,
		Title:         q.Title,
		Status:        string(q.Status),
		Difficulty:    q.Difficulty,
		QuestionCount: q.QuestionCount,
		MaxAttempts:   q.MaxAttempts,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

func newQuizDetailView(d *service.QuizDetail, withAnswers bool) quizView {
	v := newQuizView(d.Quiz)
	v.Questions = make([]questionView, len(d.Questions))
	for i := range d.Questions {
		v.Questions[i] = newQuestionView(&d.Questions[i], withAnswers)
	}
	return v
}

func newQuestionView(q *quiz.CanonicalQuestion, withAnswers bool) questionView {
	v := questionView{
		ID:      q.ID,
		Type:    string(q.Type),
		Stem:    q.Stem,
		Options: q.Options,
		Order:   q.Order,
		Tags:    q.Tags,
	}
	if withAnswers {
		v.Answer = q.Answer
		v.AnswerText = quiz.FormatAnswer(q)
		v.Explanation = q.Explanation
	}
	return v
}

type attemptView struct {
	ID              string       `json:"id"`
	QuizID          string       `json:"quizId"`
	StartedAt       time.Time    `json:"startedAt"`
	SubmittedAt     *time.Time   `json:"submittedAt,omitempty"`
	Score           *int         `json:"score,omitempty"`
	MaxScore        *int         `json:"maxScore,omitempty"`
	DurationSeconds *int         `json:"durationSeconds,omitempty"`
	Answers         []answerView `json:"answers,omitempty"`
}

type answerView struct {
	QuestionID string `json:"questionId"`
	Response   any    `json:"response"`
	IsCorrect  bool   `json:"isCorrect"`
	Score      int    `json:"score"`
}

func newAttemptView(a *store.Attempt, answers []store.AnswerRow) attemptView {
	v := attemptView{
		ID:              a.ID,
		QuizID:          a.QuizID,
		StartedAt:       a.StartedAt,
		SubmittedAt:     a.SubmittedAt,
		Score:           a.Score,
		MaxScore:        a.MaxScore,
		DurationSeconds: a.DurationSeconds,
	}
	for _, ans := range answers {
		v.Answers = append(v.Answers, answerView(ans))
	}
	return v
}

type shareLinkView struct {
	Token     string     `json:"token"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

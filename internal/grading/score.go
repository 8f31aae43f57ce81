package grading

import (
	"github.com/amrixahmad/questionsmith/internal/quiz"
)

// SubmittedResponse is one raw answer from a test taker.
type SubmittedResponse struct {
	QuestionID string `json:"questionId"`
	Response   any    `json:"response"`
}

// AnswerRecord is the graded form of a SubmittedResponse. Response is kept
// verbatim for auditing.
type AnswerRecord struct {
	QuestionID string `json:"questionId"`
	Response   any    `json:"response"`
	IsCorrect  bool   `json:"isCorrect"`
	Score      int    `json:"score"`
}

// Scorecard is the result of grading an attempt.
type Scorecard struct {
	Records  []AnswerRecord `json:"records"`
	Score    int            `json:"score"`
	MaxScore int            `json:"maxScore"`
}

// ScoreAttempt grades responses against questions. Responses for unknown
// question ids are skipped, and only the first response to a question is
// graded. MaxScore counts the answered questions; unanswered questions are
// not counted.
func ScoreAttempt(questions []quiz.CanonicalQuestion, responses []SubmittedResponse) Scorecard {
	byID := make(map[string]*quiz.CanonicalQuestion, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	card := Scorecard{Records: make([]AnswerRecord, 0, len(responses))}
	answered := make(map[string]bool)
	for _, r := range responses {
		q, ok := byID[r.QuestionID]
		if !ok || answered[r.QuestionID] {
			continue
		}
		answered[r.QuestionID] = true

		correct := Grade(q.Type, q.Answer, q.Options, r.Response)
		rec := AnswerRecord{QuestionID: r.QuestionID, Response: r.Response, IsCorrect: correct}
		if correct {
			rec.Score = 1
		}
		card.Records = append(card.Records, rec)
		card.Score += rec.Score
		card.MaxScore++
	}
	return card
}

package grading

import (
	"testing"

	"github.com/amrixahmad/questionsmith/internal/quiz"
)

func sampleQuestions() []quiz.CanonicalQuestion {
	return []quiz.CanonicalQuestion{
		{
			ID:      "q1",
			Type:    quiz.MultipleChoice,
			Stem:    "2+2?",
			Options: []quiz.Option{{ID: "1", Text: "3"}, {ID: "2", Text: "4"}, {ID: "3", Text: "5"}},
			Answer:  1,
		},
		{ID: "q2", Type: quiz.TrueFalse, Stem: "Sky is blue", Answer: true},
		{ID: "q3", Type: quiz.ShortAnswer, Stem: "Capital of France?", Answer: "Paris"},
	}
}

func TestScoreAttempt(t *testing.T) {
	card := ScoreAttempt(sampleQuestions(), []SubmittedResponse{
		{QuestionID: "q1", Response: "4"},
		{QuestionID: "q2", Response: "no"},
		{QuestionID: "q3", Response: " paris"},
		{QuestionID: "missing", Response: "x"},
	})

	if card.Score != 2 || card.MaxScore != 3 {
		t.Errorf("score = %d/%d, want 2/3", card.Score, card.MaxScore)
	}
	if len(card.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(card.Records))
	}
	wantCorrect := []bool{true, false, true}
	for i, rec := range card.Records {
		if rec.IsCorrect != wantCorrect[i] {
			t.Errorf("record %s correct = %v, want %v", rec.QuestionID, rec.IsCorrect, wantCorrect[i])
		}
		if (rec.Score == 1) != rec.IsCorrect {
			t.Errorf("record %s score = %d inconsistent with correctness", rec.QuestionID, rec.Score)
		}
	}
	if card.Records[2].Response != " paris" {
		t.Errorf("response must be kept verbatim, got %v", card.Records[2].Response)
	}
}

func TestScoreAttempt_DuplicateResponses(t *testing.T) {
	card := ScoreAttempt(sampleQuestions(), []SubmittedResponse{
		{QuestionID: "q2", Response: true},
		{QuestionID: "q2", Response: true},
	})
	if card.Score != 1 || card.MaxScore != 1 || len(card.Records) != 1 {
		t.Errorf("got %d/%d with %d records, want 1/1 with 1 record", card.Score, card.MaxScore, len(card.Records))
	}
}

func TestScoreAttempt_Empty(t *testing.T) {
	card := ScoreAttempt(sampleQuestions(), nil)
	if card.Score != 0 || card.MaxScore != 0 || len(card.Records) != 0 {
		t.Errorf("unexpected scorecard: %+v", card)
	}
}

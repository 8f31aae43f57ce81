// Package grading decides whether a submitted response matches a
// question's canonical answer and scores whole attempts.
package grading

import (
	"github.com/amrixahmad/questionsmith/internal/quiz"
)

// comparator reports whether response matches expected. rawOptions is the
// question's stored option list in any shape NormalizeOptions accepts.
type comparator func(expected, rawOptions, response any) bool

var comparators = map[quiz.QuestionType]comparator{
	quiz.MultipleChoice: compareChoice,
	quiz.TrueFalse:      compareBool,
	quiz.ShortAnswer:    compareText,
	quiz.FillBlank:      compareText,
}

// Grade compares a raw response against the canonical expected answer for a
// question of type t. It never errors: anything that cannot be resolved is
// graded incorrect, and an unknown type is always incorrect.
func Grade(t quiz.QuestionType, expected, rawOptions, response any) bool {
	cmp, ok := comparators[t]
	if !ok {
		return false
	}
	return cmp(expected, rawOptions, response)
}

func compareChoice(expected, rawOptions, response any) bool {
	options := quiz.NormalizeOptions(rawOptions)
	want, ok := quiz.ResolveOptionIndex(expected, options)
	if !ok {
		return false
	}
	got, ok := quiz.ResolveOptionIndex(response, options)
	if !ok {
		return false
	}
	return want == got
}

func compareBool(expected, _, response any) bool {
	return CoerceBool(expected) == CoerceBool(response)
}

func compareText(expected, _, response any) bool {
	return NormalizeText(expected) == NormalizeText(response)
}

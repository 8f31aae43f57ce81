package quiz

import "strings"

// QuestionType identifies how a question is answered and graded.
type QuestionType string

const (
	// MultipleChoice questions carry 2-4 options; the answer is a 0-based index.
	MultipleChoice QuestionType = "multiple_choice"

	// TrueFalse questions have a strict boolean answer.
	TrueFalse QuestionType = "true_false"

	// ShortAnswer questions have a short free-text answer.
	ShortAnswer QuestionType = "short_answer"

	// FillBlank questions have the missing text as the answer.
	FillBlank QuestionType = "fill_blank"
)

// AllTypes lists every question type in canonical order. Packages that
// dispatch per type keep a rule for each entry; their tests walk this list.
var AllTypes = []QuestionType{MultipleChoice, TrueFalse, ShortAnswer, FillBlank}

// ParseQuestionType maps a raw type string to a QuestionType.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseQuestionType(s string) (QuestionType, bool) {
	t := QuestionType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Valid reports whether t is one of AllTypes.
func (t QuestionType) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsText reports whether t is answered with free text.
func (t QuestionType) IsText() bool {
	return t == ShortAnswer || t == FillBlank
}

// Difficulty is the overall difficulty label of a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Option is a single multiple choice option as persisted.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// RawQuestion is a question as produced by a generator, before
// sanitization. Options and Answer keep whatever shape the generator
// emitted (JSON-decoded into any).
type RawQuestion struct {
	ID          string   `json:"id,omitempty"`
	Type        string   `json:"type"`
	Stem        string   `json:"stem"`
	Options     any      `json:"options,omitempty"`
	Answer      any      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Order       *int     `json:"order,omitempty"`
}

// CanonicalQuestion is a sanitized question ready for persistence.
type CanonicalQuestion struct {
	// ID is assigned by the persistence layer; empty before storage.
	ID string `json:"id,omitempty"`

	Type QuestionType `json:"type"`

	// Stem is the trimmed, non-empty question prompt.
	Stem string `json:"stem"`

	// Options is set only for MultipleChoice: 2-4 deduplicated entries.
	Options []Option `json:"options"`

	// Answer is the canonical answer. Its dynamic type depends on Type:
	//   MultipleChoice: int, a 0-based index into Options
	//   TrueFalse:      bool
	//   ShortAnswer, FillBlank: string, trimmed and non-empty
	Answer any `json:"answer"`

	Explanation string   `json:"explanation,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Order is the 1-based position within the quiz. Zero means unset.
	Order int `json:"order"`
}

// OptionTexts returns the option texts in order.
func (q *CanonicalQuestion) OptionTexts() []string {
	out := make([]string, len(q.Options))
	for i, o := range q.Options {
		out[i] = o.Text
	}
	return out
}

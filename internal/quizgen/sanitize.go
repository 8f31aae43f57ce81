package quizgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amrixahmad/questionsmith/internal/quiz"
)

// MaxOptions is the maximum number of options kept on a multiple choice question.
const MaxOptions = 4

// MinOptions is the minimum number of distinct options a multiple choice
// question needs to survive sanitization.
const MinOptions = 2

// sanitizeFunc applies the type-specific rules to a candidate whose stem
// has already been trimmed and checked.
type sanitizeFunc func(q *quiz.CanonicalQuestion, raw quiz.RawQuestion) *Rejection

// sanitizers holds one rule per question type.
var sanitizers = map[quiz.QuestionType]sanitizeFunc{
	quiz.MultipleChoice: sanitizeMultipleChoice,
	quiz.TrueFalse:      sanitizeTrueFalse,
	quiz.ShortAnswer:    sanitizeText,
	quiz.FillBlank:      sanitizeText,
}

// Sanitize validates and canonicalizes a single generated question.
func Sanitize(raw quiz.RawQuestion) Result {
	qt, ok := quiz.ParseQuestionType(raw.Type)
	if !ok {
		return reject(raw.Type, ReasonUnknownType, fmt.Sprintf("unsupported type %q", raw.Type))
	}
	rule, ok := sanitizers[qt]
	if !ok {
		return reject(raw.Type, ReasonUnknownType, fmt.Sprintf("no sanitizer for %q", qt))
	}

	stem := strings.TrimSpace(raw.Stem)
	if stem == "" {
		return reject(string(qt), ReasonEmptyStem, "stem is empty")
	}

	q := &quiz.CanonicalQuestion{
		Type:        qt,
		Stem:        stem,
		Explanation: strings.TrimSpace(raw.Explanation),
		Tags:        cleanTags(raw.Tags),
	}
	if raw.Order != nil && *raw.Order > 0 {
		q.Order = *raw.Order
	}

	if rej := rule(q, raw); rej != nil {
		return Result{Rejection: rej}
	}
	return Result{Question: q}
}

// SanitizeAll sanitizes a batch, returning accepted questions in input
// order together with a report of the rejections.
func SanitizeAll(raws []quiz.RawQuestion) ([]quiz.CanonicalQuestion, Report) {
	var report Report
	accepted := make([]quiz.CanonicalQuestion, 0, len(raws))
	for _, raw := range raws {
		res := Sanitize(raw)
		report.add(res)
		if res.OK() {
			accepted = append(accepted, *res.Question)
		}
	}
	return accepted, report
}

func sanitizeMultipleChoice(q *quiz.CanonicalQuestion, raw quiz.RawQuestion) *Rejection {
	entries := optionEntries(raw.Options)

	seen := make(map[string]bool, len(entries))
	usedIDs := make(map[string]bool, len(entries))
	options := make([]quiz.Option, 0, MaxOptions)
	for _, e := range entries {
		text := strings.TrimSpace(e.text)
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if seen[key] {
			continue
		}
		seen[key] = true

		id := e.id
		if id == "" || usedIDs[id] {
			for next := len(options) + 1; ; next++ {
				id = strconv.Itoa(next)
				if !usedIDs[id] {
					break
				}
			}
		}
		usedIDs[id] = true
		options = append(options, quiz.Option{ID: id, Text: text})
		if len(options) == MaxOptions {
			break
		}
	}

	if len(options) < MinOptions {
		return &Rejection{
			Type:    string(q.Type),
			Reason:  ReasonTooFewOptions,
			Message: fmt.Sprintf("need at least %d distinct options, got %d", MinOptions, len(options)),
		}
	}

	texts := make([]string, len(options))
	for i, o := range options {
		texts[i] = o.Text
	}
	idx, ok := quiz.ResolveOptionIndex(raw.Answer, texts)
	if !ok {
		return &Rejection{
			Type:    string(q.Type),
			Reason:  ReasonUnresolvedAnswer,
			Message: fmt.Sprintf("answer %q does not match any of %d options", quiz.Stringify(raw.Answer), len(options)),
		}
	}

	q.Options = options
	q.Answer = idx
	return nil
}

func sanitizeTrueFalse(q *quiz.CanonicalQuestion, raw quiz.RawQuestion) *Rejection {
	b, ok := quiz.ParseBool(raw.Answer)
	if !ok {
		return &Rejection{
			Type:    string(q.Type),
			Reason:  ReasonUnresolvedAnswer,
			Message: fmt.Sprintf("answer %q is not a recognized boolean", quiz.Stringify(raw.Answer)),
		}
	}
	q.Answer = b
	return nil
}

func sanitizeText(q *quiz.CanonicalQuestion, raw quiz.RawQuestion) *Rejection {
	answer := strings.TrimSpace(quiz.Stringify(raw.Answer))
	if answer == "" {
		return &Rejection{
			Type:    string(q.Type),
			Reason:  ReasonEmptyAnswer,
			Message: "answer is empty",
		}
	}
	q.Answer = answer
	return nil
}

// optionEntry is one normalized option along with the id it carried in
// the generator output, if any.
type optionEntry struct {
	id   string
	text string
}

// optionEntries normalizes raw options element by element so that each
// surviving text keeps the id of the record it came from.
func optionEntries(raw any) []optionEntry {
	items, ok := raw.([]any)
	if !ok {
		texts := quiz.NormalizeOptions(raw)
		entries := make([]optionEntry, len(texts))
		for i, t := range texts {
			entries[i] = optionEntry{text: t}
		}
		return entries
	}

	entries := make([]optionEntry, 0, len(items))
	for _, item := range items {
		texts := quiz.NormalizeOptions([]any{item})
		if len(texts) == 0 {
			continue
		}
		e := optionEntry{text: texts[0]}
		if m, ok := item.(map[string]any); ok {
			if id, ok := m["id"].(string); ok {
				e.id = strings.TrimSpace(id)
			}
		}
		entries = append(entries, e)
	}
	return entries
}

func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func reject(qt string, reason Reason, msg string) Result {
	return Result{Rejection: &Rejection{Type: qt, Reason: reason, Message: msg}}
}

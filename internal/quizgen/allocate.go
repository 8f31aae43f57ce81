package quizgen

import (
	"fmt"
	"strings"

	"github.com/amrixahmad/questionsmith/internal/quiz"
)

// TypeCount is the number of slots given to one question type.
type TypeCount struct {
	Type  quiz.QuestionType
	Count int
}

// Distribution splits count across types as evenly as integer division
// allows. The remainder goes to the earliest types, so the counts always
// sum to count.
func Distribution(types []quiz.QuestionType, count int) []TypeCount {
	if len(types) == 0 || count <= 0 {
		return nil
	}
	base := count / len(types)
	rem := count % len(types)

	out := make([]TypeCount, len(types))
	for i, t := range types {
		n := base
		if rem > 0 {
			n++
			rem--
		}
		out[i] = TypeCount{Type: t, Count: n}
	}
	return out
}

// FormatDistribution renders a distribution as "multiple_choice:4, true_false:3".
func FormatDistribution(dist []TypeCount) string {
	parts := make([]string, len(dist))
	for i, tc := range dist {
		parts[i] = fmt.Sprintf("%s:%d", tc.Type, tc.Count)
	}
	return strings.Join(parts, ", ")
}

// Allocate selects up to count questions from pool matching the requested
// type mix.
//
// Each type first receives its Distribution share, taken from that type's
// candidates in pool order. Any shortfall is then filled from the
// remaining candidates of the requested types, in requested-type order.
// The result is never longer than count but may be shorter when the pool
// runs out. Questions without an explicit Order get their 1-based position.
func Allocate(pool []quiz.CanonicalQuestion, requestedTypes []quiz.QuestionType, count int) []quiz.CanonicalQuestion {
	types := requestedTypeList(requestedTypes)
	if count <= 0 || len(types) == 0 {
		return nil
	}

	byType := make(map[quiz.QuestionType][]quiz.CanonicalQuestion, len(types))
	for _, q := range pool {
		byType[q.Type] = append(byType[q.Type], q)
	}

	selected := make([]quiz.CanonicalQuestion, 0, count)
	taken := make(map[quiz.QuestionType]int, len(types))
	for _, tc := range Distribution(types, count) {
		n := min(tc.Count, len(byType[tc.Type]))
		selected = append(selected, byType[tc.Type][:n]...)
		taken[tc.Type] = n
	}

	for _, t := range types {
		short := count - len(selected)
		if short <= 0 {
			break
		}
		rest := byType[t][taken[t]:]
		if len(rest) > short {
			rest = rest[:short]
		}
		selected = append(selected, rest...)
	}

	if len(selected) > count {
		selected = selected[:count]
	}
	for i := range selected {
		if selected[i].Order <= 0 {
			selected[i].Order = i + 1
		}
	}
	return selected
}

// requestedTypeList deduplicates types and drops unknown ones. An empty
// result defaults to multiple choice only.
func requestedTypeList(types []quiz.QuestionType) []quiz.QuestionType {
	seen := make(map[quiz.QuestionType]bool, len(types))
	out := make([]quiz.QuestionType, 0, len(types))
	for _, t := range types {
		if !t.Valid() || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		out = append(out, quiz.MultipleChoice)
	}
	return out
}

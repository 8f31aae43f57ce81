package grading

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/amrixahmad/questionsmith/internal/quiz"
)

// CoerceBool is the lenient boolean coercion used at grading time.
// Spellings quiz.ParseBool does not recognize count as false, so a garbage
// response to a false statement is graded correct. Stored answers were
// already rejected by the sanitizer when unresolved.
func CoerceBool(value any) bool {
	b, _ := quiz.ParseBool(value)
	return b
}

// multiValueSep joins sorted list elements in NormalizeText.
const multiValueSep = "|"

// NormalizeText renders a text answer into a comparable form. Lists compare
// order-insensitively; objects compare by their JSON encoding, which has
// sorted keys.
func NormalizeText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "true"
		}
		return "false"
	case []string:
		return joinSorted(v)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = quiz.Stringify(e)
		}
		return joinSorted(parts)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return normalizePart(quiz.Stringify(v))
	}
}

func joinSorted(parts []string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = normalizePart(p)
	}
	sort.Strings(out)
	return strings.Join(out, multiValueSep)
}

func normalizePart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

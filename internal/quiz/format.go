package quiz

import "fmt"

// IndexToLetter returns the display letter for a 0-based option index
// ("A" for 0). Indices outside A-Z yield "".
func IndexToLetter(i int) string {
	if i < 0 || i > 25 {
		return ""
	}
	return string(rune('A' + i))
}

// FormatAnswer renders the canonical answer of q for display:
// "B. Paris" for multiple choice, "True"/"False", or the answer text.
func FormatAnswer(q *CanonicalQuestion) string {
	switch q.Type {
	case MultipleChoice:
		i, ok := ResolveOptionIndex(q.Answer, q.OptionTexts())
		if !ok {
			return Stringify(q.Answer)
		}
		return fmt.Sprintf("%s. %s", IndexToLetter(i), q.Options[i].Text)
	case TrueFalse:
		if b, ok := ParseBool(q.Answer); ok {
			if b {
				return "True"
			}
			return "False"
		}
		return Stringify(q.Answer)
	default:
		return Stringify(q.Answer)
	}
}

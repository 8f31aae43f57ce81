package quiz

import "strings"

// ParseBool strictly coerces a true/false answer. Recognized spellings
// (case-insensitive) are true, t, yes, y, 1 and false, f, no, n, 0.
// Booleans map to themselves and the numbers 1 and 0 to true and false.
// Anything else is unresolved and ok is false.
func ParseBool(value any) (b bool, ok bool) {
	if v, isBool := value.(bool); isBool {
		return v, true
	}
	if f, isNum := asNumber(value); isNum {
		switch f {
		case 1:
			return true, true
		case 0:
			return false, true
		}
		return false, false
	}

	switch strings.ToLower(strings.TrimSpace(Stringify(value))) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	}
	return false, false
}

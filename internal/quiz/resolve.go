package quiz

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	letterPattern       = regexp.MustCompile(`^([a-z])[).]?$`)
	letterDigitsPattern = regexp.MustCompile(`^([a-z])\s*(\d+)$`)
	phraseLetterPattern = regexp.MustCompile(`^(?:option|choice|answer)\s+([a-z])$`)
	digitsPattern       = regexp.MustCompile(`^\d+$`)
	phraseDigitsPattern = regexp.MustCompile(`^(?:option|choice|answer)\s+(\d+)$`)
)

// ResolveOptionIndex maps an answer encoding to a 0-based index into
// options. The second result is false when nothing resolves.
//
// Interpretations are tried in order. A string matching one of the letter
// or phrase shapes resolves only through that shape, so an out-of-range
// letter is unresolved rather than matched against the texts. A digit
// string that fits neither base falls through to the text match.
//
//   - numbers are floored and taken as 0-based
//   - a single letter, optionally followed by ")" or "." ("b", "C.", "a)")
//   - a letter followed by digits ("a3", "A 3"); the digits are 1-based
//     and the letter is ignored
//   - "option", "choice" or "answer" followed by a letter ("option c")
//   - a digit string, as 0-based first and then as 1-based
//   - "option", "choice" or "answer" followed by 1-based digits
//   - a case-insensitive match against the option texts
//
// Matching is case-insensitive and ignores surrounding whitespace.
func ResolveOptionIndex(value any, options []string) (int, bool) {
	n := len(options)
	if n == 0 {
		return 0, false
	}

	if f, ok := asNumber(value); ok {
		return floorIndex(f, n)
	}

	s := strings.TrimSpace(Stringify(value))
	if s == "" {
		return 0, false
	}
	lower := strings.ToLower(s)

	// A string shaped like a letter or a numbered choice is answered by
	// that shape alone; only bare digits may fall through to the texts.
	if m := letterPattern.FindStringSubmatch(lower); m != nil {
		return letterIndex(m[1], n)
	}
	if m := letterDigitsPattern.FindStringSubmatch(lower); m != nil {
		return oneBased(m[2], n)
	}
	if m := phraseLetterPattern.FindStringSubmatch(lower); m != nil {
		return letterIndex(m[1], n)
	}
	if digitsPattern.MatchString(lower) {
		if i, ok := zeroBased(lower, n); ok {
			return i, true
		}
		if i, ok := oneBased(lower, n); ok {
			return i, true
		}
	}
	if m := phraseDigitsPattern.FindStringSubmatch(lower); m != nil {
		return oneBased(m[1], n)
	}

	for i, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), s) {
			return i, true
		}
	}
	return 0, false
}

func letterIndex(letter string, n int) (int, bool) {
	return inRange(int(letter[0]-'a'), n)
}

func zeroBased(digits string, n int) (int, bool) {
	i, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return inRange(i, n)
}

func oneBased(digits string, n int) (int, bool) {
	i, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return inRange(i-1, n)
}

func inRange(i, n int) (int, bool) {
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

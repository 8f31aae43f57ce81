package quizgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert quiz writer. You turn source material into clear, accurate quiz questions.

Rules:
- Respond with a single JSON object: {title, difficulty, questionCount, questions}. No markdown, no prose, no code fences.
- Every question has a "type", a "stem" and an "answer". Use only types listed in allowedTypes.
- multiple_choice: give 4 plausible, distinct options as objects {id, text}. Set "answer" to the letter (A-D) of the correct option.
- true_false: "answer" must be the JSON boolean true or false.
- short_answer and fill_blank: "answer" must be a short text string. For fill_blank, mark the blank in the stem with "____".
- Questions must be answerable from the source material alone. Do not invent facts.
- Vary the questions; do not ask the same thing twice.`

// buildUserMessage constructs the user message from the source text,
// normalized params and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	p := input.Params
	candidates := p.QuestionCount + max(cfg.ExtraCandidates, 0)

	text := strings.TrimSpace(input.Text)
	if cfg.MaxSourceChars > 0 && len(text) > cfg.MaxSourceChars {
		text = truncateUTF8(text, cfg.MaxSourceChars)
	}

	var b strings.Builder

	b.WriteString("Source content:\n")
	b.WriteString(text)
	b.WriteString("\n---\n")

	fmt.Fprintf(&b, "questionCount: %d\n", candidates)
	fmt.Fprintf(&b, "difficulty: %s\n", p.Difficulty)
	fmt.Fprintf(&b, "allowedTypes: %s\n", joinTypes(p))
	if p.Language != "" {
		fmt.Fprintf(&b, "language: %s\n", p.Language)
	}
	if len(p.Types) > 1 {
		fmt.Fprintf(&b, "distribution: %s\n", FormatDistribution(Distribution(p.Types, candidates)))
	}

	if p.WithExplanations {
		b.WriteString("\nInclude a concise explanation for each question in the \"explanation\" field.")
	} else {
		b.WriteString("\nExplanations are optional; omit them when unnecessary.")
	}

	return b.String()
}

func joinTypes(p GenerationParams) string {
	names := make([]string, len(p.Types))
	for i, t := range p.Types {
		names[i] = string(t)
	}
	return strings.Join(names, "|")
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

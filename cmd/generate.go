package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amrixahmad/questionsmith/internal/quiz"
	"github.com/amrixahmad/questionsmith/internal/quizgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a draft quiz from a text file or stdin",
	Example: `  questionsmith generate -f notes.md --count 8 --types multiple_choice,true_false
  cat chapter.txt | questionsmith generate --difficulty hard --language de`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd)
		if err != nil {
			return err
		}
		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, appOptions{withLLM: true})
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.svc.Generation.GenerateFromText(cmd.Context(), userFlag(cmd), text, params)
		if err != nil {
			return err
		}

		fmt.Printf("Created quiz %s (%s)\n", res.Quiz.ID, res.Quiz.Status)
		fmt.Printf("Title:      %s\n", out.title.Render(res.Quiz.Title))
		fmt.Printf("Difficulty: %s\n", res.Quiz.Difficulty)
		fmt.Printf("Questions:  %d of %d requested\n", len(res.Questions), params.Normalize().QuestionCount)
		if res.Report.Rejected() > 0 {
			fmt.Printf("Candidates: %s\n", res.Report)
		}
		fmt.Println()
		printQuestions(res.Questions, true)
		return nil
	},
}

func readSource(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("file")
	var (
		b   []byte
		err error
	)
	switch path {
	case "", "-":
		b, err = io.ReadAll(cmd.InOrStdin())
	default:
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", fmt.Errorf("source text is empty")
	}
	return text, nil
}

func paramsFromFlags(cmd *cobra.Command) (quizgen.GenerationParams, error) {
	p := quizgen.DefaultParams()
	p.QuestionCount, _ = cmd.Flags().GetInt("count")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	p.Difficulty = quiz.Difficulty(difficulty)
	p.WithExplanations, _ = cmd.Flags().GetBool("explanations")
	p.Language, _ = cmd.Flags().GetString("language")

	types, _ := cmd.Flags().GetStringSlice("types")
	p.Types = p.Types[:0]
	for _, t := range types {
		qt, ok := quiz.ParseQuestionType(t)
		if !ok {
			return p, fmt.Errorf("unknown question type %q (want one of %s)", t, typeNames())
		}
		p.Types = append(p.Types, qt)
	}
	return p, nil
}

func typeNames() string {
	names := make([]string, len(quiz.AllTypes))
	for i, t := range quiz.AllTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// printQuestions renders questions for the terminal, with answers when
// withAnswers is set.
func printQuestions(questions []quiz.CanonicalQuestion, withAnswers bool) {
	for i := range questions {
		q := &questions[i]
		fmt.Printf("%s %s %s\n", out.heading.Render(fmt.Sprintf("%d.", q.Order)), out.dim.Render("["+string(q.Type)+"]"), q.Stem)
		for j, o := range q.Options {
			fmt.Printf("     %s) %s\n", quiz.IndexToLetter(j), o.Text)
		}
		if withAnswers {
			fmt.Printf("   Answer: %s\n", out.answer.Render(quiz.FormatAnswer(q)))
			if q.Explanation != "" {
				fmt.Printf("   Why:    %s\n", q.Explanation)
			}
		}
		fmt.Printf("   %s\n\n", out.dim.Render("id: "+q.ID))
	}
}

func init() {
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringP("file", "f", "", "Source text file (default: stdin)")
	f.IntP("count", "c", quizgen.DefaultQuestionCount, "Number of questions")
	f.StringSliceP("types", "t", []string{string(quiz.MultipleChoice)}, "Question types: "+typeNames())
	f.StringP("difficulty", "d", string(quiz.DifficultyMedium), "easy, medium or hard")
	f.Bool("explanations", true, "Ask for an explanation per question")
	f.StringP("language", "l", "", "Language to write questions in")
}

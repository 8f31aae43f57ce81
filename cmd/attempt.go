package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amrixahmad/questionsmith/internal/grading"
	"github.com/amrixahmad/questionsmith/internal/quiz"
)

var attemptCmd = &cobra.Command{
	Use:   "attempt",
	Short: "Take quizzes and review graded attempts",
}

var attemptStartCmd = &cobra.Command{
	Use:   "start <quiz-id>",
	Short: "Start an attempt and print the questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			ctx := cmd.Context()
			user := userFlag(cmd)
			att, err := a.svc.Attempts.Start(ctx, user, args[0])
			if err != nil {
				return err
			}
			d, err := a.svc.Quizzes.Get(ctx, user, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Attempt %s started for %s\n\n", att.ID, out.title.Render(d.Quiz.Title))
			printQuestions(d.Questions, false)
			fmt.Printf("Submit with: questionsmith attempt submit %s --answers answers.json\n", att.ID)
			return nil
		})
	},
}

var attemptSubmitCmd = &cobra.Command{
	Use:   "submit <attempt-id>",
	Short: "Submit answers for grading",
	Long: `Submit answers for grading. The answers file is either a JSON array of
{"questionId": "...", "response": ...} objects or an object mapping question
ids to responses.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("answers")
		responses, err := readResponses(path)
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			card, err := a.svc.Attempts.Submit(cmd.Context(), userFlag(cmd), args[0], responses)
			if err != nil {
				return err
			}
			for _, r := range card.Records {
				fmt.Printf("%s  %s  %s\n", out.mark(r.IsCorrect), out.dim.Render(r.QuestionID), quiz.Stringify(r.Response))
			}
			fmt.Printf("\nScore: %s\n", out.title.Render(fmt.Sprintf("%d/%d", card.Score, card.MaxScore)))
			return nil
		})
	},
}

var attemptShowCmd = &cobra.Command{
	Use:   "show <attempt-id>",
	Short: "Show an attempt and its graded answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			d, err := a.svc.Attempts.Get(cmd.Context(), userFlag(cmd), args[0])
			if err != nil {
				return err
			}
			att := d.Attempt
			fmt.Printf("Attempt %s on quiz %s by %s\n", att.ID, att.QuizID, att.UserID)
			fmt.Printf("Started:   %s\n", att.StartedAt.Local().Format("2006-01-02 15:04:05"))
			if !att.Submitted() {
				fmt.Println("Status:    in progress")
				return nil
			}
			fmt.Printf("Submitted: %s\n", att.SubmittedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("Score:     %d/%d\n", *att.Score, *att.MaxScore)
			if att.DurationSeconds != nil {
				fmt.Printf("Duration:  %ds\n", *att.DurationSeconds)
			}
			fmt.Println()
			for _, r := range d.Answers {
				fmt.Printf("%s  %s  %s\n", out.mark(r.IsCorrect), out.dim.Render(r.QuestionID), quiz.Stringify(r.Response))
			}
			return nil
		})
	},
}

var attemptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		quizID, _ := cmd.Flags().GetString("quiz")
		return withApp(cmd, func(a *app) error {
			attempts, err := a.svc.Attempts.List(cmd.Context(), userFlag(cmd), quizID)
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Println("No attempts yet.")
				return nil
			}
			fmt.Println(out.heading.Render(fmt.Sprintf("%-36s  %-36s  %-16s  %s", "ID", "Quiz", "Started", "Score")))
			fmt.Println(strings.Repeat("─", 100))
			for _, att := range attempts {
				score := "-"
				if att.Submitted() {
					score = fmt.Sprintf("%d/%d", *att.Score, *att.MaxScore)
				}
				fmt.Printf("%-36s  %-36s  %-16s  %s\n",
					att.ID, att.QuizID, att.StartedAt.Local().Format("2006-01-02 15:04"), score)
			}
			return nil
		})
	},
}

// readResponses loads an answers file in either accepted shape. Map
// entries are sorted by question id so grading order is stable.
func readResponses(path string) ([]grading.SubmittedResponse, error) {
	if path == "" {
		return nil, fmt.Errorf("--answers is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}

	var list []grading.SubmittedResponse
	if err := json.Unmarshal(b, &list); err == nil {
		return list, nil
	}

	var byID map[string]any
	if err := json.Unmarshal(b, &byID); err != nil {
		return nil, fmt.Errorf("parse answers %s: want an array or an object: %w", path, err)
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		list = append(list, grading.SubmittedResponse{QuestionID: id, Response: byID[id]})
	}
	return list, nil
}

func init() {
	attemptSubmitCmd.Flags().StringP("answers", "a", "", "JSON file with responses")
	attemptListCmd.Flags().String("quiz", "", "Only attempts on this quiz")

	attemptCmd.AddCommand(attemptStartCmd)
	attemptCmd.AddCommand(attemptSubmitCmd)
	attemptCmd.AddCommand(attemptShowCmd)
	attemptCmd.AddCommand(attemptListCmd)
}

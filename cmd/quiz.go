package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amrixahmad/questionsmith/internal/store"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "List, inspect and publish quizzes",
}

var quizListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your quizzes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		quizzes, err := a.svc.Quizzes.List(cmd.Context(), userFlag(cmd), store.ListOpts{Limit: limit})
		if err != nil {
			return err
		}
		if len(quizzes) == 0 {
			fmt.Println("No quizzes yet. Create one with `questionsmith generate`.")
			return nil
		}

		fmt.Println(out.heading.Render(fmt.Sprintf("%-36s  %-9s  %-6s  %4s  %-16s  %s", "ID", "Status", "Level", "Qs", "Created", "Title")))
		fmt.Println(strings.Repeat("─", 100))
		for _, q := range quizzes {
			fmt.Printf("%-36s  %-9s  %-6s  %4d  %-16s  %s\n",
				q.ID, q.Status, q.Difficulty, q.QuestionCount,
				q.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(q.Title, 40))
		}
		return nil
	},
}

var quizShowCmd = &cobra.Command{
	Use:   "show <quiz-id>",
	Short: "Show a quiz and its questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.svc.Quizzes.Get(cmd.Context(), userFlag(cmd), args[0])
		if err != nil {
			return err
		}
		hide, _ := cmd.Flags().GetBool("hide-answers")

		q := d.Quiz
		fmt.Println(out.title.Render(q.Title))
		fmt.Printf("ID: %s  Status: %s  Difficulty: %s  Max attempts: %d\n\n",
			q.ID, q.Status, q.Difficulty, q.MaxAttempts)
		printQuestions(d.Questions, d.IsOwner && !hide)
		return nil
	},
}

var quizPublishCmd = &cobra.Command{
	Use:   "publish <quiz-id>",
	Short: "Publish a quiz so others can take it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := a.svc.Quizzes.Publish(cmd.Context(), userFlag(cmd), args[0]); err != nil {
				return err
			}
			fmt.Println("Published", args[0])
			return nil
		})
	},
}

var quizUnpublishCmd = &cobra.Command{
	Use:   "unpublish <quiz-id>",
	Short: "Return a quiz to draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := a.svc.Quizzes.Unpublish(cmd.Context(), userFlag(cmd), args[0]); err != nil {
				return err
			}
			fmt.Println("Unpublished", args[0])
			return nil
		})
	},
}

var quizLimitCmd = &cobra.Command{
	Use:   "limit <quiz-id> <max-attempts>",
	Short: "Set how many attempts each taker gets",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid attempt count %q: %w", args[1], err)
		}
		return withApp(cmd, func(a *app) error {
			return a.svc.Quizzes.SetMaxAttempts(cmd.Context(), userFlag(cmd), args[0], n)
		})
	},
}

var quizDeleteCmd = &cobra.Command{
	Use:   "delete <quiz-id>",
	Short: "Delete a quiz with its attempts and share links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := a.svc.Quizzes.Delete(cmd.Context(), userFlag(cmd), args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted", args[0])
			return nil
		})
	},
}

// withApp runs fn with an app that does not need an LLM.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func init() {
	quizListCmd.Flags().IntP("limit", "n", 50, "Number of quizzes to show")
	quizShowCmd.Flags().Bool("hide-answers", false, "Do not print answers and explanations")

	quizCmd.AddCommand(quizListCmd)
	quizCmd.AddCommand(quizShowCmd)
	quizCmd.AddCommand(quizPublishCmd)
	quizCmd.AddCommand(quizUnpublishCmd)
	quizCmd.AddCommand(quizLimitCmd)
	quizCmd.AddCommand(quizDeleteCmd)
}

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Manage public share links",
}

var shareCreateCmd = &cobra.Command{
	Use:   "create <quiz-id>",
	Short: "Create or reuse a share link for a published quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expires, _ := cmd.Flags().GetDuration("expires")
		return withApp(cmd, func(a *app) error {
			link, err := a.svc.Sharing.CreateLink(cmd.Context(), userFlag(cmd), args[0], expires)
			if err != nil {
				return err
			}
			fmt.Println("Token:", link.Token)
			if base := strings.TrimRight(a.cfg.PublicURL, "/"); base != "" {
				fmt.Println("URL:  ", base+"/s/"+link.Token)
			}
			if link.ExpiresAt != nil {
				fmt.Println("Expires:", link.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		})
	},
}

var shareRevokeCmd = &cobra.Command{
	Use:   "revoke <quiz-id>",
	Short: "Revoke every share link of a quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			n, err := a.svc.Sharing.Revoke(cmd.Context(), userFlag(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Revoked %d link(s)\n", n)
			return nil
		})
	},
}

var shareOpenCmd = &cobra.Command{
	Use:   "open <token>",
	Short: "Show the quiz behind a share token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			sq, err := a.svc.Sharing.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\nID: %s  Difficulty: %s\n\n", out.title.Render(sq.Quiz.Title), sq.Quiz.ID, sq.Quiz.Difficulty)
			printQuestions(sq.Questions, false)
			return nil
		})
	},
}

func init() {
	shareCreateCmd.Flags().Duration("expires", 0, "Link lifetime, e.g. 72h (default: never)")

	shareCmd.AddCommand(shareCreateCmd)
	shareCmd.AddCommand(shareRevokeCmd)
	shareCmd.AddCommand(shareOpenCmd)
}

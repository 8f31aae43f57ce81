package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/amrixahmad/questionsmith/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "questionsmith",
	Short: "Generate, take and grade quizzes from source text",
	Long: "questionsmith turns notes and documents into quizzes with an LLM, " +
		"normalizes and grades answers, and serves everything over an HTTP API.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database file path or DSN (overrides QUESTIONSMITH_DB)")
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver: sqlite or postgres (overrides QUESTIONSMITH_DB_DRIVER)")
	rootCmd.PersistentFlags().String("user", defaultUser(), "User id to act as (QUESTIONSMITH_USER)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(attemptCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

func defaultUser() string {
	if u := os.Getenv("QUESTIONSMITH_USER"); u != "" {
		return u
	}
	return "local"
}

// resolveDB returns the driver and DSN using the --db and --db-driver
// flags first, then the environment, then the default SQLite path.
func resolveDB(cmd *cobra.Command, envDriver, envDSN string) (driver, dsn string, err error) {
	driver, _ = cmd.Flags().GetString("db-driver")
	if driver == "" {
		driver = envDriver
	}
	dsn, _ = cmd.Flags().GetString("db")
	if dsn == "" {
		dsn = envDSN
	}
	if dsn != "" {
		if driver == "" || driver == store.DriverSQLite {
			return driver, dsn, store.EnsureDir(dsn)
		}
		return driver, dsn, nil
	}
	dsn, err = store.DefaultDBPath()
	return driver, dsn, err
}

func userFlag(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	return u
}

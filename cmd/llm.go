package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amrixahmad/questionsmith/internal/llm"
	"github.com/amrixahmad/questionsmith/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded quiz generation calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			opts.From = time.Now().UTC().Add(-since)
		}

		return withApp(cmd, func(a *app) error {
			events, err := a.store.EventRepo().QueryLLMEvents(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list llm events: %w", err)
			}
			if len(events) == 0 {
				fmt.Println("No LLM calls recorded.")
				return nil
			}
			printEventTable(events)
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one LLM call with its prompt and reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("event id %q is not a number", args[0])
		}
		return withApp(cmd, func(a *app) error {
			e, err := a.store.EventRepo().GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("event %d: %w", id, err)
			}
			printEvent(e)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated spend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			repo := a.store.EventRepo()
			byPurpose, err := repo.LLMUsageByPurpose(cmd.Context())
			if err != nil {
				return fmt.Errorf("usage by purpose: %w", err)
			}
			if len(byPurpose) == 0 {
				fmt.Println("No LLM calls recorded.")
				return nil
			}
			byModel, err := repo.LLMUsageByModel(cmd.Context())
			if err != nil {
				return fmt.Errorf("usage by model: %w", err)
			}
			printPurposeUsage(byPurpose)
			if len(byModel) > 0 {
				fmt.Println()
				printModelCost(byModel)
			}
			return nil
		})
	},
}

func rule(width int) string { return out.dim.Render(strings.Repeat("─", width)) }

// header prints a styled table header laid out with the row format.
func header(row string, cols ...any) {
	fmt.Println(out.heading.Render(strings.TrimSuffix(fmt.Sprintf(row, cols...), "\n")))
}

func printEventTable(events []store.LLMRequestEventRecord) {
	const row = "%-5v  %-19v  %-10v  %-12v  %-26v  %7v  %7v  %6v  %v\n"
	header(row, "ID", "Time", "Provider", "Purpose", "Model", "In", "Out", "Ms", "OK")
	fmt.Println(rule(108))
	for _, e := range events {
		fmt.Printf(row, e.ID, e.Timestamp.Local().Format(timeLayout), truncate(e.Provider, 10),
			truncate(e.Purpose, 12), truncate(e.Model, 26), e.InputTokens, e.OutputTokens, e.LatencyMs,
			out.mark(e.Success))
	}
}

func printEvent(e *store.LLMRequestEventRecord) {
	fields := [][2]string{
		{"ID", strconv.Itoa(e.ID)},
		{"Time", e.Timestamp.Local().Format(timeLayout)},
		{"Provider", e.Provider},
		{"Model", e.Model},
		{"Purpose", e.Purpose},
		{"Tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens)},
		{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
		{"Result", out.mark(e.Success)},
	}
	if e.ErrorMessage != "" {
		fields = append(fields, [2]string{"Error", e.ErrorMessage})
	}
	for _, f := range fields {
		fmt.Printf("%-9s %s\n", f[0]+":", f[1])
	}
	printBody("Prompt", e.RequestBody)
	printBody("Reply", e.ResponseBody)
}

func printBody(label, body string) {
	fmt.Printf("\n%s\n%s\n", out.heading.Render(label), rule(60))
	if body == "" {
		body = out.dim.Render("(empty)")
	}
	fmt.Println(body)
}

func printPurposeUsage(stats []store.LLMUsageStat) {
	const row = "%-16v  %6v  %10v  %10v  %8v\n"
	fmt.Println(out.title.Render("Tokens by purpose"))
	header(row, "Purpose", "Calls", "Input", "Output", "Avg ms")
	fmt.Println(rule(60))
	var calls, in, outTok int
	for _, st := range stats {
		fmt.Printf(row, st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, st.AvgLatencyMs)
		calls += st.Calls
		in += st.InputTokens
		outTok += st.OutputTokens
	}
	fmt.Println(rule(60))
	fmt.Printf(row, "all", calls, in, outTok, "")
}

func printModelCost(usage []store.LLMModelUsage) {
	const row = "%-32v  %6v  %10v  %10v  %10v\n"
	fmt.Println(out.title.Render("Estimated cost (USD)"))
	header(row, "Model", "Calls", "Input", "Output", "Cost")
	fmt.Println(rule(76))

	var total float64
	var unpriced []string
	for _, mu := range usage {
		cost := "?"
		if price := llm.LookupCost(mu.Model); price != nil {
			c := price.Cost(mu.InputTokens, mu.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, mu.Model)
		}
		fmt.Printf(row, truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, cost)
	}
	fmt.Println(rule(76))
	fmt.Printf(row, "all", "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Printf("\nNo price known for %s; the total leaves them out.\n", strings.Join(unpriced, ", "))
	}
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	f := llmListCmd.Flags()
	f.IntP("limit", "n", 20, "Maximum calls to show")
	f.StringP("purpose", "p", "", "Only calls with this purpose, e.g. quiz-gen")
	f.Duration("since", 0, "Only calls newer than this, e.g. 24h")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

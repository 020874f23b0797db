package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"weni/internal/cli"
	"weni/internal/color"
	"weni/internal/reporting"

	"github.com/spf13/cobra"
)

const logTimeLayout = "2006-01-02 15:04:05"

var errRegexPattern = errors.New("Regex patterns are not supported")

func newLogsCmd() *cobra.Command {
	var query cli.ToolLogsQuery

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the logs of a tool",
		Long: `Fetches the logs a tool wrote while running on the platform, newest page
first. When more logs are available you are asked whether to fetch them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, query)
		},
	}
	cmd.Flags().StringVar(&query.AgentKey, "agent", "", "Agent key")
	cmd.Flags().StringVar(&query.ToolKey, "tool", "", "Tool key")
	cmd.Flags().StringVar(&query.StartTime, "start-time", "", "Only logs after this time (ISO 8601)")
	cmd.Flags().StringVar(&query.EndTime, "end-time", "", "Only logs before this time (ISO 8601)")
	cmd.Flags().StringVar(&query.Pattern, "pattern", "", "Only logs containing this text")
	_ = cmd.MarkFlagRequired("agent")
	_ = cmd.MarkFlagRequired("tool")
	return cmd
}

func runLogs(cmd *cobra.Command, query cli.ToolLogsQuery) error {
	if isRegexPattern(query.Pattern) {
		return errRegexPattern
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if _, err := requireProject(store); err != nil {
		return err
	}
	client := newCLIClient(store)
	out := cmd.OutOrStdout()
	prompt := newPrompter(cmd.InOrStdin(), out)

	for first := true; ; first = false {
		page, err := client.GetToolLogs(cmd.Context(), query)
		if err != nil {
			return err
		}
		if len(page.Logs) == 0 {
			if first {
				fmt.Fprintln(out, reporting.ErrorPanel("No logs found"))
			} else {
				fmt.Fprintln(out, "No more logs found.")
			}
			return nil
		}

		fmt.Fprintln(out, reporting.Panel("Logs", formatLogs(page.Logs), color.Success))

		if page.NextToken == "" {
			return nil
		}
		answer, err := prompt.ask("Fetch more logs? [Y/n] ", "y")
		if err != nil || answer == "n" || answer == "no" {
			return nil
		}
		query.NextToken = page.NextToken
	}
}

func isRegexPattern(pattern string) bool {
	return len(pattern) >= 2 && strings.HasPrefix(pattern, "%") && strings.HasSuffix(pattern, "%")
}

func formatLogs(logs []cli.ToolLog) string {
	lines := make([]string, 0, len(logs))
	for _, log := range logs {
		stamp := time.UnixMilli(log.Timestamp).Format(logTimeLayout)
		lines = append(lines, fmt.Sprintf("[%s] %s", stamp, strings.TrimSpace(log.Message)))
	}
	return strings.Join(lines, "\n")
}

package cmd

import (
	"fmt"
	"net/http"
	"os"

	"weni/internal/api"
	"weni/internal/color"
	"weni/internal/reporting"
	"weni/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	debug    bool
	logLevel string
	noColor  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "weni",
	Short: "Push and test Weni agents from the command line",
	Long: `weni manages agent definitions on the Weni platform.

It logs you in, selects the project to work on, pushes agent definitions
together with their tool code, runs a tool's test cases remotely while
streaming the results, and fetches tool logs.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid arguments, failed requests)
	SilenceUsage: true,
	// Errors are rendered by Execute
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := resolveLogLevel(logLevel, debug)
		if err != nil {
			return err
		}
		logging.InitForCLI(level, cmd.ErrOrStderr())
		if _, set := os.LookupEnv("NO_COLOR"); set || noColor {
			color.Disable()
		}
		return nil
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "weni version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, reporting.ErrorPanel(errorMessage(err)))
		os.Exit(1)
	}
}

// resolveLogLevel parses --log-level; --debug wins over it.
func resolveLogLevel(name string, debug bool) (logging.LogLevel, error) {
	if debug {
		return logging.LevelDebug, nil
	}
	return logging.ParseLevel(name)
}

// errorMessage renders err for the user, pointing at login when the
// server rejected the stored token.
func errorMessage(err error) string {
	if api.IsStatus(err, http.StatusUnauthorized) {
		return err.Error() + "\n\nYour login has expired, run \"weni login\" again."
	}
	return err.Error()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log requests and stream events to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newProjectCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newLogsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}

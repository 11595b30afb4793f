// Package commands provides CLI commands for routerchat.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/routerchat/internal/config"
)

var (
	// Global flags
	modelFlag   string
	apiKeyFlag  string
	verboseFlag bool
	outputFlag  string
	fileFlag    string
	rawFlag     bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// errReported marks a failure whose details were already printed
var errReported = errors.New("failure already reported")

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routerchat [prompt]",
		Short: "Chat with OpenRouter models from the terminal",
		Long: `routerchat sends prompts to the OpenRouter chat completions API and shows
the replies. Each prompt is sent on its own, without earlier turns.

The API key is read from --api-key, the OPENROUTER_API_KEY environment
variable or a .env file, and is never written to disk.

Examples:
  routerchat chat                       Start interactive chat
  routerchat config                     Show settings
  routerchat "What is Go?"              Send a single query
  routerchat -f prompt.md               Read prompt from file
  cat prompt.md | routerchat            Read prompt from stdin
  routerchat "Hello" -o response.md     Save response to file`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "routerchat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if fileFlag != "" {
				data, err := os.ReadFile(fileFlag)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return runQuery(deps, string(data), rawFlag)
			}

			if len(args) > 0 {
				return runQuery(deps, args[0], rawFlag)
			}

			if stdinHasData() {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return runQuery(deps, string(data), rawFlag)
			}

			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., deepseek/deepseek-r1:free)")
	cmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "OpenRouter API key (kept in memory only)")
	cmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Log request diagnostics")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	cmd.Flags().BoolVar(&rawFlag, "raw", false, "Print only the reply text")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(newChatCmd(deps))
	cmd.AddCommand(newConfigCmd(deps))

	return cmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// stdinHasData reports whether stdin is a pipe or file rather than a terminal
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// loadConfig returns the user configuration, falling back to defaults
func loadConfig() config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// getModel returns the model to use (from flag or config)
func getModel(cfg config.Config) string {
	if modelFlag != "" {
		return modelFlag
	}
	return cfg.DefaultModel
}

// isVerbose reports whether diagnostics are enabled by flag or config
func isVerbose(cfg config.Config) bool {
	return verboseFlag || cfg.Verbose
}

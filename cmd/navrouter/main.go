package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/navrouter/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	config   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "navrouter",
		Short: "Path routing and navigation transitions for thin clients",
		Long: `navrouter selects a view for every URL from an ordered route table and
drives navigation transitions for browsers connected over WebSocket.

  • Patterns with :params, :optional?, :rest+ and :rest* segments
  • Most specific route wins, declaration order breaks ties
  • Previous view stays on screen while the next one loads
  • Route manifest and view templates from disk or S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.config, "config", "c", ".", "Config file or directory containing navrouter.json")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		serveCmd(opts),
		matchCmd(opts),
		rankCmd(opts),
		parseCmd(),
		versionCmd(),
	)

	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// missingArg reports a missing positional argument.
func missingArg(name, example string) error {
	return errors.New("X001").
		WithSubject(name).
		WithSuggestion("Example: " + example)
}

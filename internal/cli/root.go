// Package cli implements the cobra command tree for dander.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/dander/internal/config"
	"github.com/hupe1980/dander/internal/logging"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, prints any error to stderr and
// returns the exit code.
func Execute() int {
	return run(NewRootCommand(), os.Stderr)
}

func run(cmd *cobra.Command, stderr io.Writer) int {
	executed, err := cmd.ExecuteC()
	if err == nil {
		return 0
	}

	code := 1

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
	}

	// The executed subcommand carries the loaded configuration.
	printError(stderr, err, colorEnabled(executed, stderr))

	return code
}

func printError(w io.Writer, err error, colored bool) {
	prefix := "Error:"

	if colored {
		c := color.New(color.FgRed, color.Bold)
		c.EnableColor()
		prefix = c.Sprint(prefix)
	}

	_, _ = fmt.Fprintln(w, prefix, err)
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "dander",
		Short: "Normalize JSON and XML files and split JSON collections",
		Long: `dander rewrites JSON and XML documents with canonical indentation,
either to stdout or back into the file, and splits a JSON object or array
into one file per top-level member.

Member order, attribute order and number literals are kept exactly as in
the source, so formatting a file twice yields the same bytes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.EffectiveLogLevel()),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .dander.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	cmd.SetFlagErrorFunc(flagError)

	cmd.AddCommand(
		newJSONCommand(),
		newXMLCommand(),
		newFormatCommand(),
		newBasenameCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}

// flagError maps flag parsing errors to exit code 2.
func flagError(_ *cobra.Command, err error) error {
	return &ExitError{Code: 2, Err: err}
}

// colorEnabled reports whether output to w may carry ANSI colour.
func colorEnabled(cmd *cobra.Command, w io.Writer) bool {
	if cmd.Context() != nil && config.FromContext(cmd.Context()).NoColor {
		return false
	}

	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	return terminal(w)
}

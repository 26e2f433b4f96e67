package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/dander/internal/config"
	"github.com/hupe1980/dander/internal/logging"
	"github.com/hupe1980/dander/internal/normalize"
	"github.com/hupe1980/dander/internal/output"
)

func newJSONCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "json",
		Short: "Format, split and validate JSON files",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(newJSONFormatCommand(), newJSONSplitCommand(), newJSONValidateCommand())

	return cmd
}

func newJSONFormatCommand() *cobra.Command {
	opts := &jsonFormatOptions{}

	cmd := &cobra.Command{
		Use:   "format <file>",
		Short: "Re-indent a JSON file",
		Long: `Parse a JSON file and render it with canonical indentation.

The result is printed to stdout unless --write is given, in which case the
file is rewritten in place. --verbose always prints, even with --write.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc := &config.FromContext(cmd.Context()).Formats

			opts.Path = args[0]
			opts.Indent = intFlag(cmd, "indent", fc.JSONIndent())

			if err := validateOptions(opts); err != nil {
				return err
			}

			return runJSONFormat(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.Int("indent", normalize.DefaultJSONOptions().Indent, "spaces per indentation level")
	f.BoolVarP(&opts.Write, "write", "w", false, "rewrite the file in place")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "print the result even when writing")

	return cmd
}

func runJSONFormat(cmd *cobra.Command, opts *jsonFormatOptions) error {
	logger := logging.ForFile(logging.FromContext(cmd.Context()), "format json", opts.Path)

	n := normalize.New(
		normalize.WithOutput(newSink(cmd, output.JSONHighlighter)),
		normalize.WithLogger(logger),
	)

	res, err := n.FormatJSON(cmd.Context(), opts.Path, normalize.JSONOptions{
		Indent:  opts.Indent,
		Write:   opts.Write,
		Verbose: opts.Verbose,
	})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	logger.Debug("formatted JSON", slog.String("destination", res.Destination.String()))

	return nil
}

func newJSONSplitCommand() *cobra.Command {
	opts := &jsonSplitOptions{}

	cmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Split a JSON collection into one file per member",
		Long: `Write every top-level member of a JSON object or array to its own file
next to the source. A member of data.json under key "a" is written to
data__a.json; element 0 of an array goes to data__0.json.

Only the top level is split. --depth is accepted for compatibility and a
warning is logged when it is not 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc := &config.FromContext(cmd.Context()).Formats

			opts.Path = args[0]
			opts.Indent = intFlag(cmd, "indent", fc.JSONSplitIndent())

			if err := validateOptions(opts); err != nil {
				return err
			}

			return runJSONSplit(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.Depth, "depth", "d", 1, "split depth (only 1 is supported)")
	f.Int("indent", normalize.DefaultSplitOptions().Indent, "spaces per indentation level in each file")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "log every file written")

	return cmd
}

func runJSONSplit(cmd *cobra.Command, opts *jsonSplitOptions) error {
	logger := logging.ForFile(logging.FromContext(cmd.Context()), "split json", opts.Path)

	n := normalize.New(normalize.WithLogger(logger))

	res, err := n.SplitJSON(cmd.Context(), opts.Path, normalize.SplitOptions{
		Depth:  opts.Depth,
		Indent: opts.Indent,
	})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	for _, a := range res.Artifacts {
		logger.Debug("wrote member", slog.String("key", a.Key), slog.String("path", a.Path))
	}

	logger.Debug("split JSON", slog.Int("files", len(res.Artifacts)))

	return nil
}

func newJSONValidateCommand() *cobra.Command {
	opts := &jsonValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a JSON file against a JSON Schema",
		Long: `Validate a JSON document against the JSON Schema given with --schema.

Every violation is reported and the command exits with status 1 when the
document does not satisfy the schema.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]

			if err := validateOptions(opts); err != nil {
				return err
			}

			logger := logging.ForFile(logging.FromContext(cmd.Context()), "validate json", opts.Path)

			n := normalize.New(normalize.WithLogger(logger))
			if err := n.ValidateJSON(cmd.Context(), opts.Path, opts.Schema); err != nil {
				return &ExitError{Code: 1, Err: err}
			}

			if !config.FromContext(cmd.Context()).Quiet {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", opts.Path)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "JSON Schema file")

	return cmd
}

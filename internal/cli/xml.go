package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/dander/internal/config"
	"github.com/hupe1980/dander/internal/logging"
	"github.com/hupe1980/dander/internal/normalize"
	"github.com/hupe1980/dander/internal/output"
)

func newXMLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xml",
		Short: "Format XML files",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(newXMLFormatCommand())

	return cmd
}

func newXMLFormatCommand() *cobra.Command {
	opts := &xmlFormatOptions{}

	cmd := &cobra.Command{
		Use:   "format <file>",
		Short: "Re-indent an XML file",
		Long: `Parse an XML file and render it with one element per line.

In strict mode, the default, files whose extension is not listed by --ext
are rejected before they are read. Use --no-strict to format any file.

The result is printed to stdout unless --write is given, in which case the
file is rewritten in place. --verbose always prints, even with --write.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc := &config.FromContext(cmd.Context()).Formats

			opts.Path = args[0]
			opts.Indent = intFlag(cmd, "indent", fc.XMLIndent())
			opts.Strict = strictFlag(cmd, fc.XMLStrict())
			opts.Extensions = extFlag(cmd, fc.XMLExtensions())

			if err := validateOptions(opts); err != nil {
				return err
			}

			return runXMLFormat(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.Int("indent", normalize.DefaultXMLOptions().Indent, "spaces per indentation level")
	f.Bool("strict", true, "only accept files with a recognized XML extension")
	f.Bool("no-strict", false, "accept files with any extension")
	f.StringSlice("ext", normalize.DefaultXMLExtensions, "extensions accepted in strict mode")
	f.BoolVarP(&opts.Write, "write", "w", false, "rewrite the file in place")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "print the result even when writing")

	return cmd
}

func runXMLFormat(cmd *cobra.Command, opts *xmlFormatOptions) error {
	logger := logging.ForFile(logging.FromContext(cmd.Context()), "format xml", opts.Path)

	n := normalize.New(
		normalize.WithOutput(newSink(cmd, output.XMLHighlighter)),
		normalize.WithLogger(logger),
	)

	res, err := n.FormatXML(cmd.Context(), opts.Path, normalize.XMLOptions{
		Strict:     opts.Strict,
		Extensions: opts.Extensions,
		Indent:     opts.Indent,
		Write:      opts.Write,
		Verbose:    opts.Verbose,
	})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	logger.Debug("formatted XML", slog.String("destination", res.Destination.String()))

	return nil
}

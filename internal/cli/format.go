package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/dander/internal/config"
	"github.com/hupe1980/dander/internal/logging"
	"github.com/hupe1980/dander/internal/normalize"
	"github.com/hupe1980/dander/internal/output"
)

func newFormatCommand() *cobra.Command {
	opts := &autoFormatOptions{}

	cmd := &cobra.Command{
		Use:   "format <file>",
		Short: "Re-indent a JSON or XML file, detecting which it is",
		Long: `Format a file as JSON or XML. Files ending in .json are JSON and files
with an extension listed by --ext are XML; anything else is recognized by
its content. XML recognized by content skips the extension check.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc := &config.FromContext(cmd.Context()).Formats

			opts.Path = args[0]
			opts.JSONIndent = intFlag(cmd, "json-indent", fc.JSONIndent())
			opts.XMLIndent = intFlag(cmd, "xml-indent", fc.XMLIndent())
			opts.Extensions = extFlag(cmd, fc.XMLExtensions())

			if err := validateOptions(opts); err != nil {
				return err
			}

			return runAutoFormat(cmd, opts, fc.XMLStrict())
		},
	}

	f := cmd.Flags()
	f.Int("json-indent", normalize.DefaultJSONOptions().Indent, "spaces per indentation level for JSON")
	f.Int("xml-indent", normalize.DefaultXMLOptions().Indent, "spaces per indentation level for XML")
	f.StringSlice("ext", normalize.DefaultXMLExtensions, "extensions recognized as XML")
	f.BoolVarP(&opts.Write, "write", "w", false, "rewrite the file in place")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "print the result even when writing")

	return cmd
}

func runAutoFormat(cmd *cobra.Command, opts *autoFormatOptions, strict bool) error {
	logger := logging.ForFile(logging.FromContext(cmd.Context()), "format", opts.Path)

	n := normalize.New(
		normalize.WithOutput(newSink(cmd, output.AutoHighlighter)),
		normalize.WithLogger(logger),
	)

	res, err := n.Format(cmd.Context(), opts.Path, normalize.FormatOptions{
		JSON: normalize.JSONOptions{
			Indent:  opts.JSONIndent,
			Write:   opts.Write,
			Verbose: opts.Verbose,
		},
		XML: normalize.XMLOptions{
			Strict:     strict,
			Extensions: opts.Extensions,
			Indent:     opts.XMLIndent,
			Write:      opts.Write,
			Verbose:    opts.Verbose,
		},
	})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	logger.Debug("formatted file", slog.String("destination", res.Destination.String()))

	return nil
}

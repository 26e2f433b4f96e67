package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hupe1980/dander/internal/output"
)

// terminal is the terminal check used by colorEnabled.
var terminal = isTerminal

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newSink returns the writer rendered documents go to: the command's
// stdout, highlighted by hl when colour is enabled.
func newSink(cmd *cobra.Command, hl func() output.Highlighter) output.Writer {
	out := cmd.OutOrStdout()

	if !colorEnabled(cmd, out) {
		return output.NewStdoutWriter(out)
	}

	return output.NewStdoutWriter(out, output.WithHighlighter(hl()))
}

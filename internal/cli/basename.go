package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/hupe1980/dander/internal/normalize"
)

// readClipboard is replaced in tests.
var readClipboard = clipboard.ReadAll

func newBasenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "basename [path]",
		Short: "Print a file name without directory and extension",
		Long: `Print the stem of path: its base name without the final extension.
This is the prefix split uses for the files it writes. Without an argument
the path is read from the system clipboard.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := basenameInput(args)
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), normalize.Stem(path))

			return err
		},
	}
}

func basenameInput(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	text, err := readClipboard()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}

	path := strings.TrimSpace(text)
	if path == "" {
		return "", errors.New("clipboard is empty")
	}

	return path, nil
}

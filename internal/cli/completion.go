package cli

import (
	"github.com/spf13/cobra"
)

func newCompletionCommand() *cobra.Command {
	var noDescriptions bool

	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for bash, zsh, fish or powershell.

  $ source <(dander completion bash)
  $ dander completion zsh > "${fpath[1]}/_dander"
  $ dander completion fish > ~/.config/fish/completions/dander.fish
  PS> dander completion powershell | Out-String | Invoke-Expression`,
		// completion needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			root := cmd.Root()
			desc := !noDescriptions

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, desc)
			case "zsh":
				if desc {
					return root.GenZshCompletion(w)
				}

				return root.GenZshCompletionNoDesc(w)
			case "fish":
				return root.GenFishCompletion(w, desc)
			default:
				if desc {
					return root.GenPowerShellCompletionWithDesc(w)
				}

				return root.GenPowerShellCompletion(w)
			}
		},
	}

	cmd.Flags().BoolVar(&noDescriptions, "no-descriptions", false, "omit completion descriptions")

	return cmd
}

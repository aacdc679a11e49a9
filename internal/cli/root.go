package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/imgajeed76/relstamp/internal/ui/styles"
	"github.com/imgajeed76/relstamp/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relstamp",
		Short: "Rewrite page timestamps as \"3 days ago\"",
		Long: `relstamp turns absolute timestamps in HTML pages into relative ones.

Every element carrying the marker class (default "timestamp") has its
content replaced by <time datetime="ORIGINAL">N units ago</time>, where
the label is the largest unit of which more than two have elapsed.

Pages can be rewritten once from the command line or served over HTTP
with every HTML response annotated as it is loaded.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	// Global flags
	cmd.PersistentFlags().String("config", "", "Config file (default $RELSTAMP_CONFIG or the platform config dir)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.SetVersionTemplate(fmt.Sprintf("relstamp version %s\n  commit: %s\n  built:  %s\n", Version, CommitSHA, BuildDate))

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		noColor, _ := cmd.Flags().GetBool("no-color")
		if noColor {
			styles.SetNoColor(true)
		}
	}

	cmd.AddCommand(
		newAnnotateCmd(),
		newSinceCmd(),
		newServeCmd(),
		newConfigCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
	return cmd
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		// Check if it's a structured RelstampError
		var relErr *util.RelstampError
		if errors.As(err, &relErr) {
			fmt.Fprintln(os.Stderr, relErr.Format())
		} else {
			// Simple error - still format nicely
			fmt.Fprintln(os.Stderr, styles.ErrorMsg(err.Error()))
		}
		return err
	}
	return nil
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for relstamp.

To load completions:

Bash:
  $ source <(relstamp completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ relstamp completion bash > /etc/bash_completion.d/relstamp
  # macOS:
  $ relstamp completion bash > $(brew --prefix)/etc/bash_completion.d/relstamp

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ relstamp completion zsh > "${fpath[1]}/_relstamp"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ relstamp completion fish | source

  # To load completions for each session, execute once:
  $ relstamp completion fish > ~/.config/fish/completions/relstamp.fish

PowerShell:
  PS> relstamp completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> relstamp completion powershell > relstamp.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "relstamp version %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", CommitSHA)
			fmt.Fprintf(out, "  built:  %s\n", BuildDate)
		},
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/agentsync-labs/agentsync/internal/branding"
	"github.com/agentsync-labs/agentsync/internal/workspace"
	"github.com/spf13/cobra"
)

var initTarget string

var initCmd = &cobra.Command{
	Use:   "init [value-stream]",
	Short: "Bootstrap a workspace folder structure",
	Long: `Create the workspace folder structure (charter, prompt, definition and
runner directories plus docs/, logs/ and temp/) and a .gitignore covering the
generated directories. Safe to run multiple times.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Initializing workspace at %s\n", initTarget)
		if err := workspace.Init(initTarget, out); err != nil {
			return fmt.Errorf("initializing workspace: %w", err)
		}

		fmt.Fprintln(out, "\nWorkspace ready.")
		fmt.Fprintln(out, "Next steps:")
		fmt.Fprintf(out, "  1. Fetch utility agents: %s sync utility\n", branding.CLIName())
		if len(args) == 1 {
			fmt.Fprintf(out, "  2. Fetch value stream agents: %s sync %s\n", branding.CLIName(), args[0])
		} else {
			fmt.Fprintf(out, "  2. Discover value streams: %s streams\n", branding.CLIName())
		}
		return nil
	},
}

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	initCmd.Flags().StringVar(&initTarget, "target", cwd, "Workspace directory to initialize")
	rootCmd.AddCommand(initCmd)
}

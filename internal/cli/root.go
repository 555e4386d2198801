package cli

import (
	"fmt"
	"os"

	"github.com/agentsync-labs/agentsync/internal/branding"
	"github.com/agentsync-labs/agentsync/internal/source"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` synchronizes agent artifacts (charters, definitions, prompts,
runner units) from a canonical source tree into a consumer workspace, driven
by the source's publication manifest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Skip the staleness hint for commands that refresh the source.
		name := cmd.Name()
		if name == "sync" || name == "streams" || name == "init" {
			return
		}

		repoDir, err := source.DefaultRepoDir()
		if err != nil {
			return
		}
		if _, statErr := os.Stat(repoDir); statErr == nil && source.IsStale(repoDir, source.DefaultMaxAge) {
			fmt.Fprintf(os.Stderr, "Source tree is more than 7 days old. Run '%s sync' to refresh it.\n", branding.CLIName())
		}
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/agentsync-labs/agentsync/internal/config"
	"github.com/agentsync-labs/agentsync/internal/manifest"
	"github.com/agentsync-labs/agentsync/internal/resolve"
	"github.com/agentsync-labs/agentsync/internal/source"
	"github.com/agentsync-labs/agentsync/internal/syncer"
	"github.com/agentsync-labs/agentsync/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	syncSource   string
	syncTarget   string
	syncManifest string
	syncRepoURL  string
	syncDryRun   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync <value-stream>",
	Short: "Synchronize agent artifacts for a value stream",
	Long: `Synchronize the charters, definition files, prompt files, and runner units
of every agent applicable to the given value stream into the target workspace.
Agents in the utility stream are always included.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncSource, "source", "", "Local source tree to read from (skips clone/pull)")
	syncCmd.Flags().StringVar(&syncTarget, "target", ".", "Workspace directory to synchronize into")
	syncCmd.Flags().StringVar(&syncManifest, "manifest", "", "Manifest filename under the source root")
	syncCmd.Flags().StringVar(&syncRepoURL, "repo", "", "Source repository URL for the managed clone")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Resolve and classify without copying anything")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	stream := args[0]
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	m, root, err := loadManifest()
	if err != nil {
		return err
	}

	if m.Meta.NewerThanSupported() {
		fmt.Fprintf(errOut, "Warning: manifest version %s is newer than this build supports; results may be incomplete.\n", m.Meta.Version)
	}

	agents := m.AgentsFor(stream)
	if len(agents) == 0 {
		return fmt.Errorf("no agents apply to value stream %q (available: %v)", stream, m.Streams())
	}

	resolver := resolve.New(m, root)
	ops, warnings := resolver.Resolve(stream)
	if len(ops) == 0 {
		for _, w := range warnings {
			fmt.Fprintf(errOut, "  ⚠ %s\n", w)
		}
		return fmt.Errorf("no artifacts resolved for value stream %q", stream)
	}

	if syncDryRun {
		fmt.Fprintln(out, "Dry run: no files will be written.")
	}
	fmt.Fprintf(out, "Synchronizing %d agent(s) into %s...\n", len(agents), syncTarget)

	executor := syncer.New(syncTarget, syncDryRun)
	stats := executor.Execute(ops)

	for _, op := range ops {
		if op.Err != nil {
			fmt.Fprintf(out, "  ✗ %s: %s (%v)\n", op.Category, op.Dest, op.Err)
			continue
		}
		fmt.Fprintf(out, "  ✓ %s: %s (%s)\n", op.Category, op.Dest, op.Status)
	}

	for _, w := range warnings {
		fmt.Fprintf(errOut, "  ⚠ %s\n", w)
	}

	log := &workspace.RunLog{
		Stream:     stream,
		Source:     root,
		Target:     syncTarget,
		DryRun:     syncDryRun,
		Started:    time.Now(),
		Agents:     agentNames(agents),
		Warnings:   warnings,
		Operations: ops,
		Stats:      stats,
	}
	logPath, err := log.Write(syncTarget)
	if err != nil {
		fmt.Fprintf(errOut, "Warning: could not write run log: %v\n", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Done: %s\n", stats)
	if !syncDryRun && logPath != "" {
		fmt.Fprintf(out, "Log: %s\n", logPath)
	}
	return nil
}

// loadManifest acquires the source tree and parses its manifest. Both are
// fatal preconditions for a run.
func loadManifest() (*manifest.Manifest, string, error) {
	config.Load()

	dir := syncSource
	if dir == "" {
		dir = config.Get("source_dir")
	}
	repoURL := syncRepoURL
	if repoURL == "" {
		repoURL = config.Get("source_repo")
	}

	root, err := source.Ensure(dir, repoURL)
	if err != nil {
		return nil, "", fmt.Errorf("acquiring source tree: %w", err)
	}

	name := syncManifest
	if name == "" {
		name = config.Get("manifest")
	}
	if name == "" {
		name = manifest.DefaultFileName
	}

	m, err := manifest.Load(filepath.Join(root, name))
	if err != nil {
		return nil, "", err
	}
	return m, root, nil
}

func agentNames(agents []manifest.Agent) []string {
	names := make([]string, len(agents))
	for i, a := range agents {
		names[i] = a.Name
	}
	return names
}

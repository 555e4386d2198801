package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentsync-labs/agentsync/internal/layout"
)

// gitignoreEntries must be present in the workspace .gitignore so run logs
// and scratch files never end up in version control.
var gitignoreEntries = []string{
	layout.LogsDir + "/",
	layout.TempDir + "/",
}

// Init creates the workspace folder structure and .gitignore at root.
// Idempotent: existing folders and .gitignore entries are preserved.
// Progress messages go to w.
func Init(root string, w io.Writer) error {
	for _, dir := range layout.RequiredDirs {
		if err := ensureDir(w, filepath.Join(root, dir)); err != nil {
			return err
		}
	}
	return ensureGitignore(root, w)
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(w io.Writer, path string) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			fmt.Fprintf(w, "  [SKIP] %s already exists\n", path)
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if err := os.MkdirAll(path, layout.DirPerm); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [CREATE] %s\n", path)
	return nil
}

// ensureGitignore creates .gitignore or extends it with the required
// entries, keeping whatever lines are already there.
func ensureGitignore(root string, w io.Writer) error {
	path := filepath.Join(root, ".gitignore")

	existing := make(map[string]bool)
	var lines []string
	if data, err := os.ReadFile(path); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" {
				existing[trimmed] = true
				lines = append(lines, trimmed)
			}
		}
	}

	var missing []string
	for _, entry := range gitignoreEntries {
		if !existing[entry] {
			missing = append(missing, entry)
		}
	}

	if len(missing) == 0 && len(existing) > 0 {
		fmt.Fprintf(w, "  [SKIP] .gitignore already covers %s\n", strings.Join(gitignoreEntries, " and "))
		return nil
	}

	sort.Strings(missing)
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, "# Workspace generated files and logs")
	lines = append(lines, missing...)

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), layout.FilePerm); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	fmt.Fprintf(w, "  [UPDATE] .gitignore (+%d entries)\n", len(missing))
	return nil
}

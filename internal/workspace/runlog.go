package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentsync-labs/agentsync/internal/layout"
	"github.com/agentsync-labs/agentsync/internal/resolve"
	"github.com/agentsync-labs/agentsync/internal/syncer"
)

// RunLog is the human-readable record of one synchronization run: which
// agents resolved, every warning, and the per-operation outcome. It is
// written once per run under the workspace logs directory.
type RunLog struct {
	Stream     string
	Source     string
	Target     string
	DryRun     bool
	Started    time.Time
	Agents     []string
	Warnings   []string
	Operations []*resolve.FileOperation
	Stats      syncer.Stats
}

// Write renders the log and stores it at logs/sync-<stream>-<timestamp>.log.
// The written path is returned. Dry runs are rendered but not persisted.
func (l *RunLog) Write(root string) (string, error) {
	name := fmt.Sprintf("sync-%s-%s.log", l.Stream, l.Started.Format("20060102-150405"))
	path := filepath.Join(root, layout.LogsDir, name)

	if l.DryRun {
		return path, nil
	}

	if err := os.MkdirAll(filepath.Join(root, layout.LogsDir), layout.DirPerm); err != nil {
		return "", fmt.Errorf("creating logs directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(l.render()), layout.FilePerm); err != nil {
		return "", fmt.Errorf("writing run log: %w", err)
	}
	return path, nil
}

func (l *RunLog) render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "timestamp: %s\n", l.Started.Format(time.RFC3339))
	fmt.Fprintf(&b, "value_stream: %s\n", l.Stream)
	fmt.Fprintf(&b, "source: %s\n", l.Source)
	fmt.Fprintf(&b, "target: %s\n", l.Target)
	fmt.Fprintf(&b, "agents: %s\n", strings.Join(l.Agents, ", "))

	if len(l.Warnings) > 0 {
		b.WriteString("warnings:\n")
		for _, w := range l.Warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}

	if len(l.Operations) > 0 {
		b.WriteString("operations:\n")
		for _, op := range l.Operations {
			fmt.Fprintf(&b, "  [%s] %s -> %s (%s)\n", op.Status, op.Source, op.Dest, op.Category)
			if op.Err != nil {
				fmt.Fprintf(&b, "    error: %v\n", op.Err)
			}
		}
	}

	fmt.Fprintf(&b, "stats: %s\n", l.Stats)
	return b.String()
}

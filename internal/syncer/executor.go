package syncer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentsync-labs/agentsync/internal/resolve"
)

// excludedNames are files/directories skipped during module replacement.
var excludedNames = map[string]bool{
	".git":        true,
	"__pycache__": true,
	".DS_Store":   true,
}

// Stats tallies terminal operation statuses for one run.
type Stats struct {
	New             int
	Updated         int
	Unchanged       int
	Errors          int
	ModulesReplaced int
}

// Total returns the number of operations that completed without error.
func (s Stats) Total() int {
	return s.New + s.Updated + s.Unchanged + s.ModulesReplaced
}

// String renders the stats in a fixed order for summaries and logs.
func (s Stats) String() string {
	return fmt.Sprintf("new=%d updated=%d unchanged=%d errors=%d modules_replaced=%d",
		s.New, s.Updated, s.Unchanged, s.Errors, s.ModulesReplaced)
}

// Executor applies planned operations against a workspace root, strictly in
// resolution order. Execution is best-effort: an I/O failure marks its
// operation as errored and the run continues.
type Executor struct {
	DestRoot string
	DryRun   bool
}

// New returns an executor writing into destRoot.
func New(destRoot string, dryRun bool) *Executor {
	return &Executor{DestRoot: destRoot, DryRun: dryRun}
}

// Execute applies every operation, setting each one's terminal status, and
// returns the aggregate counts.
func (e *Executor) Execute(ops []*resolve.FileOperation) Stats {
	var stats Stats
	for _, op := range ops {
		if op.Module {
			e.executeModule(op, &stats)
		} else {
			e.executeFile(op, &stats)
		}
	}
	return stats
}

// executeModule replaces the destination directory wholesale: the existing
// tree is removed first so stale files from a previous version cannot
// survive, then the source tree is copied in full.
func (e *Executor) executeModule(op *resolve.FileOperation, stats *Stats) {
	dst := e.abs(op.Dest)

	if e.DryRun {
		op.Status = resolve.StatusModuleReplaced
		stats.ModulesReplaced++
		return
	}

	if _, err := os.Stat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			e.fail(op, stats, fmt.Errorf("removing existing module at %s: %w", dst, err))
			return
		}
	}

	if err := copyDir(op.Source, dst); err != nil {
		e.fail(op, stats, fmt.Errorf("copying module %s: %w", op.Source, err))
		return
	}

	op.Status = resolve.StatusModuleReplaced
	stats.ModulesReplaced++
}

// executeFile classifies the operation by comparing byte content with the
// existing destination, then copies the source over it. Classification and
// copy both count toward the error tally on failure.
func (e *Executor) executeFile(op *resolve.FileOperation, stats *Stats) {
	dst := e.abs(op.Dest)

	status, err := classify(op.Source, dst)
	if err != nil {
		e.fail(op, stats, err)
		return
	}

	if !e.DryRun {
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			e.fail(op, stats, fmt.Errorf("creating %s: %w", filepath.Dir(dst), err))
			return
		}
		if err := copyFile(op.Source, dst); err != nil {
			e.fail(op, stats, err)
			return
		}
	}

	op.Status = status
	switch status {
	case resolve.StatusNew:
		stats.New++
	case resolve.StatusUpdated:
		stats.Updated++
	case resolve.StatusUnchanged:
		stats.Unchanged++
	}
}

func (e *Executor) fail(op *resolve.FileOperation, stats *Stats, err error) {
	op.Status = resolve.StatusError
	op.Err = err
	stats.Errors++
}

func (e *Executor) abs(rel string) string {
	return filepath.Join(e.DestRoot, filepath.FromSlash(rel))
}

// classify determines the pre-copy status of a file operation: new when the
// destination is absent, otherwise unchanged or updated by byte equality.
func classify(src, dst string) (resolve.Status, error) {
	if _, err := os.Stat(dst); os.IsNotExist(err) {
		return resolve.StatusNew, nil
	} else if err != nil {
		return resolve.StatusError, fmt.Errorf("inspecting %s: %w", dst, err)
	}

	srcData, err := os.ReadFile(src)
	if err != nil {
		return resolve.StatusError, fmt.Errorf("reading %s: %w", src, err)
	}
	dstData, err := os.ReadFile(dst)
	if err != nil {
		return resolve.StatusError, fmt.Errorf("reading %s: %w", dst, err)
	}

	if bytes.Equal(srcData, dstData) {
		return resolve.StatusUnchanged, nil
	}
	return resolve.StatusUpdated, nil
}

// copyDir recursively copies src to dst, excluding entries in excludedNames.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if excludedNames[entry.Name()] {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else if entry.Type().IsRegular() {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
		// Skip symlinks and other special files during copy.
	}

	return nil
}

// copyFile copies a single file from src to dst, preserving permissions and
// modification time.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dst, data, srcInfo.Mode()); err != nil {
		return err
	}

	// Best effort: not every platform lets us backdate the mtime.
	_ = os.Chtimes(dst, time.Now(), srcInfo.ModTime())
	return nil
}

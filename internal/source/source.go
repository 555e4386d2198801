// Package source acquires the canonical source tree the synchronizer reads
// from. It handles cloning, updating, and freshness tracking of the managed
// source repository, or hands back an explicit local directory untouched.
package source

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agentsync-labs/agentsync/internal/branding"
)

const (
	// RepoDir is the managed clone directory under the home dot-directory.
	RepoDir = "source-repo"

	// freshnessFile is the name of the timestamp marker file.
	freshnessFile = ".source-updated"

	// DefaultMaxAge is the default staleness threshold (7 days).
	DefaultMaxAge = 7 * 24 * time.Hour

	// tmpSuffix is appended to the target dir during atomic clone.
	tmpSuffix = ".tmp"
)

// DefaultRepoDir returns the managed clone location. The AGENTSYNC_SOURCE
// env var overrides it; otherwise it lives under ~/.agentsync/source-repo.
func DefaultRepoDir() (string, error) {
	if v := os.Getenv(branding.EnvVar("SOURCE")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir(), RepoDir), nil
}

// Ensure returns a readable source root. An explicit localDir wins and must
// already exist; otherwise the managed repository is cloned or pulled.
// Failure here is a fatal precondition for the whole run.
func Ensure(localDir, repoURL string) (string, error) {
	if localDir != "" {
		info, err := os.Stat(localDir)
		if err != nil {
			return "", fmt.Errorf("source directory %s: %w", localDir, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("source %s is not a directory", localDir)
		}
		return localDir, nil
	}

	repoDir, err := DefaultRepoDir()
	if err != nil {
		return "", err
	}
	if err := Update(repoDir, repoURL); err != nil {
		return "", err
	}
	return repoDir, nil
}

// Clone performs a shallow clone of the source repository into targetDir.
//
// The clone is atomic: it writes to a .tmp directory first, then renames
// on success. On failure the .tmp directory is cleaned up.
func Clone(targetDir, repoURL string) error {
	if err := ensureGit(); err != nil {
		return err
	}
	if repoURL == "" {
		repoURL = branding.SourceRepoURL()
	}

	tmpDir := targetDir + tmpSuffix

	// Clean up any leftover tmp dir from a previous failed attempt.
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(filepath.Dir(tmpDir), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	cmd := exec.Command("git", "clone", "--depth=1", repoURL, tmpDir)
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("cloning source: %w\n%s", err, strings.TrimSpace(string(output)))
	}

	// Atomic rename.
	if err := os.RemoveAll(targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("removing existing source dir: %w", err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("finalizing source clone: %w", err)
	}

	WriteFreshnessMarker(targetDir)
	return nil
}

// Update pulls the latest changes in the source repo directory.
// If the directory isn't a git repository yet, it clones instead.
func Update(repoDir, repoURL string) error {
	if err := ensureGit(); err != nil {
		return err
	}

	gitDir := filepath.Join(repoDir, ".git")
	if _, err := os.Stat(gitDir); os.IsNotExist(err) {
		return Clone(repoDir, repoURL)
	}

	cmd := exec.Command("git", "pull", "--depth=1", "--rebase")
	cmd.Dir = repoDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pulling source updates: %w\n%s", err, strings.TrimSpace(string(output)))
	}

	WriteFreshnessMarker(repoDir)
	return nil
}

// WriteFreshnessMarker writes the current Unix timestamp to the freshness file.
func WriteFreshnessMarker(repoDir string) {
	markerPath := filepath.Join(repoDir, freshnessFile)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(markerPath, []byte(ts), 0644)
}

// ReadFreshnessMarker reads the timestamp from the freshness file.
// Returns zero time if the file doesn't exist or can't be parsed.
func ReadFreshnessMarker(repoDir string) time.Time {
	markerPath := filepath.Join(repoDir, freshnessFile)
	data, err := os.ReadFile(markerPath)
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// IsStale returns true if the source was last updated more than maxAge ago.
// Returns true if the freshness marker doesn't exist.
func IsStale(repoDir string, maxAge time.Duration) bool {
	lastUpdated := ReadFreshnessMarker(repoDir)
	if lastUpdated.IsZero() {
		return true
	}
	return time.Since(lastUpdated) > maxAge
}

// ensureGit checks that git is available on PATH.
func ensureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is required but not found in PATH")
	}
	return nil
}

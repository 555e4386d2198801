package source

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestEnsure_ExplicitLocalDir(t *testing.T) {
	dir := t.TempDir()

	got, err := Ensure(dir, "")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if got != dir {
		t.Errorf("Ensure = %q, want the explicit directory %q", got, dir)
	}
}

func TestEnsure_MissingLocalDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := Ensure(missing, "")
	if err == nil {
		t.Fatal("expected error for a nonexistent source directory")
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error = %v, want mention of %q", err, missing)
	}
}

func TestEnsure_LocalDirIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Ensure(path, "")
	if err == nil {
		t.Fatal("expected error when the source path is a file")
	}
	if !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("error = %v, want non-directory complaint", err)
	}
}

func TestFreshnessMarker_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	if got := ReadFreshnessMarker(dir); !got.IsZero() {
		t.Errorf("marker in empty dir = %v, want zero time", got)
	}

	before := time.Now()
	WriteFreshnessMarker(dir)
	got := ReadFreshnessMarker(dir)

	if got.IsZero() {
		t.Fatal("marker not readable after write")
	}
	// Unix-second precision on the marker.
	if got.Before(before.Truncate(time.Second)) || got.After(time.Now()) {
		t.Errorf("marker = %v, want between %v and now", got, before)
	}
}

func TestReadFreshnessMarker_Garbage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, freshnessFile), []byte("not a timestamp"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := ReadFreshnessMarker(dir); !got.IsZero() {
		t.Errorf("garbage marker = %v, want zero time", got)
	}
}

func TestIsStale(t *testing.T) {
	dir := t.TempDir()

	if !IsStale(dir, DefaultMaxAge) {
		t.Error("missing marker should count as stale")
	}

	WriteFreshnessMarker(dir)
	if IsStale(dir, DefaultMaxAge) {
		t.Error("freshly written marker should not be stale")
	}

	old := strconv.FormatInt(time.Now().Add(-8*24*time.Hour).Unix(), 10)
	if err := os.WriteFile(filepath.Join(dir, freshnessFile), []byte(old), 0644); err != nil {
		t.Fatal(err)
	}
	if !IsStale(dir, DefaultMaxAge) {
		t.Error("8-day-old marker should exceed the 7-day threshold")
	}
	if IsStale(dir, 30*24*time.Hour) {
		t.Error("8-day-old marker should pass a 30-day threshold")
	}
}

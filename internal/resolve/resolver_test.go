package resolve

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentsync-labs/agentsync/internal/manifest"
)

func writeFile(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func parseManifest(t *testing.T, doc string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parsing test manifest: %v", err)
	}
	return m
}

func opsByCategory(ops []*FileOperation, cat manifest.Category) []*FileOperation {
	var out []*FileOperation
	for _, op := range ops {
		if op.Category == cat {
			out = append(out, op)
		}
	}
	return out
}

func TestResolve_PromptsWithoutCharter(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "artifacts/docs/prompts/writer.draft.prompt.md", "draft")
	writeFile(t, src, "artifacts/docs/prompts/writer.review.prompt.md", "review")

	m := parseManifest(t, `
agents:
  - name: writer
    value_stream: docs
    prompts: 2
locations:
  prompts: artifacts/{stream}/prompts/{agent}*.prompt.md
`)

	ops, warnings := New(m, src).Resolve("docs")

	prompts := opsByCategory(ops, manifest.CategoryPrompts)
	if len(prompts) != 2 {
		t.Fatalf("prompt ops = %d, want 2", len(prompts))
	}
	for _, op := range prompts {
		if !strings.HasPrefix(op.Dest, ".github/prompts/") {
			t.Errorf("prompt dest %q not under .github/prompts/", op.Dest)
		}
		if op.Status != StatusPending {
			t.Errorf("fresh op status = %s, want pending", op.Status)
		}
	}

	if got := opsByCategory(ops, manifest.CategoryRunners); len(got) != 0 {
		t.Errorf("runner ops = %d, want 0 (declared count is zero)", len(got))
	}

	if len(warnings) != 1 || warnings[0] != "writer: charter not found" {
		t.Errorf("warnings = %v, want exactly [writer: charter not found]", warnings)
	}
}

func TestResolve_CharterPrimaryConvention(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "artifacts/docs/charters/writer.charter.md", "charter")

	m := parseManifest(t, `
agents:
  - name: writer
    value_stream: docs
locations:
  charters: artifacts/{stream}/charters/{agent}.charter.md
`)

	ops, warnings := New(m, src).Resolve("docs")
	charters := opsByCategory(ops, manifest.CategoryCharters)
	if len(charters) != 1 {
		t.Fatalf("charter ops = %d, want 1 (warnings: %v)", len(charters), warnings)
	}
	if charters[0].Dest != "charters-agents/writer.md" {
		t.Errorf("charter dest = %q, want charters-agents/writer.md", charters[0].Dest)
	}
}

func TestResolve_CharterAlternateConvention(t *testing.T) {
	src := t.TempDir()
	// Only the alternate naming exists.
	writeFile(t, src, "artifacts/docs/charters/charter.writer.md", "charter")

	m := parseManifest(t, `
agents:
  - name: writer
    value_stream: docs
locations:
  charters: artifacts/{stream}/charters/{agent}.charter.md
`)

	ops, warnings := New(m, src).Resolve("docs")
	charters := opsByCategory(ops, manifest.CategoryCharters)
	if len(charters) != 1 {
		t.Fatalf("charter ops = %d, want 1 via fallback (warnings: %v)", len(charters), warnings)
	}
	if !strings.HasSuffix(charters[0].Source, filepath.FromSlash("charters/charter.writer.md")) {
		t.Errorf("charter source = %q, want the alternate-convention file", charters[0].Source)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
}

func TestResolve_UtilityAgentAppliesEverywhere(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "artifacts/utility/charters/librarian.charter.md", "charter")

	m := parseManifest(t, `
agents:
  - name: librarian
    value_stream: utility
locations:
  charters: artifacts/{stream}/charters/{agent}.charter.md
`)

	ops, _ := New(m, src).Resolve("docs")
	charters := opsByCategory(ops, manifest.CategoryCharters)
	if len(charters) != 1 {
		t.Fatalf("charter ops = %d, want 1: utility agents must resolve for any stream", len(charters))
	}
	if !strings.Contains(charters[0].Source, filepath.FromSlash("artifacts/utility")) {
		t.Errorf("utility artifacts must resolve under the utility tree, got %q", charters[0].Source)
	}
}

func TestResolve_DefinitionsAlwaysAttempted(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "artifacts/docs/charters/writer.charter.md", "charter")
	// The manifest declares zero definitions, but the files exist anyway.
	writeFile(t, src, "artifacts/docs/definitions/writer.edit.agent.md", "a")
	writeFile(t, src, "artifacts/docs/definitions/writer.review.agent.md", "b")

	m := parseManifest(t, `
agents:
  - name: writer
    value_stream: docs
locations:
  charters: artifacts/{stream}/charters/{agent}.charter.md
  definitions: artifacts/{stream}/definitions/{agent}*.agent.md
`)

	ops, warnings := New(m, src).Resolve("docs")
	defs := opsByCategory(ops, manifest.CategoryDefinitions)
	if len(defs) != 2 {
		t.Fatalf("definition ops = %d, want 2 despite declared count 0", len(defs))
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none: zero-count categories never warn", warnings)
	}
}

func TestResolve_DefinitionsCountMismatchWarns(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "artifacts/docs/charters/writer.charter.md", "charter")

	m := parseManifest(t, `
agents:
  - name: writer
    value_stream: docs
    definitions: 2
locations:
  charters: artifacts/{stream}/charters/{agent}.charter.md
  definitions: artifacts/{stream}/definitions/{agent}*.agent.md
`)

	_, warnings := New(m, src).Resolve("docs")
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one count mismatch", warnings)
	}
	if !strings.Contains(warnings[0], "writer") || !strings.Contains(warnings[0], "definition") {
		t.Errorf("warning %q does not identify the agent and category", warnings[0])
	}
}

func TestResolve_DefinitionsConventionFallback(t *testing.T) {
	src := t.TempDir()
	// No definitions template declared: the convention directory is scanned.
	writeFile(t, src, "artifacts/docs/definitions/writer.edit.agent.md", "a")

	m := parseManifest(t, `
agents:
  - name: writer
    value_stream: docs
    definitions: 1
`)

	ops, _ := New(m, src).Resolve("docs")
	defs := opsByCategory(ops, manifest.CategoryDefinitions)
	if len(defs) != 1 {
		t.Fatalf("definition ops = %d, want 1 from convention directory", len(defs))
	}
}

func TestResolve_PerStreamTemplateSelection(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "special/writer.one.prompt.md", "1")
	writeFile(t, src, "artifacts/delivery/prompts/planner.go.prompt.md", "2")

	m := parseManifest(t, `
agents:
  - name: writer
    value_stream: docs
    prompts: 1
  - name: planner
    value_stream: delivery
    prompts: 1
locations:
  prompts:
    docs: special/{agent}*.prompt.md
    default: artifacts/{stream}/prompts/{agent}*.prompt.md
`)

	r := New(m, src)

	docsOps, _ := r.Resolve("docs")
	if got := opsByCategory(docsOps, manifest.CategoryPrompts); len(got) != 1 || !strings.Contains(got[0].Source, "special") {
		t.Errorf("docs prompts should use the exact stream template, got %v", got)
	}

	deliveryOps, _ := r.Resolve("delivery")
	if got := opsByCategory(deliveryOps, manifest.CategoryPrompts); len(got) != 1 || !strings.Contains(got[0].Source, "delivery") {
		t.Errorf("delivery prompts should use the default template, got %v", got)
	}
}

func TestResolve_NoApplicableTemplateWarns(t *testing.T) {
	src := t.TempDir()

	m := parseManifest(t, `
agents:
  - name: planner
    value_stream: delivery
    prompts: 1
locations:
  prompts:
    docs: special/{agent}*.prompt.md
`)

	ops, warnings := New(m, src).Resolve("delivery")
	if got := opsByCategory(ops, manifest.CategoryPrompts); len(got) != 0 {
		t.Errorf("prompt ops = %d, want 0 when no template applies", len(got))
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "planner") && strings.Contains(w, "prompt") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a prompt expectation warning for planner", warnings)
	}
}

func TestResolve_ExcludedStreamIgnoresConventionFiles(t *testing.T) {
	src := t.TempDir()
	// Files exist under the convention directories, but the per-stream
	// template maps publish nothing for this stream.
	writeFile(t, src, "artifacts/delivery/charters/planner.charter.md", "charter")
	writeFile(t, src, "artifacts/delivery/prompts/planner.go.prompt.md", "prompt")

	m := parseManifest(t, `
agents:
  - name: planner
    value_stream: delivery
    prompts: 1
locations:
  charters:
    docs: artifacts/docs/charters/{agent}.charter.md
  prompts:
    docs: artifacts/docs/prompts/{agent}*.prompt.md
`)

	ops, warnings := New(m, src).Resolve("delivery")

	if got := opsByCategory(ops, manifest.CategoryCharters); len(got) != 0 {
		t.Errorf("charter ops = %d, want 0: excluded stream must not fall back to convention", len(got))
	}
	if got := opsByCategory(ops, manifest.CategoryPrompts); len(got) != 0 {
		t.Errorf("prompt ops = %d, want 0: excluded stream must not fall back to convention", len(got))
	}

	var charterWarned, promptWarned bool
	for _, w := range warnings {
		if strings.Contains(w, "charter not found") {
			charterWarned = true
		}
		if strings.Contains(w, "expected 1 prompt") {
			promptWarned = true
		}
	}
	if !charterWarned || !promptWarned {
		t.Errorf("warnings = %v, want charter and prompt gaps reported", warnings)
	}
}

func TestResolve_RunnerFile(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "artifacts/docs/runners/writer.runner.py", "print()")

	m := parseManifest(t, `
agents:
  - name: writer
    value_stream: docs
    runners: 1
locations:
  runners: artifacts/{stream}/runners/{agent}.runner.py
`)

	ops, _ := New(m, src).Resolve("docs")
	runners := opsByCategory(ops, manifest.CategoryRunners)
	if len(runners) != 1 {
		t.Fatalf("runner ops = %d, want 1", len(runners))
	}
	op := runners[0]
	if op.Module {
		t.Error("single unit file must not be a module operation")
	}
	if op.Dest != "scripts/runners/writer.runner.py" {
		t.Errorf("runner dest = %q, want scripts/runners/writer.runner.py", op.Dest)
	}
}

func TestResolve_RunnerModuleDirectory(t *testing.T) {
	src := t.TempDir()
	// No runner template: the convention directory holds a module.
	writeFile(t, src, "artifacts/docs/runners/writer/main.py", "print()")
	writeFile(t, src, "artifacts/docs/runners/writer/lib/util.py", "pass")

	m := parseManifest(t, `
agents:
  - name: writer
    value_stream: docs
    runners: 1
`)

	ops, warnings := New(m, src).Resolve("docs")
	runners := opsByCategory(ops, manifest.CategoryRunners)
	if len(runners) != 1 {
		t.Fatalf("runner ops = %d, want 1 (warnings: %v)", len(runners), warnings)
	}
	op := runners[0]
	if !op.Module {
		t.Error("directory-shaped runner must be a module operation")
	}
	if op.Dest != "scripts/runners/writer" {
		t.Errorf("module dest = %q, want scripts/runners/writer", op.Dest)
	}
}

func TestResolve_RunnerMissingWarns(t *testing.T) {
	src := t.TempDir()

	m := parseManifest(t, `
agents:
  - name: writer
    value_stream: docs
    runners: 1
`)

	ops, warnings := New(m, src).Resolve("docs")
	if got := opsByCategory(ops, manifest.CategoryRunners); len(got) != 0 {
		t.Errorf("runner ops = %d, want 0", len(got))
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "writer") && strings.Contains(w, "runner") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a runner-not-found warning", warnings)
	}
}

func TestResolve_OrderIsStable(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "artifacts/docs/prompts/writer.b.prompt.md", "b")
	writeFile(t, src, "artifacts/docs/prompts/writer.a.prompt.md", "a")

	m := parseManifest(t, `
agents:
  - name: writer
    value_stream: docs
    prompts: 2
locations:
  prompts: artifacts/{stream}/prompts/{agent}*.prompt.md
`)

	first, _ := New(m, src).Resolve("docs")
	second, _ := New(m, src).Resolve("docs")

	if len(first) != len(second) {
		t.Fatalf("op counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Source != second[i].Source {
			t.Errorf("op %d source differs across runs: %q vs %q", i, first[i].Source, second[i].Source)
		}
	}
	// Matches come out sorted.
	prompts := opsByCategory(first, manifest.CategoryPrompts)
	if len(prompts) == 2 && prompts[0].Source > prompts[1].Source {
		t.Errorf("prompt matches not sorted: %q before %q", prompts[0].Source, prompts[1].Source)
	}
}

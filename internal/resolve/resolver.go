package resolve

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentsync-labs/agentsync/internal/layout"
	"github.com/agentsync-labs/agentsync/internal/manifest"
	"github.com/agentsync-labs/agentsync/internal/template"
)

// Status is the lifecycle state of a planned file operation. The resolver
// creates every operation as StatusPending; the executor moves it to its
// terminal status exactly once.
type Status string

const (
	StatusPending        Status = "pending"
	StatusNew            Status = "new"
	StatusUpdated        Status = "updated"
	StatusUnchanged      Status = "unchanged"
	StatusError          Status = "error"
	StatusModuleReplaced Status = "module_replaced"
)

// FileOperation is one planned copy from the source tree into the
// workspace. Module operations designate a whole directory that is
// replaced wholesale at the destination.
type FileOperation struct {
	Agent    string
	Category manifest.Category
	Source   string // absolute path under the source root
	Dest     string // slash path relative to the workspace root
	Module   bool   // source designates a directory
	Status   Status
	Err      error // set when Status is StatusError
}

// conventionRoot is the source subtree scanned when the manifest declares
// no location template for a category.
const conventionRoot = "artifacts"

// Resolver plans file operations for a target value stream by matching the
// manifest's expectations against the actual source tree.
type Resolver struct {
	Manifest   *manifest.Manifest
	SourceRoot string
}

// New returns a resolver over the given manifest and source root.
func New(m *manifest.Manifest, sourceRoot string) *Resolver {
	return &Resolver{Manifest: m, SourceRoot: sourceRoot}
}

// Resolve produces the planned operations and resolution-gap warnings for
// every agent applicable to the target stream, in manifest order. A missing
// artifact is never fatal: the manifest is allowed to drift from the source
// tree, and every gap surfaces as a warning instead.
func (r *Resolver) Resolve(stream string) ([]*FileOperation, []string) {
	var ops []*FileOperation
	var warnings []string

	for _, agent := range r.Manifest.AgentsFor(stream) {
		ops = append(ops, r.resolveCharter(agent, &warnings)...)
		ops = append(ops, r.resolveGlobbed(agent, manifest.CategoryDefinitions, &warnings)...)
		if agent.Prompts > 0 {
			ops = append(ops, r.resolveGlobbed(agent, manifest.CategoryPrompts, &warnings)...)
		}
		if agent.Runners > 0 {
			ops = append(ops, r.resolveRunner(agent, &warnings)...)
		}
	}

	return ops, warnings
}

// resolveCharter locates the agent's charter, trying the primary naming
// convention and then the alternate one. The destination is always
// <charters-dir>/<agent>.md regardless of the source name.
func (r *Resolver) resolveCharter(agent manifest.Agent, warnings *[]string) []*FileOperation {
	tmpl, declared, ok := r.templateFor(manifest.CategoryCharters, agent.ValueStream)
	if !ok {
		if declared {
			// A per-stream template map that excludes this stream means
			// the manifest publishes no charter here at all.
			*warnings = append(*warnings, fmt.Sprintf("%s: charter not found", agent.Name))
			return nil
		}
		tmpl = path.Join(conventionRoot, "{stream}", "charters", "{agent}.charter.md")
	}
	primary := template.Substitute(tmpl, agent.Name, streamKey(agent))

	src := ""
	if fileExists(r.abs(primary)) {
		src = primary
	} else if alt, ok := template.CharterFallback(primary); ok && fileExists(r.abs(alt)) {
		src = alt
	}

	if src == "" {
		*warnings = append(*warnings, fmt.Sprintf("%s: charter not found", agent.Name))
		return nil
	}

	return []*FileOperation{{
		Agent:    agent.Name,
		Category: manifest.CategoryCharters,
		Source:   r.abs(src),
		Dest:     path.Join(layout.ChartersDir, agent.Name+".md"),
		Status:   StatusPending,
	}}
}

// resolveGlobbed handles the definitions and prompts categories: one
// operation per file matching the category's glob, destination named after
// the matched file. Definitions are always attempted even with a declared
// count of zero, since the manifest may under-report what actually exists.
func (r *Resolver) resolveGlobbed(agent manifest.Agent, cat manifest.Category, warnings *[]string) []*FileOperation {
	var dir, pattern string
	switch tmpl, declared, ok := r.templateFor(cat, agent.ValueStream); {
	case ok:
		p := template.Substitute(tmpl, agent.Name, streamKey(agent))
		dir, pattern = template.SplitGlob(p, cat, agent.Name)
	case declared:
		// A per-stream template map that excludes this stream publishes
		// nothing for it; the convention directory must not be scanned.
		if want := agent.ExpectedCount(cat); want > 0 {
			*warnings = append(*warnings, fmt.Sprintf("%s: expected %d %s file(s), found 0",
				agent.Name, want, singular(cat)))
		}
		return nil
	default:
		dir = path.Join(conventionRoot, streamKey(agent), string(cat))
		pattern = template.DefaultPattern(cat, agent.Name)
	}

	matches := r.glob(dir, pattern)

	var ops []*FileOperation
	for _, m := range matches {
		ops = append(ops, &FileOperation{
			Agent:    agent.Name,
			Category: cat,
			Source:   m,
			Dest:     path.Join(layout.DirFor(cat), filepath.Base(m)),
			Status:   StatusPending,
		})
	}

	if want := agent.ExpectedCount(cat); want > 0 && len(matches) != want {
		*warnings = append(*warnings, fmt.Sprintf("%s: expected %d %s file(s), found %d",
			agent.Name, want, singular(cat), len(matches)))
	}

	return ops
}

// resolveRunner locates the agent's runner unit: the primary template path
// first, then the conventional runner directory. A directory source becomes
// one module operation; a single unit file becomes one file operation.
func (r *Resolver) resolveRunner(agent manifest.Agent, warnings *[]string) []*FileOperation {
	tmpl, declared, ok := r.templateFor(manifest.CategoryRunners, agent.ValueStream)
	if declared && !ok {
		*warnings = append(*warnings, fmt.Sprintf("%s: runner unit not found", agent.Name))
		return nil
	}

	var candidates []string
	if ok {
		candidates = append(candidates, template.Substitute(tmpl, agent.Name, streamKey(agent)))
	}
	candidates = append(candidates, path.Join(conventionRoot, streamKey(agent), "runners", agent.Name))

	for _, cand := range candidates {
		info, err := os.Stat(r.abs(cand))
		if err != nil {
			continue
		}
		op := &FileOperation{
			Agent:    agent.Name,
			Category: manifest.CategoryRunners,
			Source:   r.abs(cand),
			Status:   StatusPending,
		}
		if info.IsDir() {
			op.Module = true
			op.Dest = path.Join(layout.RunnersDir, agent.Name)
		} else {
			op.Dest = path.Join(layout.RunnersDir, filepath.Base(cand))
		}
		return []*FileOperation{op}
	}

	*warnings = append(*warnings, fmt.Sprintf("%s: runner unit not found", agent.Name))
	return nil
}

// templateFor selects the category's template for a value stream. declared
// reports whether the manifest carries any template for the category at all;
// ok reports whether one applies to this stream. The caller falls back to
// the convention directory only when nothing is declared: a declared
// per-stream map that misses the stream resolves to nothing.
func (r *Resolver) templateFor(cat manifest.Category, stream string) (tmpl string, declared, ok bool) {
	lt, exists := r.Manifest.Location(cat)
	if !exists || lt.IsZero() {
		return "", false, false
	}
	tmpl, ok = lt.ForStream(strings.ToLower(stream))
	return tmpl, true, ok
}

// glob matches pattern inside dir relative to the source root. Results are
// sorted so resolution order is stable across runs.
func (r *Resolver) glob(dir, pattern string) []string {
	matches, err := filepath.Glob(filepath.Join(r.abs(dir), pattern))
	if err != nil {
		// Only malformed patterns error here; treat them as zero matches.
		return nil
	}
	var files []string
	for _, m := range matches {
		if fileExists(m) {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func (r *Resolver) abs(rel string) string {
	return filepath.Join(r.SourceRoot, filepath.FromSlash(rel))
}

// streamKey returns the agent's own value stream in canonical lower case.
// Templates resolve against the agent's stream, not the requested target,
// so utility agents find their artifacts under the utility tree.
func streamKey(agent manifest.Agent) string {
	return strings.ToLower(agent.ValueStream)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func singular(cat manifest.Category) string {
	return strings.TrimSuffix(string(cat), "s")
}

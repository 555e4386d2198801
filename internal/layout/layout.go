// Package layout defines the fixed consumer-side destination subtrees per
// artifact category. It is a leaf package so both resolution planning and
// workspace bootstrapping can share the same constants.
package layout

import (
	"os"

	"github.com/agentsync-labs/agentsync/internal/manifest"
)

// Destination subtrees under the workspace root. Every synchronized file
// lands in the subtree of its category, never anywhere a template points.
const (
	ChartersDir    = "charters-agents"
	DefinitionsDir = ".github/agents"
	PromptsDir     = ".github/prompts"
	RunnersDir     = "scripts/runners"
	DocsDir        = "docs"
	LogsDir        = "logs"
	TempDir        = "temp"
)

// Permission constants.
const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644
)

// RequiredDirs lists the folders a workspace needs, in creation order.
var RequiredDirs = []string{
	ChartersDir,
	DefinitionsDir,
	PromptsDir,
	RunnersDir,
	DocsDir,
	LogsDir,
	TempDir,
}

// DirFor returns the destination subtree for an artifact category.
func DirFor(cat manifest.Category) string {
	switch cat {
	case manifest.CategoryCharters:
		return ChartersDir
	case manifest.CategoryDefinitions:
		return DefinitionsDir
	case manifest.CategoryPrompts:
		return PromptsDir
	case manifest.CategoryRunners:
		return RunnersDir
	default:
		return TempDir
	}
}

package layout

import (
	"testing"

	"github.com/agentsync-labs/agentsync/internal/manifest"
)

func TestDirFor(t *testing.T) {
	tests := []struct {
		cat  manifest.Category
		want string
	}{
		{manifest.CategoryCharters, ChartersDir},
		{manifest.CategoryDefinitions, DefinitionsDir},
		{manifest.CategoryPrompts, PromptsDir},
		{manifest.CategoryRunners, RunnersDir},
	}
	for _, tt := range tests {
		if got := DirFor(tt.cat); got != tt.want {
			t.Errorf("DirFor(%s) = %q, want %q", tt.cat, got, tt.want)
		}
	}
}

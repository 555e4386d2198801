package template

import (
	"path"
	"strings"

	"github.com/agentsync-labs/agentsync/internal/manifest"
)

// Placeholder tokens recognized in location templates. Any other brace
// expression is left verbatim.
const (
	AgentToken  = "{agent}"
	StreamToken = "{stream}"
)

// charterSuffix is the primary charter naming convention; the alternate
// convention prefixes the agent name with "charter." instead.
const charterSuffix = ".charter.md"

// Substitute replaces the agent and stream placeholders in a template.
// Unmatched placeholder text is not an error and stays as-is.
func Substitute(tmpl, agent, stream string) string {
	s := strings.ReplaceAll(tmpl, AgentToken, agent)
	return strings.ReplaceAll(s, StreamToken, stream)
}

// DefaultPattern synthesizes the conventional glob for a category, named
// after the agent with the category's suffix.
func DefaultPattern(cat manifest.Category, agent string) string {
	switch cat {
	case manifest.CategoryCharters:
		return agent + charterSuffix
	case manifest.CategoryDefinitions:
		return agent + "*.agent.md"
	case manifest.CategoryPrompts:
		return agent + "*.prompt.md"
	case manifest.CategoryRunners:
		return agent + "*.runner.py"
	default:
		return agent + "*"
	}
}

// SplitGlob splits a substituted template path into a directory prefix and
// a glob pattern. A path carrying a wildcard splits at the final separator;
// a path without one keeps its directory prefix and gets the category's
// default pattern synthesized in place of its final component. A trailing
// separator marks the whole path as the directory.
func SplitGlob(p string, cat manifest.Category, agent string) (dir, pattern string) {
	trailing := strings.HasSuffix(p, "/")
	p = path.Clean(p)

	i := strings.LastIndex(p, "/")
	if strings.Contains(p, "*") {
		if i < 0 {
			return "", p
		}
		return p[:i], p[i+1:]
	}

	if trailing {
		return p, DefaultPattern(cat, agent)
	}
	if i < 0 {
		return "", DefaultPattern(cat, agent)
	}
	return p[:i], DefaultPattern(cat, agent)
}

// CharterFallback constructs the alternate charter naming convention for a
// substituted charter path: <agent>.charter.md becomes charter.<agent>.md
// and vice versa. The second return is false when the path follows neither
// convention.
func CharterFallback(p string) (string, bool) {
	dir, base := path.Split(p)

	if strings.HasSuffix(base, charterSuffix) {
		agent := strings.TrimSuffix(base, charterSuffix)
		if agent == "" {
			return "", false
		}
		return dir + "charter." + agent + ".md", true
	}

	if strings.HasPrefix(base, "charter.") && strings.HasSuffix(base, ".md") {
		agent := strings.TrimSuffix(strings.TrimPrefix(base, "charter."), ".md")
		if agent == "" {
			return "", false
		}
		return dir + agent + charterSuffix, true
	}

	return "", false
}

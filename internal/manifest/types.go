package manifest

import (
	"sort"
	"strings"
)

// UtilityStream is the reserved value-stream name whose agents apply to
// every synchronization target.
const UtilityStream = "utility"

// Category identifies one of the four artifact categories an agent can own.
type Category string

const (
	CategoryCharters    Category = "charters"
	CategoryDefinitions Category = "definitions"
	CategoryPrompts     Category = "prompts"
	CategoryRunners     Category = "runners"
)

// Categories lists all artifact categories in resolution order.
var Categories = []Category{
	CategoryCharters,
	CategoryDefinitions,
	CategoryPrompts,
	CategoryRunners,
}

// Agent is one manifest entry: a named agent scoped to a value stream with
// its declared artifact expectations. An agent always expects exactly one
// charter; the remaining counts come from the manifest (0 when absent).
// Agents are constructed once during parsing and never mutated.
type Agent struct {
	Name        string
	ValueStream string
	Prompts     int
	Definitions int
	Runners     int
}

// AppliesTo reports whether the agent is relevant for the given target
// stream. Agents in the utility stream apply everywhere; all others apply
// only to their own stream. Comparison is case-insensitive.
func (a Agent) AppliesTo(stream string) bool {
	if strings.EqualFold(a.ValueStream, UtilityStream) {
		return true
	}
	return strings.EqualFold(a.ValueStream, stream)
}

// ExpectedCount returns the declared expectation for a category.
func (a Agent) ExpectedCount(cat Category) int {
	switch cat {
	case CategoryCharters:
		return 1
	case CategoryDefinitions:
		return a.Definitions
	case CategoryPrompts:
		return a.Prompts
	case CategoryRunners:
		return a.Runners
	default:
		return 0
	}
}

// LocationTemplate is either a single path template or a per-stream map of
// templates with an optional "default" entry. It is read-only manifest data.
type LocationTemplate struct {
	Single    string
	PerStream map[string]string
}

// defaultKey is the per-stream map entry used when no exact stream matches.
const defaultKey = "default"

// ForStream resolves the template for a value stream: a single template
// always wins, otherwise the exact stream key, otherwise "default".
// The second return is false when no template applies.
func (lt LocationTemplate) ForStream(stream string) (string, bool) {
	if lt.Single != "" {
		return lt.Single, true
	}
	for k, t := range lt.PerStream {
		if strings.EqualFold(k, stream) {
			return t, true
		}
	}
	if t, ok := lt.PerStream[defaultKey]; ok {
		return t, true
	}
	return "", false
}

// IsZero reports whether no template was declared at all.
func (lt LocationTemplate) IsZero() bool {
	return lt.Single == "" && len(lt.PerStream) == 0
}

// Metadata holds the manifest's publication header.
type Metadata struct {
	Version     string
	PublishedAt string
}

// Manifest is the normalized form of the publication document. Both schema
// generations decode into this single representation, so nothing downstream
// branches on schema shape.
type Manifest struct {
	Meta      Metadata
	Locations map[Category]LocationTemplate
	Agents    []Agent

	// streams holds the grouping keys of the nested form. Empty for the
	// flat form, where streams derive from the parsed agents instead.
	streams []string
}

// Location returns the declared template for a category, if any.
func (m *Manifest) Location(cat Category) (LocationTemplate, bool) {
	lt, ok := m.Locations[cat]
	return lt, ok
}

// Streams returns the sorted distinct non-utility value-stream names known
// to the manifest: the grouping keys in nested form, or the streams of the
// parsed agents in flat form.
func (m *Manifest) Streams() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		key := strings.ToLower(name)
		if key == UtilityStream || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, name)
	}

	if len(m.streams) > 0 {
		for _, s := range m.streams {
			add(s)
		}
	} else {
		for _, a := range m.Agents {
			add(a.ValueStream)
		}
	}

	sort.Strings(out)
	return out
}

// AgentsFor returns the agents applicable to the target stream, in
// manifest order.
func (m *Manifest) AgentsFor(stream string) []Agent {
	var out []Agent
	for _, a := range m.Agents {
		if a.AppliesTo(stream) {
			out = append(out, a)
		}
	}
	return out
}

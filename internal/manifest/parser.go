package manifest

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.yaml.in/yaml/v3"
)

// DefaultFileName is the publication manifest's conventional name under
// the source root.
const DefaultFileName = "agents-publicatie.json"

// SupportedSchemaMajor is the newest manifest schema generation this build
// understands. Nested agent groupings are the 1.x shape; flat agent records
// arrived with 2.x. Both are accepted transparently.
const SupportedSchemaMajor = 2

// NewerThanSupported reports whether the manifest declares a schema version
// beyond what this build supports. Unparsable versions report false.
func (m Metadata) NewerThanSupported() bool {
	v, err := semver.NewVersion(m.Version)
	if err != nil {
		return false
	}
	return v.Major() > SupportedSchemaMajor
}

// Load reads the manifest document at path, validates it against the
// embedded schema, and parses it into the normalized Manifest form.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating manifest %s: %w", path, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("manifest %s failed schema validation: %s", path, result.Summary())
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}

// rawManifest mirrors the document header. The agents section is kept as a
// raw node so its shape (mapping vs. list) can be detected before decoding.
type rawManifest struct {
	Versie          string               `yaml:"versie"`
	Version         string               `yaml:"version"`
	Publicatiedatum string               `yaml:"publicatiedatum"`
	PublishedAt     string               `yaml:"published_at"`
	Locations       map[string]yaml.Node `yaml:"locations"`
	Agents          yaml.Node            `yaml:"agents"`
}

// Parse decodes a manifest document (JSON or YAML) into the normalized
// Manifest. The agents section may be the nested mapping form (value stream
// to agent names to counts) or the flat list form (records carrying their
// own name and value_stream); detection is structural, never caller-chosen.
func Parse(data []byte) (*Manifest, error) {
	var raw rawManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}

	m := &Manifest{
		Meta: Metadata{
			Version:     firstNonEmpty(raw.Versie, raw.Version),
			PublishedAt: firstNonEmpty(raw.Publicatiedatum, raw.PublishedAt),
		},
		Locations: make(map[Category]LocationTemplate),
	}

	for key, node := range raw.Locations {
		cat := Category(key)
		switch cat {
		case CategoryCharters, CategoryDefinitions, CategoryPrompts, CategoryRunners:
			lt, err := decodeLocation(&node)
			if err != nil {
				return nil, fmt.Errorf("locations.%s: %w", key, err)
			}
			m.Locations[cat] = lt
		}
		// Unknown location keys are rejected by the schema; Parse tolerates them.
	}

	switch raw.Agents.Kind {
	case yaml.MappingNode:
		if err := parseNestedAgents(&raw.Agents, m); err != nil {
			return nil, err
		}
	case yaml.SequenceNode:
		if err := parseFlatAgents(&raw.Agents, m); err != nil {
			return nil, err
		}
	case 0:
		return nil, fmt.Errorf("manifest has no agents section")
	default:
		return nil, fmt.Errorf("agents section must be a mapping or a list")
	}

	if err := checkUniqueNames(m.Agents); err != nil {
		return nil, err
	}

	return m, nil
}

// decodeLocation accepts a scalar template or a per-stream mapping.
func decodeLocation(node *yaml.Node) (LocationTemplate, error) {
	var lt LocationTemplate
	switch node.Kind {
	case yaml.ScalarNode:
		if err := node.Decode(&lt.Single); err != nil {
			return lt, err
		}
	case yaml.MappingNode:
		if err := node.Decode(&lt.PerStream); err != nil {
			return lt, err
		}
	default:
		return lt, fmt.Errorf("must be a string or a mapping")
	}
	return lt, nil
}

// parseNestedAgents walks the mapping form in document order: value stream
// name to agent name to counts. The grouping keys double as the manifest's
// stream listing.
func parseNestedAgents(node *yaml.Node, m *Manifest) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		streamNode, groupNode := node.Content[i], node.Content[i+1]
		stream := streamNode.Value
		if groupNode.Kind != yaml.MappingNode {
			return fmt.Errorf("agents.%s: expected a mapping of agent names to counts", stream)
		}

		m.streams = append(m.streams, stream)

		for j := 0; j+1 < len(groupNode.Content); j += 2 {
			nameNode, countsNode := groupNode.Content[j], groupNode.Content[j+1]
			agent := Agent{Name: nameNode.Value, ValueStream: stream}
			if err := decodeCounts(countsNode, &agent); err != nil {
				return fmt.Errorf("agents.%s.%s: %w", stream, agent.Name, err)
			}
			m.Agents = append(m.Agents, agent)
		}
	}
	return nil
}

// rawFlatAgent mirrors one record of the flat list form. Counts stay as raw
// nodes so string-typed numbers can still be coerced.
type rawFlatAgent struct {
	Name        string    `yaml:"name"`
	ValueStream string    `yaml:"value_stream"`
	Prompts     yaml.Node `yaml:"prompts"`
	Definitions yaml.Node `yaml:"definitions"`
	Runners     yaml.Node `yaml:"runners"`
}

// parseFlatAgents decodes the list form. Each record must carry its own
// name and value_stream; violations are reported with the entry index.
func parseFlatAgents(node *yaml.Node, m *Manifest) error {
	for i, entry := range node.Content {
		var rec rawFlatAgent
		if err := entry.Decode(&rec); err != nil {
			return fmt.Errorf("agents[%d]: %w", i, err)
		}
		if strings.TrimSpace(rec.Name) == "" {
			return fmt.Errorf("agents[%d]: missing required field %q", i, "name")
		}
		if strings.TrimSpace(rec.ValueStream) == "" {
			return fmt.Errorf("agents[%d]: missing required field %q", i, "value_stream")
		}

		agent := Agent{Name: rec.Name, ValueStream: rec.ValueStream}
		var err error
		if agent.Prompts, err = coerceCount(&rec.Prompts); err != nil {
			return fmt.Errorf("agents[%d].prompts: %w", i, err)
		}
		if agent.Definitions, err = coerceCount(&rec.Definitions); err != nil {
			return fmt.Errorf("agents[%d].definitions: %w", i, err)
		}
		if agent.Runners, err = coerceCount(&rec.Runners); err != nil {
			return fmt.Errorf("agents[%d].runners: %w", i, err)
		}
		m.Agents = append(m.Agents, agent)
	}
	return nil
}

// decodeCounts reads a counts mapping into the agent. An absent or null
// node means all counts default to zero. The charter count is fixed at one
// and never read from the document.
func decodeCounts(node *yaml.Node, agent *Agent) error {
	if node == nil || node.Kind == 0 || node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping of category counts")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		n, err := coerceCount(valNode)
		if err != nil {
			return fmt.Errorf("%s: %w", keyNode.Value, err)
		}
		switch keyNode.Value {
		case "prompts":
			agent.Prompts = n
		case "definitions":
			agent.Definitions = n
		case "runners":
			agent.Runners = n
		}
	}
	return nil
}

// coerceCount converts a scalar count to a non-negative integer. String
// scalars holding digits are accepted; anything else is a validation error.
func coerceCount(node *yaml.Node) (int, error) {
	if node == nil || node.Kind == 0 || node.Tag == "!!null" {
		return 0, nil
	}
	if node.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("count must be an integer")
	}
	n, err := strconv.Atoi(strings.TrimSpace(node.Value))
	if err != nil {
		return 0, fmt.Errorf("count %q is not an integer", node.Value)
	}
	if n < 0 {
		return 0, fmt.Errorf("count %d is negative", n)
	}
	return n, nil
}

// checkUniqueNames enforces that agent names are unique within their value
// stream. Streams compare case-insensitively.
func checkUniqueNames(agents []Agent) error {
	seen := make(map[string]bool, len(agents))
	for _, a := range agents {
		key := strings.ToLower(a.ValueStream) + "/" + a.Name
		if seen[key] {
			return fmt.Errorf("duplicate agent %q in value stream %q", a.Name, a.ValueStream)
		}
		seen[key] = true
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

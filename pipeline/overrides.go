package pipeline

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// OverridePolicy is the heuristic escape hatch for the grounding
// branch: the validator is overly strict for procedural and rights
// style questions where generic legal knowledge outside the retrieved
// text is legitimately useful.
//
// This is a deliberate trust trade-off, kept as an isolated, tunable
// policy (keyword sets loadable from YAML) so it can be replaced by a
// classifier later without touching the pipeline state machine.
type OverridePolicy struct {
	Procedure []string `yaml:"procedure"`
	Rights    []string `yaml:"rights"`
	Legality  []string `yaml:"legality"`
	Scenario  []string `yaml:"scenario"`
}

// DefaultOverridePolicy returns the compiled-in keyword sets.
func DefaultOverridePolicy() *OverridePolicy {
	return &OverridePolicy{
		Procedure: []string{
			"how do i file", "how to file", "procedure", "process to",
			"where do i", "what documents", "fir", "complaint",
		},
		Rights: []string{
			"my rights", "what rights", "am i entitled", "rights of",
		},
		Legality: []string{
			"is it legal", "is it illegal", "is this legal", "legality",
			"punishment for", "penalty for", "what happens if",
		},
		Scenario: []string{
			"in a game", "in a movie", "hypothetically", "scenario",
			"for a story",
		},
	}
}

// LoadOverridePolicy reads keyword sets from a YAML file. Groups left
// empty in the file keep the defaults.
func LoadOverridePolicy(path string) (*OverridePolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read override policy: %w", err)
	}
	policy := DefaultOverridePolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("failed to parse override policy: %w", err)
	}
	return policy, nil
}

// Matches returns the names of the marker groups that fired for the
// raw query text.
func (p *OverridePolicy) Matches(query string) []string {
	lower := strings.ToLower(query)
	var fired []string
	for _, group := range []struct {
		name     string
		keywords []string
	}{
		{"procedure", p.Procedure},
		{"rights", p.Rights},
		{"legality", p.Legality},
		{"scenario", p.Scenario},
	} {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				fired = append(fired, group.name)
				break
			}
		}
	}
	return fired
}

// Allows reports whether the query may proceed to answer despite a low
// validator verdict.
func (p *OverridePolicy) Allows(query string) bool {
	return len(p.Matches(query)) > 0
}

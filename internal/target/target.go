package target

import (
	"fmt"
	"strings"
)

// Target kinds accepted in loom.type.
const (
	KindAgent        = "agent"
	KindSemanticView = "semantic-view"
)

// Spec defines the expected target YAML schema: an agent or semantic view
// declaring which rules its instruction document is assembled from.
type Spec struct {
	Loom        Meta      `yaml:"loom"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Rules       RuleLists `yaml:"rules"`
}

// Meta captures shared metadata for loom files.
type Meta struct {
	Type    string `yaml:"type"`
	Version int    `yaml:"version"`
}

// RuleLists groups the declared rule ids by the section of the instruction
// document they belong to. Sections flatten in system, orchestration,
// response order; within a section the declared order is preserved.
type RuleLists struct {
	System        []string `yaml:"system,omitempty"`
	Orchestration []string `yaml:"orchestration,omitempty"`
	Response      []string `yaml:"response,omitempty"`
}

// RuleIDs returns the target's declared rule ids flattened in section order.
// The list may contain duplicates; deduplication is the resolver's job.
func (s Spec) RuleIDs() []string {
	ids := make([]string, 0, len(s.Rules.System)+len(s.Rules.Orchestration)+len(s.Rules.Response))
	ids = append(ids, s.Rules.System...)
	ids = append(ids, s.Rules.Orchestration...)
	ids = append(ids, s.Rules.Response...)
	return ids
}

// Normalized returns a trimmed copy of the spec with empty id entries dropped.
func (s Spec) Normalized() Spec {
	clone := Spec{
		Loom: Meta{
			Type:    strings.TrimSpace(s.Loom.Type),
			Version: s.Loom.Version,
		},
		Name:        strings.TrimSpace(s.Name),
		Description: strings.TrimSpace(s.Description),
	}
	clone.Rules.System = normalizeIDs(s.Rules.System)
	clone.Rules.Orchestration = normalizeIDs(s.Rules.Orchestration)
	clone.Rules.Response = normalizeIDs(s.Rules.Response)
	return clone
}

func normalizeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate checks the target spec against core schema expectations. It
// returns every problem found rather than stopping at the first so a report
// can show the full picture at once.
func Validate(spec *Spec) []error {
	var errs []error
	if spec == nil {
		return []error{fmt.Errorf("target spec is nil")}
	}
	normalized := spec.Normalized()
	switch normalized.Loom.Type {
	case KindAgent, KindSemanticView:
	case "":
		errs = append(errs, fmt.Errorf("loom.type is required"))
	default:
		errs = append(errs, fmt.Errorf("loom.type must be %s or %s, got %q", KindAgent, KindSemanticView, normalized.Loom.Type))
	}
	if normalized.Loom.Version != 1 {
		errs = append(errs, fmt.Errorf("loom.version must be 1"))
	}
	if normalized.Name == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	}
	if len(normalized.RuleIDs()) == 0 {
		errs = append(errs, fmt.Errorf("at least one rule id is required"))
	}
	errs = append(errs, validateSection("rules.system", normalized.Rules.System)...)
	errs = append(errs, validateSection("rules.orchestration", normalized.Rules.Orchestration)...)
	errs = append(errs, validateSection("rules.response", normalized.Rules.Response)...)
	return errs
}

// validateSection flags duplicate ids inside a single section. Repeats across
// sections are tolerated; the resolver deduplicates them during assembly.
func validateSection(label string, ids []string) []error {
	var errs []error
	seen := make(map[string]struct{}, len(ids))
	for idx, id := range ids {
		if _, exists := seen[id]; exists {
			errs = append(errs, fmt.Errorf("%s[%d] duplicates %q", label, idx, id))
			continue
		}
		seen[id] = struct{}{}
	}
	return errs
}

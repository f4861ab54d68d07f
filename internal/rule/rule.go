package rule

import (
	"fmt"
	"strings"
)

// Rule describes a single atomic instruction fragment loaded from a rule pack.
//
// The struct mirrors the on-disk schema under .loom/rules/*.yaml and is
// intentionally narrow so the assembler can validate rule metadata before
// wiring it into an instruction document.
type Rule struct {
	ID          string    `json:"id" yaml:"id"`
	Version     string    `json:"version,omitempty" yaml:"version,omitempty"`
	Category    string    `json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	DependsOn   []string  `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Description string    `json:"description" yaml:"description"`
	Examples    []Example `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// Example captures one illustration of how a rule should shape behavior. The
// assembler carries examples through unmodified; it never interprets them.
type Example struct {
	Input    string `json:"input,omitempty" yaml:"input,omitempty"`
	Context  string `json:"context,omitempty" yaml:"context,omitempty"`
	Behavior string `json:"behavior,omitempty" yaml:"behavior,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the rule.
func (r Rule) Normalized() Rule {
	clone := Rule{
		ID:          strings.TrimSpace(r.ID),
		Version:     strings.TrimSpace(r.Version),
		Category:    strings.TrimSpace(r.Category),
		Description: strings.TrimSpace(r.Description),
	}
	if len(r.Tags) > 0 {
		clone.Tags = make([]string, 0, len(r.Tags))
		for _, tag := range r.Tags {
			trimmed := strings.TrimSpace(tag)
			if trimmed == "" {
				continue
			}
			clone.Tags = append(clone.Tags, trimmed)
		}
		if len(clone.Tags) == 0 {
			clone.Tags = nil
		}
	}
	if len(r.DependsOn) > 0 {
		clone.DependsOn = make([]string, 0, len(r.DependsOn))
		for _, dep := range r.DependsOn {
			trimmed := strings.TrimSpace(dep)
			if trimmed == "" {
				continue
			}
			clone.DependsOn = append(clone.DependsOn, trimmed)
		}
		if len(clone.DependsOn) == 0 {
			clone.DependsOn = nil
		}
	}
	if len(r.Examples) > 0 {
		clone.Examples = make([]Example, len(r.Examples))
		for i, example := range r.Examples {
			clone.Examples[i] = example.normalized()
		}
	}
	return clone
}

func (e Example) normalized() Example {
	return Example{
		Input:    strings.TrimSpace(e.Input),
		Context:  strings.TrimSpace(e.Context),
		Behavior: strings.TrimSpace(e.Behavior),
	}
}

// Validate ensures the rule is well-formed. Dependency ids are checked for
// shape only; whether they resolve is the store's concern at load time.
func (r Rule) Validate() error {
	normalized := r.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("rule: id is required")
	}
	if normalized.Description == "" {
		return fmt.Errorf("rule %s: description is required", normalized.ID)
	}
	seen := make(map[string]struct{}, len(normalized.DependsOn))
	for idx, dep := range normalized.DependsOn {
		if dep == normalized.ID {
			return fmt.Errorf("rule %s: depends_on[%d] references itself", normalized.ID, idx)
		}
		if _, exists := seen[dep]; exists {
			return fmt.Errorf("rule %s: depends_on[%d] duplicates %s", normalized.ID, idx, dep)
		}
		seen[dep] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy of the rule.
func (r Rule) Clone() Rule {
	clone := r
	if len(r.Tags) > 0 {
		clone.Tags = make([]string, len(r.Tags))
		copy(clone.Tags, r.Tags)
	}
	if len(r.DependsOn) > 0 {
		clone.DependsOn = make([]string, len(r.DependsOn))
		copy(clone.DependsOn, r.DependsOn)
	}
	if len(r.Examples) > 0 {
		clone.Examples = make([]Example, len(r.Examples))
		copy(clone.Examples, r.Examples)
	}
	return clone
}

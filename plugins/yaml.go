// Package plugins discovers rule packs under .loom/rules and turns them into
// an immutable rule store. Packs are plain YAML files or Go files evaluated
// with yaegi; both feed the same validation path before a rule is accepted.
package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/loom/internal/rule"
)

// RuleFile pairs a parsed rule with its on-disk source.
type RuleFile struct {
	Rule rule.Rule
	Path string
}

// rulePack mirrors the multi-rule file schema. Files holding a single rule
// at the top level are accepted too.
type rulePack struct {
	Rules []rule.Rule `yaml:"rules"`
}

// ParseRulesYAML decodes and validates a rule pack payload. The payload may
// be one rule document or a `rules:` list.
func ParseRulesYAML(data []byte) ([]rule.Rule, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("plugins: rule payload is empty")
	}
	var pack rulePack
	if err := yaml.Unmarshal(data, &pack); err == nil && len(pack.Rules) > 0 {
		return normalizeAll(pack.Rules)
	}
	var single rule.Rule
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("plugins: decode rule pack: %w", err)
	}
	return normalizeAll([]rule.Rule{single})
}

func normalizeAll(rules []rule.Rule) ([]rule.Rule, error) {
	out := make([]rule.Rule, 0, len(rules))
	for idx, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("plugins: rule[%d]: %w", idx, err)
		}
		out = append(out, r.Normalized())
	}
	return out, nil
}

// LoadRuleFile reads a YAML file from disk and returns the parsed rules.
func LoadRuleFile(path string) ([]RuleFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("plugins: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("plugins: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugins: read %s: %w", path, err)
	}
	rules, err := ParseRulesYAML(data)
	if err != nil {
		return nil, fmt.Errorf("plugins: %s: %w", path, err)
	}
	files := make([]RuleFile, 0, len(rules))
	for _, r := range rules {
		files = append(files, RuleFile{Rule: r, Path: filepath.Clean(path)})
	}
	return files, nil
}

// LoadRuleDir scans a directory for *.yaml rule packs and returns the parsed
// rules sorted by source path. Missing directories are treated as "no packs"
// to simplify startup.
func LoadRuleDir(dir string) ([]RuleFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugins: read %s: %w", trimmed, err)
	}
	var files []RuleFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !isYAMLFile(entry.Name()) {
			continue
		}
		parsed, err := LoadRuleFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, parsed...)
	}
	if len(files) == 0 {
		return nil, nil
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

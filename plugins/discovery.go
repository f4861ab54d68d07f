package plugins

import (
	"github.com/kingrea/loom/internal/config"
	"github.com/kingrea/loom/internal/rule"
)

// Discover loads every rule pack (YAML then Go) under the configured rules
// directory. Source paths are kept so duplicate ids can name both offenders.
func Discover(cfg *config.Config) ([]RuleFile, error) {
	if cfg == nil {
		return nil, nil
	}
	return discoverDir(cfg.RulesDir())
}

func discoverDir(dir string) ([]RuleFile, error) {
	yamlRules, err := LoadRuleDir(dir)
	if err != nil {
		return nil, err
	}
	goRules, err := LoadGoRuleDir(dir)
	if err != nil {
		return nil, err
	}
	return append(yamlRules, goRules...), nil
}

// BuildStore discovers all rule packs and assembles them into an immutable
// store snapshot. Two packs declaring the same rule id abort the load with a
// *rule.DuplicateRuleError naming both source files.
func BuildStore(cfg *config.Config) (*rule.Store, error) {
	files, err := Discover(cfg)
	if err != nil {
		return nil, err
	}
	return StoreFromFiles(files)
}

// StoreFromFiles builds a store from already-discovered rule files.
func StoreFromFiles(files []RuleFile) (*rule.Store, error) {
	seen := make(map[string]string, len(files))
	rules := make([]rule.Rule, 0, len(files))
	for _, file := range files {
		if existing, ok := seen[file.Rule.ID]; ok {
			return nil, &rule.DuplicateRuleError{ID: file.Rule.ID, First: existing, Second: file.Path}
		}
		seen[file.Rule.ID] = file.Path
		rules = append(rules, file.Rule)
	}
	return rule.NewStore(rules)
}

package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"
)

const goRuleFuncName = "RuleDefinitions"

// LoadGoRuleDir evaluates every .go file in dir and collects the rules each
// declares via RuleDefinitions(). Go packs exist for rules whose descriptions
// or examples are easier to generate than to hand-write in YAML.
func LoadGoRuleDir(dir string) ([]RuleFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugins: read %s: %w", trimmed, err)
	}
	var files []RuleFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		fileRules, err := loadGoRuleFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, fileRules...)
	}
	if len(files) == 0 {
		return nil, nil
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func loadGoRuleFile(path string) ([]RuleFile, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugins: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("plugins: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	i.Use(stdlib.Symbols)
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("plugins: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(goRuleFuncName)
	if err != nil {
		return nil, fmt.Errorf("plugins: %s must define %s() ([]map[string]any, error): %w", path, goRuleFuncName, err)
	}
	defs, callErr := invokeRuleFunc(fnValue)
	if callErr != nil {
		return nil, fmt.Errorf("plugins: %s: %w", path, callErr)
	}
	files := make([]RuleFile, 0, len(defs))
	for idx, raw := range defs {
		payload, err := yaml.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("plugins: %s rule[%d]: %w", path, idx, err)
		}
		parsed, err := ParseRulesYAML(payload)
		if err != nil {
			return nil, fmt.Errorf("plugins: %s rule[%d]: %w", path, idx, err)
		}
		for _, r := range parsed {
			files = append(files, RuleFile{Rule: r, Path: fmt.Sprintf("%s#%d", path, idx+1)})
		}
	}
	return files, nil
}

func invokeRuleFunc(value reflect.Value) ([]map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", goRuleFuncName)
	}
	fn := value
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goRuleFuncName)
	}
	results := fn.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", goRuleFuncName)
	}
	defsVal := results[0]
	if len(results) == 2 {
		if !results[1].IsNil() {
			if e, ok := results[1].Interface().(error); ok && e != nil {
				return nil, e
			}
			return nil, fmt.Errorf("%s returned non-error second value", goRuleFuncName)
		}
	}
	defs, ok := defsVal.Interface().([]map[string]any)
	if ok {
		return defs, nil
	}
	if defsVal.Kind() == reflect.Slice {
		result := make([]map[string]any, defsVal.Len())
		for i := 0; i < defsVal.Len(); i++ {
			entry := defsVal.Index(i).Interface()
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d] is not map[string]any", goRuleFuncName, i)
			}
			result[i] = m
		}
		return result, nil
	}
	return nil, fmt.Errorf("%s must return a slice of map[string]any", goRuleFuncName)
}

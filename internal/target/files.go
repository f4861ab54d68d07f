package target

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// File pairs a parsed target spec with its on-disk source.
type File struct {
	Spec Spec
	Path string
}

// Report captures validation results for a target file.
type Report struct {
	Path   string
	Kind   string
	Errors []error
}

// IsValid reports whether the validation passed.
func (r *Report) IsValid() bool {
	return r != nil && len(r.Errors) == 0
}

// ValidateFile reads and validates a target YAML file without requiring the
// spec to pass; the report carries every schema problem found.
func ValidateFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("target: read %s: %w", path, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("target: parse %s: %w", path, err)
	}
	return &Report{
		Path:   path,
		Kind:   strings.TrimSpace(spec.Loom.Type),
		Errors: Validate(&spec),
	}, nil
}

// LoadFile reads, validates, and normalizes a single target file. Unlike
// ValidateFile it fails on the first schema problem, since callers about to
// assemble need a well-formed spec, not a report.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("target: read %s: %w", path, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return File{}, fmt.Errorf("target: parse %s: %w", path, err)
	}
	if errs := Validate(&spec); len(errs) > 0 {
		return File{}, fmt.Errorf("target: %s: %w", path, errs[0])
	}
	return File{Spec: spec.Normalized(), Path: filepath.Clean(path)}, nil
}

// LoadDir scans a directory for *.yaml targets and returns them sorted by
// path. A missing directory means no targets rather than an error, matching
// how rule packs are discovered.
func LoadDir(dir string) ([]File, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("target: read %s: %w", trimmed, err)
	}
	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		file, err := LoadFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

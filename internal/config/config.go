// internal/config/config.go
//
// This package handles configuration and the .loom directory structure.
// Every project that uses loom gets a .loom/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// LoomDir is the name of the directory we create in each project
	LoomDir = ".loom"

	defaultMaxParallel = 4
)

const defaultProjectConfigYAML = `# loom project configuration
version: 1

# Directories scanned for rule packs and targets, relative to .loom/.
# Override these if your rules live elsewhere.
paths:
  rules: rules
  targets: targets
  output: out

assembly:
  # How many targets may be assembled concurrently during a batch run.
  max_parallel: 4
`

// PathsConfig declares where rule packs, targets, and rendered documents live
// relative to the .loom directory.
type PathsConfig struct {
	Rules   string `yaml:"rules"`
	Targets string `yaml:"targets"`
	Output  string `yaml:"output"`
}

// AssemblyConfig captures batch assembly preferences.
type AssemblyConfig struct {
	MaxParallel int `yaml:"max_parallel"`
}

// ProjectConfig models .loom/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Paths    PathsConfig    `yaml:"paths"`
	Assembly AssemblyConfig `yaml:"assembly"`
}

// Config holds the runtime configuration for loom.
type Config struct {
	// ProjectDir is the directory where the user ran `loom` from
	ProjectDir string

	// LoomProjectDir is ProjectDir/.loom
	LoomProjectDir string

	Project ProjectConfig
}

// InitLoomDir creates the .loom directory structure in the given project
// directory and seeds a default config file when one is missing.
//
// Structure created:
// .loom/
// ├── rules/    <- Rule packs (*.yaml, *.go)
// ├── targets/  <- Agent and semantic-view definitions (*.yaml)
// ├── out/      <- Rendered instruction documents
// └── logs/     <- Assembly activity log
func InitLoomDir(projectDir string) error {
	loomDir := filepath.Join(projectDir, LoomDir)

	dirs := []string{
		filepath.Join(loomDir, "rules"),
		filepath.Join(loomDir, "targets"),
		filepath.Join(loomDir, "out"),
		filepath.Join(loomDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(loomDir, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project settings.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:     projectDir,
		LoomProjectDir: filepath.Join(projectDir, LoomDir),
		Project:        defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RulesDir returns the directory scanned for rule packs.
func (c *Config) RulesDir() string {
	return c.resolvePath(c.Project.Paths.Rules, "rules")
}

// TargetsDir returns the directory scanned for target definitions.
func (c *Config) TargetsDir() string {
	return c.resolvePath(c.Project.Paths.Targets, "targets")
}

// OutputDir returns the directory rendered documents are written to.
func (c *Config) OutputDir() string {
	return c.resolvePath(c.Project.Paths.Output, "out")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.LoomProjectDir, "logs")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.LoomProjectDir, "config.yaml")
}

// MaxParallel returns the configured batch concurrency limit.
func (c *Config) MaxParallel() int {
	if c.Project.Assembly.MaxParallel <= 0 {
		return defaultMaxParallel
	}
	return c.Project.Assembly.MaxParallel
}

// resolvePath anchors a configured path at .loom unless it is absolute.
func (c *Config) resolvePath(configured, fallback string) string {
	trimmed := strings.TrimSpace(configured)
	if trimmed == "" {
		trimmed = fallback
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(c.LoomProjectDir, trimmed)
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Project = mergeProjectConfig(c.Project, parsed)
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Paths: PathsConfig{
			Rules:   "rules",
			Targets: "targets",
			Output:  "out",
		},
		Assembly: AssemblyConfig{MaxParallel: defaultMaxParallel},
	}
}

// mergeProjectConfig overlays parsed values on the defaults so a sparse
// config file keeps sensible settings for everything it omits.
func mergeProjectConfig(base, parsed ProjectConfig) ProjectConfig {
	if parsed.Version != 0 {
		base.Version = parsed.Version
	}
	if strings.TrimSpace(parsed.Paths.Rules) != "" {
		base.Paths.Rules = parsed.Paths.Rules
	}
	if strings.TrimSpace(parsed.Paths.Targets) != "" {
		base.Paths.Targets = parsed.Paths.Targets
	}
	if strings.TrimSpace(parsed.Paths.Output) != "" {
		base.Paths.Output = parsed.Paths.Output
	}
	if parsed.Assembly.MaxParallel > 0 {
		base.Assembly.MaxParallel = parsed.Assembly.MaxParallel
	}
	return base
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644); err != nil {
		return fmt.Errorf("config: write default %s: %w", path, err)
	}
	return nil
}

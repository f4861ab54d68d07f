package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/loom/internal/audit"
	"github.com/kingrea/loom/internal/config"
	"github.com/kingrea/loom/internal/target"
	"github.com/kingrea/loom/plugins"
)

// handleAuditCommand prints which rules each target reaches and which rules
// no target references at all.
func handleAuditCommand() bool {
	if len(os.Args) < 2 || os.Args[1] != "audit" {
		return false
	}
	project := ""
	if len(os.Args) > 3 {
		fmt.Fprintln(os.Stderr, "Usage: loom audit [project-dir]")
		os.Exit(2)
	}
	if len(os.Args) == 3 {
		project = os.Args[2]
	}
	if project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
			os.Exit(1)
		}
		project = cwd
	}
	absolute, err := filepath.Abs(project)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving project dir: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.NewConfig(absolute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	store, err := plugins.BuildStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rule packs: %v\n", err)
		os.Exit(1)
	}
	targets, err := target.LoadDir(cfg.TargetsDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading targets: %v\n", err)
		os.Exit(1)
	}
	report := audit.Build(store, targets)
	broken := 0
	for _, usage := range report.Targets {
		if usage.Err != nil {
			broken++
			fmt.Printf("%s: ERROR %v\n", usage.Target, usage.Err)
			continue
		}
		fmt.Printf("%s: %s\n", usage.Target, strings.Join(usage.Resolved, ", "))
	}
	if len(report.Orphans) > 0 {
		fmt.Printf("orphans: %s\n", strings.Join(report.Orphans, ", "))
	} else {
		fmt.Println("orphans: none")
	}
	if broken > 0 {
		os.Exit(1)
	}
	os.Exit(0)
	return true
}

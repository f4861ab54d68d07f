// cmd/loom/main.go
//
// This is the entry point for the loom CLI.
//
// Flow:
// 1. Dispatch one-shot subcommands (validate-target, audit) if present
// 2. Otherwise initialize the .loom folder and launch the TUI

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kingrea/loom/internal/config"
	"github.com/kingrea/loom/internal/tui"
)

func main() {
	if handleValidateTargetCommand() {
		return
	}
	if handleAuditCommand() {
		return
	}

	// Get the current working directory - this is the "project" we're working in
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitLoomDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .loom directory: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(
		tui.NewApp(cwd),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

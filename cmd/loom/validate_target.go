package main

import (
	"fmt"
	"os"

	"github.com/kingrea/loom/internal/target"
)

func handleValidateTargetCommand() bool {
	if len(os.Args) < 2 || os.Args[1] != "validate-target" {
		return false
	}
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: loom validate-target /path/to/target.yaml")
		os.Exit(2)
	}
	report, err := target.ValidateFile(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	if report.IsValid() {
		fmt.Printf("OK: %s (%s)\n", report.Path, report.Kind)
		os.Exit(0)
	}
	fmt.Printf("Invalid: %s (%s)\n", report.Path, report.Kind)
	for _, validationErr := range report.Errors {
		fmt.Printf("- %v\n", validationErr)
	}
	os.Exit(1)
	return true
}

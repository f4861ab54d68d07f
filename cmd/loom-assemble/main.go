package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/loom/internal/assembler"
	"github.com/kingrea/loom/internal/batch"
	"github.com/kingrea/loom/internal/config"
	"github.com/kingrea/loom/internal/logging"
	"github.com/kingrea/loom/internal/target"
	"github.com/kingrea/loom/plugins"
)

func main() {
	targetName := flag.String("target", "", "target name to assemble (defaults to every target)")
	projectDir := flag.String("project", "", "path to the project directory (defaults to cwd)")
	format := flag.String("format", "markdown", "output format: markdown or yaml")
	outDir := flag.String("out", "", "output directory override (defaults to .loom/out)")
	generationID := flag.String("generation-id", "", "stamp documents with this generation id instead of a fresh uuid")
	dryRun := flag.Bool("dry-run", false, "resolve and report without writing documents")
	flag.Parse()

	render, extension, err := renderer(*format)
	if err != nil {
		die("%v", err)
	}

	project := *projectDir
	if project == "" {
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitLoomDir(absoluteProject); err != nil {
		die("init .loom: %v", err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}
	logger, err := logging.New(absoluteProject)
	if err != nil {
		die("open log: %v", err)
	}
	defer logger.Close()

	store, err := plugins.BuildStore(cfg)
	if err != nil {
		logger.Logf(logging.LevelError, "load rule packs: %v", err)
		die("load rule packs: %v", err)
	}
	targets, err := target.LoadDir(cfg.TargetsDir())
	if err != nil {
		logger.Logf(logging.LevelError, "load targets: %v", err)
		die("load targets: %v", err)
	}
	targets = selectTargets(targets, *targetName)
	if len(targets) == 0 {
		if strings.TrimSpace(*targetName) != "" {
			die("no target named %q under %s", *targetName, cfg.TargetsDir())
		}
		die("no targets found under %s", cfg.TargetsDir())
	}

	results := batch.Run(batch.Request{
		Targets:     targets,
		MaxParallel: cfg.MaxParallel(),
		Options:     assembler.Options{GenerationID: *generationID},
	}, store)

	output := strings.TrimSpace(*outDir)
	if output == "" {
		output = cfg.OutputDir()
	}
	if !*dryRun {
		if err := os.MkdirAll(output, 0755); err != nil {
			die("create output dir: %v", err)
		}
	}
	failures := 0
	for _, res := range results {
		if res.Err != nil {
			failures++
			logger.Logf(logging.LevelError, "assemble %s: %v", res.Target, res.Err)
			fmt.Fprintf(os.Stderr, "assemble %s: %v\n", res.Target, res.Err)
			continue
		}
		logger.Printf("assembled %s: %d rules (generation %s)", res.Target, len(res.Document.Rules), res.Document.GenerationID)
		if *dryRun {
			fmt.Printf("%s: %s\n", res.Target, strings.Join(res.Document.RuleIDs(), ", "))
			continue
		}
		data, err := render(res.Document)
		if err != nil {
			failures++
			logger.Logf(logging.LevelError, "render %s: %v", res.Target, err)
			fmt.Fprintf(os.Stderr, "render %s: %v\n", res.Target, err)
			continue
		}
		path := filepath.Join(output, res.Target+extension)
		if err := os.WriteFile(path, data, 0644); err != nil {
			failures++
			logger.Logf(logging.LevelError, "write %s: %v", path, err)
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			continue
		}
		fmt.Printf("wrote %s\n", path)
	}
	if failures > 0 {
		die("%d of %d targets failed", failures, len(results))
	}
}

func renderer(format string) (func(assembler.Document) ([]byte, error), string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "markdown", "md", "":
		return assembler.RenderMarkdown, ".md", nil
	case "yaml", "yml":
		return assembler.RenderYAML, ".yaml", nil
	default:
		return nil, "", fmt.Errorf("unknown format %q (want markdown or yaml)", format)
	}
}

func selectTargets(targets []target.File, name string) []target.File {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return targets
	}
	for _, file := range targets {
		if file.Spec.Name == trimmed {
			return []target.File{file}
		}
	}
	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

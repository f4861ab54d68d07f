// Package batch assembles instruction documents for many targets against one
// store snapshot. Targets are mutually independent, so they run on a bounded
// worker pool; a failure on one target is recorded in its result and never
// aborts or degrades the others.
package batch

import (
	"sync"

	"github.com/kingrea/loom/internal/assembler"
	"github.com/kingrea/loom/internal/rule"
	"github.com/kingrea/loom/internal/target"
)

// Result pairs one target with its assembled document or its failure.
type Result struct {
	Target   string
	Path     string
	Document assembler.Document
	Err      error
}

// Request configures a batch run.
type Request struct {
	Targets []target.File
	// MaxParallel caps concurrent assemblies. Values <= 0 run everything
	// at once.
	MaxParallel int
	// Options applies to every document; a shared GenerationID stamps the
	// whole batch as one generation.
	Options assembler.Options
}

// Run assembles every target against the given snapshot and returns results
// in input order. The store is read-only for the duration of the run, so no
// coordination beyond the worker limit is needed.
func Run(req Request, store *rule.Store) []Result {
	results := make([]Result, len(req.Targets))
	if len(req.Targets) == 0 {
		return results
	}
	limit := req.MaxParallel
	if limit <= 0 || limit > len(req.Targets) {
		limit = len(req.Targets)
	}
	slots := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, file := range req.Targets {
		wg.Add(1)
		go func(idx int, file target.File) {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()
			doc, err := assembler.Assemble(file.Spec.Name, file.Spec.RuleIDs(), store, req.Options)
			results[idx] = Result{
				Target:   file.Spec.Name,
				Path:     file.Path,
				Document: doc,
				Err:      err,
			}
		}(i, file)
	}
	wg.Wait()
	return results
}

// Failed returns the results whose assembly errored, in input order.
func Failed(results []Result) []Result {
	var failed []Result
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

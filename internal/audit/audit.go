// Package audit reports on rule usage across targets: which rules each
// target pulls in, and which rules in the store no target references at all.
// Orphans are usually leftovers from a refactor and a sign a pack needs
// cleanup before the next deployment.
package audit

import (
	"sort"

	"github.com/kingrea/loom/internal/resolver"
	"github.com/kingrea/loom/internal/rule"
	"github.com/kingrea/loom/internal/target"
)

// TargetUsage records the rules one target pulls in, directly or through
// dependency resolution. Err is set when the target's request does not
// resolve; its Resolved list is empty in that case.
type TargetUsage struct {
	Target    string
	Requested []string
	Resolved  []string
	Err       error
}

// Report summarizes rule usage for a store snapshot and a set of targets.
type Report struct {
	Targets []TargetUsage
	// Orphans lists store rules no target reaches, sorted lexically.
	Orphans []string
}

// Build walks every target's declared rule ids through the resolver and
// diffs the union of reached rules against the store. Targets that fail to
// resolve keep their error in the report; their declared ids still count as
// used so one broken target does not flag shared rules as orphans.
func Build(store *rule.Store, targets []target.File) Report {
	report := Report{Targets: make([]TargetUsage, 0, len(targets))}
	used := make(map[string]struct{})
	for _, file := range targets {
		usage := TargetUsage{
			Target:    file.Spec.Name,
			Requested: file.Spec.RuleIDs(),
		}
		resolved, err := resolver.Resolve(usage.Requested, store)
		if err != nil {
			usage.Err = err
			for _, id := range usage.Requested {
				if store.Has(id) {
					used[id] = struct{}{}
				}
			}
		} else {
			usage.Resolved = resolved
			for _, id := range resolved {
				used[id] = struct{}{}
			}
		}
		report.Targets = append(report.Targets, usage)
	}
	for _, id := range store.AllIDs() {
		if _, ok := used[id]; !ok {
			report.Orphans = append(report.Orphans, id)
		}
	}
	sort.Strings(report.Orphans)
	return report
}

package audit

import (
	"reflect"
	"testing"

	"github.com/kingrea/loom/internal/rule"
	"github.com/kingrea/loom/internal/target"
)

func buildStore(t *testing.T, rules ...rule.Rule) *rule.Store {
	t.Helper()
	store, err := rule.NewStore(rules)
	if err != nil {
		t.Fatalf("build store: %v", err)
	}
	return store
}

func agentFile(name string, system ...string) target.File {
	return target.File{
		Spec: target.Spec{
			Loom:  target.Meta{Type: target.KindAgent, Version: 1},
			Name:  name,
			Rules: target.RuleLists{System: system},
		},
		Path: name + ".yaml",
	}
}

func TestBuildReportsOrphans(t *testing.T) {
	store := buildStore(t,
		rule.Rule{ID: "used_direct", Description: "x"},
		rule.Rule{ID: "used_via_dep", Description: "x"},
		rule.Rule{ID: "reaches_dep", Description: "x", DependsOn: []string{"used_via_dep"}},
		rule.Rule{ID: "never_used", Description: "x"},
	)
	report := Build(store, []target.File{
		agentFile("one", "used_direct"),
		agentFile("two", "reaches_dep"),
	})
	if !reflect.DeepEqual(report.Orphans, []string{"never_used"}) {
		t.Fatalf("expected [never_used], got %v", report.Orphans)
	}
	if len(report.Targets) != 2 {
		t.Fatalf("expected 2 target entries, got %d", len(report.Targets))
	}
	wantResolved := []string{"used_via_dep", "reaches_dep"}
	if !reflect.DeepEqual(report.Targets[1].Resolved, wantResolved) {
		t.Fatalf("expected resolved %v, got %v", wantResolved, report.Targets[1].Resolved)
	}
}

func TestBuildKeepsBrokenTargetError(t *testing.T) {
	store := buildStore(t,
		rule.Rule{ID: "real", Description: "x"},
	)
	report := Build(store, []target.File{
		agentFile("broken", "real", "ghost"),
	})
	if len(report.Targets) != 1 || report.Targets[0].Err == nil {
		t.Fatalf("expected broken target to keep its error: %+v", report.Targets)
	}
	// The resolvable id the broken target declared still counts as used.
	if len(report.Orphans) != 0 {
		t.Fatalf("declared ids of broken targets should not be orphans, got %v", report.Orphans)
	}
}

func TestBuildEmptyTargetsFlagsEverything(t *testing.T) {
	store := buildStore(t,
		rule.Rule{ID: "b", Description: "x"},
		rule.Rule{ID: "a", Description: "x"},
	)
	report := Build(store, nil)
	if !reflect.DeepEqual(report.Orphans, []string{"a", "b"}) {
		t.Fatalf("expected all rules orphaned sorted, got %v", report.Orphans)
	}
}

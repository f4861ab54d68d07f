package resolver

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kingrea/loom/internal/rule"
)

func buildStore(t *testing.T, rules ...rule.Rule) *rule.Store {
	t.Helper()
	store, err := rule.NewStore(rules)
	if err != nil {
		t.Fatalf("build store: %v", err)
	}
	return store
}

func namedRule(id string, deps ...string) rule.Rule {
	return rule.Rule{ID: id, Description: "instructions for " + id, DependsOn: deps}
}

func TestResolveEmitsDependencyBeforeDependent(t *testing.T) {
	store := buildStore(t,
		namedRule("default_period"),
		namedRule("fiscal_year_handling", "default_period"),
	)
	order, err := Resolve([]string{"fiscal_year_handling"}, store)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"default_period", "fiscal_year_handling"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestResolveSharedDependencyEmittedOnce(t *testing.T) {
	store := buildStore(t,
		namedRule("A"),
		namedRule("B", "A"),
		namedRule("C", "A"),
	)
	order, err := Resolve([]string{"B", "C"}, store)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	store := buildStore(t,
		namedRule("X", "Y"),
		namedRule("Y", "X"),
	)
	_, err := Resolve([]string{"X"}, store)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	var cycleErr *rule.CircularDependencyError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CircularDependencyError, got %T: %v", err, err)
	}
	want := []string{"X", "Y", "X"}
	if !reflect.DeepEqual(cycleErr.Cycle, want) {
		t.Fatalf("expected cycle %v, got %v", want, cycleErr.Cycle)
	}
}

func TestResolveUnknownRequestedID(t *testing.T) {
	store := buildStore(t, namedRule("real"))
	_, err := Resolve([]string{"ghost"}, store)
	if err == nil {
		t.Fatalf("expected unknown id error")
	}
	var unknownErr *rule.UnknownRuleError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownRuleError, got %T: %v", err, err)
	}
	if unknownErr.ID != "ghost" {
		t.Fatalf("expected offending id ghost, got %s", unknownErr.ID)
	}
	if len(unknownErr.Chain) != 0 {
		t.Fatalf("top-level request should have no chain, got %v", unknownErr.Chain)
	}
}

func TestResolveUnknownDependencyCarriesChain(t *testing.T) {
	store := buildStore(t,
		namedRule("outer", "inner"),
		namedRule("inner", "missing"),
	)
	_, err := Resolve([]string{"outer"}, store)
	var unknownErr *rule.UnknownRuleError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownRuleError, got %T: %v", err, err)
	}
	if unknownErr.ID != "missing" {
		t.Fatalf("expected offending id missing, got %s", unknownErr.ID)
	}
	wantChain := []string{"outer", "inner"}
	if !reflect.DeepEqual(unknownErr.Chain, wantChain) {
		t.Fatalf("expected chain %v, got %v", wantChain, unknownErr.Chain)
	}
}

func TestResolveDeduplicatesRepeatedRequest(t *testing.T) {
	store := buildStore(t, namedRule("P"))
	order, err := Resolve([]string{"P", "P"}, store)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(order) != 1 || order[0] != "P" {
		t.Fatalf("expected single emission of P, got %v", order)
	}
}

func TestResolveKeepsRequestOrderForIndependentRules(t *testing.T) {
	store := buildStore(t,
		namedRule("response_format"),
		namedRule("pii_filtering"),
		namedRule("default_period"),
		namedRule("aligned_period_comparison", "default_period"),
	)
	order, err := Resolve([]string{"aligned_period_comparison", "pii_filtering", "response_format"}, store)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"default_period", "aligned_period_comparison", "pii_filtering", "response_format"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	store := buildStore(t,
		namedRule("base"),
		namedRule("left", "base"),
		namedRule("right", "base", "left"),
		namedRule("top", "right", "left"),
	)
	request := []string{"top", "left"}
	first, err := Resolve(request, store)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Resolve(request, store)
		if err != nil {
			t.Fatalf("resolve run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("resolution not deterministic: %v vs %v", first, again)
		}
	}
}

func TestResolveDependenciesPrecedeDependents(t *testing.T) {
	store := buildStore(t,
		namedRule("a"),
		namedRule("b", "a"),
		namedRule("c", "a", "b"),
		namedRule("d", "c"),
		namedRule("e", "b", "d"),
	)
	order, err := Resolve([]string{"e", "c"}, store)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	position := make(map[string]int, len(order))
	for idx, id := range order {
		if _, seen := position[id]; seen {
			t.Fatalf("duplicate emission of %s in %v", id, order)
		}
		position[id] = idx
	}
	for _, id := range order {
		r, err := store.Get(id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		for _, dep := range r.DependsOn {
			if position[dep] >= position[id] {
				t.Fatalf("dependency %s emitted at %d, after dependent %s at %d", dep, position[dep], id, position[id])
			}
		}
	}
}

func TestResolveSelfCycle(t *testing.T) {
	// A self-referencing rule is rejected at validation, so build the store
	// without it and splice the edge through a pair instead.
	store := buildStore(t,
		namedRule("loop_a", "loop_b"),
		namedRule("loop_b", "loop_a"),
	)
	_, err := Resolve([]string{"loop_b"}, store)
	var cycleErr *rule.CircularDependencyError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CircularDependencyError, got %T: %v", err, err)
	}
	want := []string{"loop_b", "loop_a", "loop_b"}
	if !reflect.DeepEqual(cycleErr.Cycle, want) {
		t.Fatalf("expected cycle %v, got %v", want, cycleErr.Cycle)
	}
}

package resolver

import (
	"github.com/kingrea/loom/internal/rule"
)

type visitState int

const (
	stateUnvisited visitState = iota
	stateVisiting
	stateEmitted
)

// Resolve computes the emission order for the requested rule ids. Each rule's
// dependencies are visited in declared order before the rule itself, so every
// entry in the result appears strictly after everything it depends on.
// Requests may repeat ids and may overlap transitively; each rule is emitted
// exactly once, at the position the first traversal path reaches it. The
// result is deterministic for a fixed request list and store snapshot.
//
// An id that cannot be resolved fails with a *rule.UnknownRuleError carrying
// the dependency chain that reached it. A depends_on chain that returns to a
// rule already on the active path fails with a *rule.CircularDependencyError
// carrying the full cycle. Both are fatal; no partial order is returned.
func Resolve(requested []string, store *rule.Store) ([]string, error) {
	state := make(map[string]visitState, len(requested))
	order := make([]string, 0, len(requested))
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case stateEmitted:
			return nil
		case stateVisiting:
			return &rule.CircularDependencyError{Cycle: cycleFrom(path, id)}
		}
		r, err := store.Get(id)
		if err != nil {
			unknown := &rule.UnknownRuleError{ID: id}
			if len(path) > 0 {
				unknown.Chain = append([]string(nil), path...)
			}
			return unknown
		}
		state[id] = stateVisiting
		path = append(path, id)
		for _, dep := range r.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[id] = stateEmitted
		order = append(order, id)
		return nil
	}

	for _, id := range requested {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// cycleFrom slices the active path from the first occurrence of id and closes
// the loop, producing e.g. [A B C A] for a path [.. A B C] revisiting A.
func cycleFrom(path []string, id string) []string {
	start := 0
	for i, node := range path {
		if node == id {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(path)-start+1)
	cycle = append(cycle, path[start:]...)
	cycle = append(cycle, id)
	return cycle
}

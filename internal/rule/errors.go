package rule

import (
	"fmt"
	"strings"
)

// DuplicateRuleError reports two loaded rules sharing an id. It aborts the
// load; a store is never built from a rule set with colliding ids.
type DuplicateRuleError struct {
	ID string
	// First and Second name the source paths of the colliding definitions
	// when the loader knows them. Either may be empty for in-memory loads.
	First  string
	Second string
}

func (e *DuplicateRuleError) Error() string {
	if e.First != "" && e.Second != "" {
		return fmt.Sprintf("rule: duplicate id %s (%s and %s)", e.ID, e.First, e.Second)
	}
	return fmt.Sprintf("rule: duplicate id %s", e.ID)
}

// UnknownRuleError reports a requested id or depends_on entry that does not
// exist in the store. Chain holds the dependency path that reached the id,
// oldest first; it is empty when the id came straight from the request.
type UnknownRuleError struct {
	ID    string
	Chain []string
}

func (e *UnknownRuleError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("rule: unknown id %s", e.ID)
	}
	return fmt.Sprintf("rule: unknown id %s (reached via %s)", e.ID, strings.Join(e.Chain, " -> "))
}

// CircularDependencyError reports a depends_on chain that returns to its
// starting rule. Cycle holds the full path including the repeated rule, e.g.
// [A B C A].
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("rule: circular dependency %s", strings.Join(e.Cycle, " -> "))
}

package assembler

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kingrea/loom/internal/resolver"
	"github.com/kingrea/loom/internal/rule"
)

// Document is the assembled, ordered instruction set for one target. Rules
// appear in emission order: every dependency strictly before its dependents,
// no id twice. Requested preserves the target's declared list verbatim so
// callers can diff what was asked for against what resolution injected.
type Document struct {
	Target       string      `yaml:"target"`
	GenerationID string      `yaml:"generation_id"`
	GeneratedAt  time.Time   `yaml:"generated_at"`
	Requested    []string    `yaml:"requested"`
	Rules        []rule.Rule `yaml:"rules"`
}

// RuleIDs returns the emitted rule ids in document order.
func (d Document) RuleIDs() []string {
	ids := make([]string, 0, len(d.Rules))
	for _, r := range d.Rules {
		ids = append(ids, r.ID)
	}
	return ids
}

// Injected returns the ids resolution pulled in that the target never listed.
func (d Document) Injected() []string {
	requested := make(map[string]struct{}, len(d.Requested))
	for _, id := range d.Requested {
		requested[id] = struct{}{}
	}
	var injected []string
	for _, r := range d.Rules {
		if _, ok := requested[r.ID]; !ok {
			injected = append(injected, r.ID)
		}
	}
	return injected
}

// Options tweaks assembly metadata. The zero value is ready to use.
type Options struct {
	// GenerationID overrides the generated uuid, letting batch runs stamp
	// every document with one shared generation.
	GenerationID string
	// Now overrides the timestamp source for deterministic output in tests.
	Now func() time.Time
}

// Assemble resolves the requested ids against the store snapshot and maps the
// resulting order back to full rule records. It is a pure function of its
// inputs; persisting or deploying the document is the caller's concern.
// Resolution errors propagate untouched, so callers can match
// *rule.UnknownRuleError and *rule.CircularDependencyError with errors.As.
func Assemble(target string, requested []string, store *rule.Store, opts Options) (Document, error) {
	name := strings.TrimSpace(target)
	if name == "" {
		return Document{}, fmt.Errorf("assembler: target name is required")
	}
	if store == nil {
		return Document{}, fmt.Errorf("assembler: rule store is required for %s", name)
	}
	order, err := resolver.Resolve(requested, store)
	if err != nil {
		return Document{}, err
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	generation := strings.TrimSpace(opts.GenerationID)
	if generation == "" {
		generation = uuid.NewString()
	}
	doc := Document{
		Target:       name,
		GenerationID: generation,
		GeneratedAt:  now().UTC(),
		Requested:    append([]string(nil), requested...),
		Rules:        make([]rule.Rule, 0, len(order)),
	}
	for _, id := range order {
		r, err := store.Get(id)
		if err != nil {
			return Document{}, err
		}
		doc.Rules = append(doc.Rules, r.Clone())
	}
	return doc, nil
}

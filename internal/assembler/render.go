package assembler

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// loomEnvelope is the frontmatter block stamped onto rendered documents so
// downstream tooling can identify the target, generation, and request without
// parsing the body.
type loomEnvelope struct {
	Loom envelopeMetadata `yaml:"loom"`
}

type envelopeMetadata struct {
	Target     string   `yaml:"target"`
	Generation string   `yaml:"generation"`
	Created    string   `yaml:"created"`
	Requested  []string `yaml:"requested,omitempty"`
	Emitted    []string `yaml:"emitted,omitempty"`
}

// RenderMarkdown produces the deployable instruction document: a YAML
// frontmatter envelope followed by one section per rule in emission order.
func RenderMarkdown(doc Document) ([]byte, error) {
	envelope := loomEnvelope{
		Loom: envelopeMetadata{
			Target:     doc.Target,
			Generation: doc.GenerationID,
			Created:    doc.GeneratedAt.Format(time.RFC3339),
			Requested:  doc.Requested,
			Emitted:    doc.RuleIDs(),
		},
	}
	meta, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("assembler: encode frontmatter for %s: %w", doc.Target, err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(meta, "\n"))
	buf.WriteString("\n---\n")
	for _, r := range doc.Rules {
		buf.WriteString("\n## ")
		buf.WriteString(r.ID)
		if r.Version != "" {
			fmt.Fprintf(&buf, " (%s)", r.Version)
		}
		buf.WriteString("\n\n")
		buf.WriteString(strings.TrimRight(r.Description, "\n"))
		buf.WriteString("\n")
		for _, example := range r.Examples {
			buf.WriteString("\n")
			if example.Input != "" {
				fmt.Fprintf(&buf, "- Input: %s\n", example.Input)
			}
			if example.Context != "" {
				fmt.Fprintf(&buf, "- Context: %s\n", example.Context)
			}
			if example.Behavior != "" {
				fmt.Fprintf(&buf, "- Behavior: %s\n", example.Behavior)
			}
		}
	}
	return buf.Bytes(), nil
}

// RenderYAML serializes the full document, rule records included, for
// downstream tooling that wants structure rather than prose.
func RenderYAML(doc Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("assembler: encode document for %s: %w", doc.Target, err)
	}
	return data, nil
}

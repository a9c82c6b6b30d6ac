package aientity

import (
	"fmt"
	"strings"
)

// PromptBuilder turns a descriptor into the system instruction sent ahead of
// the caller's text.
type PromptBuilder interface {
	Build(d *SchemaDescriptor) (string, error)
}

// fieldSeparator joins the per-field fragments of an instruction.
const fieldSeparator = ", "

// DefaultPromptBuilder produces the fixed instruction format. It never fails
// for a descriptor built by NewSchemaDescriptor.
type DefaultPromptBuilder struct{}

func (DefaultPromptBuilder) Build(d *SchemaDescriptor) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are a JSON generator for the ")
	sb.WriteString(d.TypeName())
	sb.WriteString(" class. Generate valid JSON for the following fields: ")
	sb.WriteString(strings.Join(fieldFragments(d), fieldSeparator))
	return sb.String(), nil
}

// fieldFragments renders "<name> (<type>): <description-or-name>" per field.
func fieldFragments(d *SchemaDescriptor) []string {
	out := make([]string, 0, len(d.fields))
	for _, f := range d.fields {
		desc := f.Description
		if desc == "" {
			desc = f.Name
		}
		out = append(out, fmt.Sprintf("%s (%s): %s", f.Name, f.Type, desc))
	}
	return out
}

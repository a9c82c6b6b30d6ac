package aientity

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/tyler-sommer/stick"
)

// StickPromptBuilder renders the instruction from a Twig template.
//
// Templates see:
//
//	type        record type name
//	fields      list of {name, type, description} in declared order
//	field_list  the default "<name> (<type>): <description>" fragments joined by ", "
//
// plus any variables added with WithVar.
type StickPromptBuilder struct {
	env      *stick.Env
	template string
	vars     map[string]any
}

// StickOption configures a StickPromptBuilder.
type StickOption func(*StickPromptBuilder) error

// WithTemplate sets the template source.
func WithTemplate(tpl string) StickOption {
	return func(p *StickPromptBuilder) error {
		p.template = tpl
		return nil
	}
}

// WithTemplateFS loads the template from path in fsys.
func WithTemplateFS(fsys fs.FS, path string) StickOption {
	return func(p *StickPromptBuilder) error {
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		p.template = string(content)
		return nil
	}
}

// WithVar adds a variable that will be available in the template.
func WithVar(key string, value any) StickOption {
	return func(p *StickPromptBuilder) error {
		p.vars[key] = value
		return nil
	}
}

// NewStickPromptBuilder builds a template-driven PromptBuilder.
func NewStickPromptBuilder(opts ...StickOption) (*StickPromptBuilder, error) {
	p := &StickPromptBuilder{
		env:  stick.New(nil),
		vars: make(map[string]any),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(p.template) == "" {
		return nil, fmt.Errorf("stick prompt builder: template is empty")
	}
	return p, nil
}

func (p *StickPromptBuilder) Build(d *SchemaDescriptor) (string, error) {
	fields := make([]map[string]string, 0, len(d.fields))
	for _, f := range d.fields {
		fields = append(fields, map[string]string{
			"name":        f.Name,
			"type":        string(f.Type),
			"description": f.Description,
		})
	}

	ctx := make(map[string]stick.Value, len(p.vars)+3)
	for k, v := range p.vars {
		ctx[k] = v
	}
	ctx["type"] = d.TypeName()
	ctx["fields"] = fields
	ctx["field_list"] = strings.Join(fieldFragments(d), fieldSeparator)

	var out strings.Builder
	if err := p.env.Execute(p.template, &out, ctx); err != nil {
		return "", fmt.Errorf("execute prompt template for %s: %w", d.TypeName(), err)
	}
	return out.String(), nil
}

package aientity

import (
	"context"
	"encoding/json"
	"strings"
)

// ExecutionStats describes the call a Create operation would make, computed
// without contacting the model.
type ExecutionStats struct {
	TypeName     string          `json:"typeName"`
	Model        string          `json:"model"`
	Endpoint     string          `json:"endpoint"`
	Fields       []string        `json:"fields"`
	WrapperKeys  []string        `json:"wrapperKeys"`
	Instruction  string          `json:"instruction"`
	Payload      json.RawMessage `json:"payload"`      // exact request body
	InputTokens  int             `json:"inputTokens"`  // estimated
	OutputTokens int             `json:"outputTokens"` // estimated, per record
}

// PlanNodeType defines the type of operation a node represents.
type PlanNodeType string

const (
	ExtractionType  PlanNodeType = "Extraction"
	PromptBuildType PlanNodeType = "PromptBuild"
	ModelCallType   PlanNodeType = "ModelCall"
	NormalizeType   PlanNodeType = "Normalize"
	DeserializeType PlanNodeType = "Deserialize"
)

// PlanNode is one step of an extraction plan.
type PlanNode struct {
	Type         PlanNodeType `json:"type"`
	Label        string       `json:"label,omitempty"`
	Model        string       `json:"model,omitempty"`
	Fields       []string     `json:"fields,omitempty"`
	InputTokens  int          `json:"inputTokens,omitempty"`
	OutputTokens int          `json:"outputTokens,omitempty"`
	Children     []*PlanNode  `json:"children,omitempty"`
}

// FormatType represents different output formats for the execution plan.
type FormatType string

const (
	FormatText FormatType = "text"
	FormatJSON FormatType = "json"
)

// DryRun builds the request text would produce without sending it.
func (f *Factory[T]) DryRun(ctx context.Context, text string) (*ExecutionStats, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	req, err := NewRequest(f.desc, f.prompts, text)
	if err != nil {
		return nil, err
	}
	payload, err := chatPayload(req, f.temperature)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(f.desc.fields))
	for _, fs := range f.desc.fields {
		names = append(names, fs.Name)
	}
	stats := &ExecutionStats{
		TypeName:     f.desc.TypeName(),
		Model:        req.Model,
		Endpoint:     req.Endpoint,
		Fields:       names,
		WrapperKeys:  f.desc.WrapperKeys(),
		Instruction:  req.Instruction,
		Payload:      payload,
		InputTokens:  EstimateTokensFromText(req.Instruction) + EstimateTokensFromText(req.Text),
		OutputTokens: estimateOutputTokens(f.desc.fields),
	}
	f.log.DebugContext(ctx, "Dry run completed",
		"type", stats.TypeName,
		"input_tokens", stats.InputTokens,
		"output_tokens", stats.OutputTokens)
	return stats, nil
}

// Explain performs a dry run and renders it as a plan in the given format.
func (f *Factory[T]) Explain(ctx context.Context, text string, format FormatType) (string, error) {
	stats, err := f.DryRun(ctx, text)
	if err != nil {
		return "", err
	}
	plan := statsToPlan(stats)
	if format == FormatJSON {
		return formatAsJSON(plan)
	}
	return formatAsText(plan), nil
}

func statsToPlan(stats *ExecutionStats) *PlanNode {
	return &PlanNode{
		Type:   ExtractionType,
		Label:  stats.TypeName,
		Fields: stats.Fields,
		Children: []*PlanNode{
			{Type: PromptBuildType, Fields: stats.Fields, InputTokens: EstimateTokensFromText(stats.Instruction)},
			{Type: ModelCallType, Label: stats.Endpoint, Model: stats.Model, InputTokens: stats.InputTokens, OutputTokens: stats.OutputTokens},
			{Type: NormalizeType, Label: "wrappers=" + strings.Join(stats.WrapperKeys, ",")},
			{Type: DeserializeType, Fields: stats.Fields},
		},
	}
}

// EstimateTokensFromText provides a rough token estimate from text length.
func EstimateTokensFromText(text string) int {
	// Rough heuristic: ~4 bytes per token
	return (len(text) + 3) / 4
}

// estimateOutputTokens estimates the JSON reply size for one record.
func estimateOutputTokens(fields []FieldSpec) int {
	tokens := 2 // braces
	for _, f := range fields {
		tokens += EstimateTokensFromText(f.Name) + 2 // key, quotes, colon
		switch f.Type {
		case TypeString:
			tokens += 10
		case TypeFloat:
			tokens += 4
		case TypeInt:
			tokens += 3
		case TypeBool:
			tokens++
		}
	}
	return tokens
}

package aientity

import (
	"fmt"
	"strings"
)

// formatAsText formats the plan as an ASCII tree.
func formatAsText(plan *PlanNode) string {
	var sb strings.Builder
	sb.WriteString("Extraction Plan (estimated)\n")
	formatNodeAsText(plan, "", true, &sb)
	return sb.String()
}

// formatNodeAsText recursively formats a node and its children as text.
func formatNodeAsText(node *PlanNode, prefix string, isLast bool, sb *strings.Builder) {
	connector := "├─ "
	if isLast {
		connector = "└─ "
	}
	if prefix == "" {
		connector = ""
	}
	fmt.Fprintf(sb, "%s%s%s\n", prefix, connector, formatNodeInfo(node))

	childPrefix := prefix
	switch {
	case prefix == "":
		childPrefix = "  "
	case isLast:
		childPrefix += "   "
	default:
		childPrefix += "│  "
	}
	for i, child := range node.Children {
		formatNodeAsText(child, childPrefix, i == len(node.Children)-1, sb)
	}
}

// formatNodeInfo formats information for a single node.
func formatNodeInfo(node *PlanNode) string {
	parts := []string{string(node.Type)}
	if node.Label != "" {
		parts = append(parts, fmt.Sprintf("%q", node.Label))
	}

	var details []string
	if node.Model != "" {
		details = append(details, "model="+node.Model)
	}
	if node.InputTokens > 0 || node.OutputTokens > 0 {
		if node.OutputTokens > 0 {
			details = append(details, fmt.Sprintf("tokens(in=%d,out=%d)", node.InputTokens, node.OutputTokens))
		} else {
			details = append(details, fmt.Sprintf("tokens(in=%d)", node.InputTokens))
		}
	}
	if len(node.Fields) == 1 {
		details = append(details, "field="+node.Fields[0])
	} else if len(node.Fields) > 1 {
		details = append(details, fmt.Sprintf("fields=%v", node.Fields))
	}

	if len(details) > 0 {
		parts = append(parts, "("+strings.Join(details, ", ")+")")
	}
	return strings.Join(parts, " ")
}

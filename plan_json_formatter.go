package aientity

import (
	"encoding/json"
)

// formatAsJSON formats the plan as indented JSON.
func formatAsJSON(plan *PlanNode) (string, error) {
	bytes, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

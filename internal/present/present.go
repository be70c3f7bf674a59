// Package present arranges published results into per-model groups and
// renders them for a terminal.
package present

import (
	"promptbench/pkg/types"
)

// Group returns one group per selected model that resolves in the catalog,
// in selection order. Each group holds that model's results in published
// order. A model without results yields an empty group rather than none.
func Group(results []types.InferenceResult, modelIDs []string, models []types.Model) []types.ComparisonGroup {
	byID := make(map[string]types.Model, len(models))
	for _, m := range models {
		if _, dup := byID[m.ID]; !dup {
			byID[m.ID] = m
		}
	}
	groups := make([]types.ComparisonGroup, 0, len(modelIDs))
	seen := make(map[string]bool, len(modelIDs))
	for _, id := range modelIDs {
		m, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		g := types.ComparisonGroup{ModelID: m.ID, ModelName: m.Name, Results: []types.InferenceResult{}}
		if g.ModelName == "" {
			g.ModelName = m.ID
		}
		for _, r := range results {
			if r.ModelID == m.ID {
				g.Results = append(g.Results, r)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

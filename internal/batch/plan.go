package batch

import "promptbench/pkg/types"

// pair is one planned inference call.
type pair struct {
	model  types.Model
	prompt types.Prompt
}

// resolve enumerates selected models (outer) by selected prompts (inner) in
// selection order. Ids missing from the catalogs are skipped.
func resolve(req Request) []pair {
	models := make(map[string]types.Model, len(req.Models))
	for _, m := range req.Models {
		if _, dup := models[m.ID]; !dup {
			models[m.ID] = m
		}
	}
	prompts := make(map[string]types.Prompt, len(req.Prompts))
	for _, p := range req.Prompts {
		if _, dup := prompts[p.ID]; !dup {
			prompts[p.ID] = p
		}
	}
	var resolvedPrompts []types.Prompt
	for _, id := range req.PromptIDs {
		if p, ok := prompts[id]; ok {
			resolvedPrompts = append(resolvedPrompts, p)
		}
	}
	pairs := make([]pair, 0, len(req.ModelIDs)*len(resolvedPrompts))
	for _, id := range req.ModelIDs {
		m, ok := models[id]
		if !ok {
			continue
		}
		for _, p := range resolvedPrompts {
			pairs = append(pairs, pair{model: m, prompt: p})
		}
	}
	return pairs
}

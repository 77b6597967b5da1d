package orchestration

import "github.com/agbru/mpolymul/internal/multiplier"

// GetMultipliersToRun returns the multipliers selected by algo: one by name,
// or every registered one in sorted order for "all". Unknown names yield nil.
func GetMultipliersToRun(algo string, factory *multiplier.Factory) []multiplier.Multiplier {
	if algo == "all" {
		names := factory.List()
		out := make([]multiplier.Multiplier, 0, len(names))
		for _, name := range names {
			if m, err := factory.Get(name); err == nil {
				out = append(out, m)
			}
		}
		return out
	}
	if m, err := factory.Get(algo); err == nil {
		return []multiplier.Multiplier{m}
	}
	return nil
}

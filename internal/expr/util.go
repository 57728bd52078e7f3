package expr

import "sort"

// sortedKeys returns m's keys in ascending order so that every compile of
// the same input produces byte-identical output regardless of Go's
// randomized map iteration order — required for the partial-evaluation
// idempotence property (spec §8.5).
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

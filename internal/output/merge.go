// Package output merges the canonical content model with author and
// system metadata and selects the terminal output shape.
package output

import "sort"

// Merge combines objects right-biased: for any key present in more than
// one argument, the rightmost argument's value wins. The result is a new
// map; the arguments are never mutated.
func Merge(sources ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, src := range sources {
		for k, v := range src {
			out[k] = v
		}
	}
	return out
}

// SortedKeys returns the keys of m in ascending order. Metadata objects
// are iterated through this at every serialization point so output is
// deterministic.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

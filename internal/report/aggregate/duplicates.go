package aggregate

import "sort"

// FindDuplicates groups records by keyFn, drops blank keys and groups of
// size one, and returns the remaining records flattened, ordered by
// (key ascending, less within each group).
func FindDuplicates[T any](records []T, keyFn func(T) string, less func(a, b T) bool) []T {
	groups := make(map[string][]T)
	for _, r := range records {
		key := keyFn(r)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], r)
	}

	keys := make([]string, 0, len(groups))
	for key, members := range groups {
		if len(members) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var out []T
	for _, key := range keys {
		members := groups[key]
		sort.SliceStable(members, func(i, j int) bool {
			return less(members[i], members[j])
		})
		out = append(out, members...)
	}
	return out
}

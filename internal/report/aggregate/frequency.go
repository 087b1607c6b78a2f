package aggregate

import "sort"

// Entry is one (label, count) row of a frequency table.
type Entry struct {
	Label string
	Count int
}

// CountBy groups records by keyFn, substituting sentinel for blank keys,
// and returns entries sorted by count descending. Ties keep first-seen
// insertion order, so the sort must stay stable.
func CountBy[T any](records []T, keyFn func(T) string, sentinel string) []Entry {
	counts := make(map[string]int, len(records))
	var order []string

	for _, r := range records {
		key := keyFn(r)
		if key == "" {
			key = sentinel
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	entries := make([]Entry, 0, len(order))
	for _, label := range order {
		entries = append(entries, Entry{Label: label, Count: counts[label]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}

// Total sums the counts of a table.
func Total(entries []Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Count
	}
	return total
}

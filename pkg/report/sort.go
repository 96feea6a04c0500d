package report

import "sort"

// sortItems orders items by archive path, then volume. Workers finish in
// arbitrary order; the report must not depend on scheduling.
func sortItems(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Path != items[b].Path {
			return items[a].Path < items[b].Path
		}
		return items[a].Volume < items[b].Volume
	})
}

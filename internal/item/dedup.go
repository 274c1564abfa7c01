package item

import "github.com/zeebo/xxh3"

// Dedup keeps the first item for each identifier and returns the survivors in
// input order along with the number of items dropped. Items without an
// identifier are all kept.
//
// Identifiers are bucketed by their xxh3 hash; a hit is confirmed against the
// full identifier so colliding ids are never merged.
func Dedup(items []Item) ([]Item, int) {
	seen := make(map[uint64][]string, len(items))
	out := items[:0:0]
	for _, it := range items {
		id := it.Identifier()
		if id == "" {
			out = append(out, it)
			continue
		}
		h := xxh3.HashString(id)
		if containsID(seen[h], id) {
			continue
		}
		seen[h] = append(seen[h], id)
		out = append(out, it)
	}
	return out, len(items) - len(out)
}

func containsID(bucket []string, id string) bool {
	for _, s := range bucket {
		if s == id {
			return true
		}
	}
	return false
}
